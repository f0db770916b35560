// Package adapters は変換ジョブを投入する JobSubmitter の実装を提供します。
package adapters

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"stock_pipeline/internal/feature/jobsubmit/domain/entity"
	"stock_pipeline/internal/feature/jobsubmit/usecase"
)

// CommandRunner は外部コマンドを実行し、標準出力・標準エラーを返します。
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// execRunner は os/exec で実際にコマンドを起動します。
func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// commandSubmitter は gcloud CLI で Dataproc に PySpark ジョブを投入します。
type commandSubmitter struct {
	bin string
	run CommandRunner
}

var _ usecase.JobSubmitter = (*commandSubmitter)(nil)

// NewCommandSubmitter は gcloud コマンドを使う JobSubmitter を生成します。bin が空なら "gcloud"。
func NewCommandSubmitter(bin string, run CommandRunner) *commandSubmitter {
	if bin == "" {
		bin = "gcloud"
	}
	if run == nil {
		run = execRunner
	}
	return &commandSubmitter{bin: bin, run: run}
}

// Args は投入コマンドの引数を組み立てます。
func Args(req entity.JobRequest) []string {
	args := []string{
		"dataproc", "jobs", "submit", "pyspark",
		"--cluster=" + req.Cluster,
		"--region=" + req.Region,
		"--jars=" + entity.BigQueryConnectorJar,
		req.JobURI(),
		"--",
	}
	return append(args, req.JobArgs()...)
}

// Submit はコマンドの終了を待ち、終了コードと出力を返します。
// コマンドが起動できなかった場合のみ error を返します。
func (s *commandSubmitter) Submit(ctx context.Context, req entity.JobRequest) (entity.SubmitOutput, error) {
	stdout, stderr, err := s.run(ctx, s.bin, Args(req)...)
	out := entity.SubmitOutput{Stdout: string(stdout), Stderr: string(stderr)}
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}
