package usecase

import (
	"context"
	"log/slog"

	"stock_pipeline/internal/feature/jobsubmit/domain/entity"
)

// JobSubmitter は変換ジョブの投入呼び出しを行います。
// 投入自体の失敗は error ではなく SubmitOutput.ExitCode で表し、呼び出しを開始できなかった場合のみ error を返します。
type JobSubmitter interface {
	Submit(ctx context.Context, req entity.JobRequest) (entity.SubmitOutput, error)
}

// SubmitUsecase は変換ジョブ投入のユースケースです。
type SubmitUsecase struct {
	submitter JobSubmitter
	mode      string
}

// NewSubmitUsecase は新しい SubmitUsecase を作成します。
func NewSubmitUsecase(submitter JobSubmitter, mode string) *SubmitUsecase {
	return &SubmitUsecase{submitter: submitter, mode: mode}
}

// Submit はジョブを投入し、結果をログに出して返します。
// 失敗しても既にステージしたオブジェクトは残し、エラーとしては返しません。
func (su *SubmitUsecase) Submit(ctx context.Context, req entity.JobRequest) entity.Submission {
	out, err := su.submitter.Submit(ctx, req)
	if err != nil {
		slog.Error("failed to submit job", "mode", su.mode, "job", req.JobURI(), "error", err)
		return entity.Submission{Mode: su.mode, ExitCode: -1, Message: err.Error()}
	}

	if out.ExitCode != 0 {
		slog.Error("job failed, check Dataproc logs",
			"mode", su.mode, "exit_code", out.ExitCode, "stderr", out.Stderr)
		return entity.Submission{Mode: su.mode, ExitCode: out.ExitCode, Message: out.Stderr}
	}

	slog.Info("job submitted successfully", "mode", su.mode, "job", req.JobURI(), "output", out.Stdout)
	return entity.Submission{Mode: su.mode, OK: true, Message: out.Stdout}
}
