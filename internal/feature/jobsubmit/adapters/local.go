package adapters

import (
	"context"
	"fmt"

	"stock_pipeline/internal/feature/jobsubmit/domain/entity"
	"stock_pipeline/internal/feature/jobsubmit/usecase"
	tfusecase "stock_pipeline/internal/feature/transform/usecase"
)

// TransformRunner は変換ジョブをプロセス内で実行します。
type TransformRunner interface {
	Run(ctx context.Context, p tfusecase.Params) (*tfusecase.Result, error)
}

// localSubmitter はクラスタを使わず、Go 実装の変換ジョブをその場で実行します。
type localSubmitter struct {
	transform TransformRunner
}

var _ usecase.JobSubmitter = (*localSubmitter)(nil)

// NewLocalSubmitter は新しい localSubmitter を生成します。
func NewLocalSubmitter(transform TransformRunner) *localSubmitter {
	return &localSubmitter{transform: transform}
}

// Submit は変換ジョブを同期実行します。ジョブの失敗は終了コード 1 になります。
func (s *localSubmitter) Submit(ctx context.Context, req entity.JobRequest) (entity.SubmitOutput, error) {
	res, err := s.transform.Run(ctx, tfusecase.Params{
		Range:   req.Range,
		Bucket:  req.Bucket,
		Dataset: req.Dataset,
		Table:   req.Table,
	})
	if err != nil {
		return entity.SubmitOutput{ExitCode: 1, Stderr: err.Error()}, nil
	}
	return entity.SubmitOutput{
		Stdout: fmt.Sprintf("appended %d rows to %s.%s", res.AppendedRows, req.Dataset, req.Table),
	}, nil
}
