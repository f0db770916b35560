package adapters

import (
	"context"
	"fmt"

	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"

	"stock_pipeline/internal/feature/jobsubmit/domain/entity"
	"stock_pipeline/internal/feature/jobsubmit/usecase"
)

// JobController は Dataproc の jobs.submit を呼び出します。
type JobController interface {
	SubmitJob(ctx context.Context, req *dataprocpb.SubmitJobRequest) (*dataprocpb.Job, error)
}

// dataprocSubmitter は Dataproc API で PySpark ジョブを投入します。gcloud CLI が無い環境向けです。
type dataprocSubmitter struct {
	jobs JobController
}

var _ usecase.JobSubmitter = (*dataprocSubmitter)(nil)

// NewDataprocSubmitter は Dataproc API を使う JobSubmitter を生成します。
func NewDataprocSubmitter(jobs JobController) *dataprocSubmitter {
	return &dataprocSubmitter{jobs: jobs}
}

// BuildSubmitJobRequest は gcloud dataproc jobs submit pyspark と同じ内容の投入リクエストを組み立てます。
func BuildSubmitJobRequest(req entity.JobRequest) *dataprocpb.SubmitJobRequest {
	return &dataprocpb.SubmitJobRequest{
		ProjectId: req.Project,
		Region:    req.Region,
		Job: &dataprocpb.Job{
			Placement: &dataprocpb.JobPlacement{ClusterName: req.Cluster},
			TypeJob: &dataprocpb.Job_PysparkJob{
				PysparkJob: &dataprocpb.PySparkJob{
					MainPythonFileUri: req.JobURI(),
					Args:              req.JobArgs(),
					JarFileUris:       []string{entity.BigQueryConnectorJar},
				},
			},
		},
	}
}

// Submit は投入APIの応答のみを確認し、ジョブの完了は待ちません。
// API エラーは終了コード 1 として扱います。
func (s *dataprocSubmitter) Submit(ctx context.Context, req entity.JobRequest) (entity.SubmitOutput, error) {
	job, err := s.jobs.SubmitJob(ctx, BuildSubmitJobRequest(req))
	if err != nil {
		return entity.SubmitOutput{ExitCode: 1, Stderr: err.Error()}, nil
	}

	jobID := job.GetReference().GetJobId()
	state := job.GetStatus().GetState()
	if state == dataprocpb.JobStatus_ERROR {
		return entity.SubmitOutput{
			ExitCode: 1,
			Stderr:   fmt.Sprintf("job %s: %s", jobID, job.GetStatus().GetDetails()),
		}, nil
	}
	return entity.SubmitOutput{Stdout: fmt.Sprintf("job %s: %s", jobID, state)}, nil
}
