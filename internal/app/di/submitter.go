package di

import (
	"fmt"

	jsadapters "stock_pipeline/internal/feature/jobsubmit/adapters"
	jsentity "stock_pipeline/internal/feature/jobsubmit/domain/entity"
	jsusecase "stock_pipeline/internal/feature/jobsubmit/usecase"
	tfadapters "stock_pipeline/internal/feature/transform/adapters"
	tfusecase "stock_pipeline/internal/feature/transform/usecase"
	"stock_pipeline/internal/platform/config"
	"stock_pipeline/internal/platform/gcp"
)

// NewTransform creates the transform job reading staged objects and appending to BigQuery.
func NewTransform(cfg config.GCP, creds *gcp.CredentialBlock, storage *gcp.StorageClient) *tfusecase.TransformUsecase {
	return tfusecase.NewTransformUsecase(
		tfadapters.NewObjectSource(storage),
		gcp.NewBigQueryAppender(cfg.ProjectID, creds),
	)
}

// NewJobSubmitter returns the JobSubmitter for the configured submit mode.
// The returned closer releases any client the submitter owns.
func NewJobSubmitter(cfg config.GCP, creds *gcp.CredentialBlock, storage *gcp.StorageClient) (jsusecase.JobSubmitter, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SubmitMode {
	case jsentity.ModeGcloud, "":
		return jsadapters.NewCommandSubmitter(cfg.GcloudBin, nil), noop, nil
	case jsentity.ModeDataproc:
		jobs := gcp.NewDataprocJobs(cfg.Region, creds)
		return jsadapters.NewDataprocSubmitter(jobs), jobs.Close, nil
	case jsentity.ModeLocal:
		return jsadapters.NewLocalSubmitter(NewTransform(cfg, creds, storage)), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown submit mode %q", cfg.SubmitMode)
	}
}

// NewJobRequest fills the job coordinates from config. Range is set per run.
func NewJobRequest(cfg config.GCP) jsentity.JobRequest {
	return jsentity.JobRequest{
		Project: cfg.ProjectID,
		Cluster: cfg.Cluster,
		Region:  cfg.Region,
		Bucket:  cfg.Bucket,
		JobFile: cfg.JobFile,
		Dataset: cfg.Dataset,
		Table:   cfg.Table,
	}
}
