// Package entity defines the domain models for the jobsubmit feature.
package entity

import (
	"fmt"

	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
)

// BigQueryConnectorJar is the Spark BigQuery connector attached to every submitted job.
const BigQueryConnectorJar = "gs://spark-lib/bigquery/spark-bigquery-latest_2.12.jar"

// Submit modes.
const (
	ModeGcloud   = "gcloud"
	ModeDataproc = "dataproc"
	ModeLocal    = "local"
)

// JobRequest identifies the cluster the transform job runs on, where its inputs are staged
// and which warehouse table it appends to.
type JobRequest struct {
	Project string
	Cluster string
	Region  string
	Bucket  string
	JobFile string
	Dataset string
	Table   string
	Range   mdentity.DateRange
}

// JobURI is the staged location of the job source.
func (r JobRequest) JobURI() string {
	return fmt.Sprintf("gs://%s/%s", r.Bucket, r.JobFile)
}

// JobArgs are the flags passed to the transform job. Inputs are located by the date-range naming convention.
func (r JobRequest) JobArgs() []string {
	return []string{
		"--gcs_bucket_name=" + r.Bucket,
		"--bq_dataset_name=" + r.Dataset,
		"--bq_table_name=" + r.Table,
		"--from_date=" + r.Range.From.String(),
		"--to_date=" + r.Range.To.String(),
	}
}

// SubmitOutput is what the submission call itself returned. ExitCode 0 means the submission was accepted.
type SubmitOutput struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Submission is the logged outcome of one submission attempt.
type Submission struct {
	Mode     string
	OK       bool
	ExitCode int
	Message  string
}
