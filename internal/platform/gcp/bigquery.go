package gcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"

	"stock_pipeline/internal/feature/transform/domain/entity"
	"stock_pipeline/internal/feature/transform/usecase"
)

// BigQueryAppender は結合結果をロードジョブで dataset.table に追記します。
// テーブルが無ければ JoinedRecord から推論したスキーマで作成します。
type BigQueryAppender struct {
	projectID string
	creds     *CredentialBlock
}

var _ usecase.TableAppender = (*BigQueryAppender)(nil)

// NewBigQueryAppender は新しい BigQueryAppender を生成します。
func NewBigQueryAppender(projectID string, creds *CredentialBlock) *BigQueryAppender {
	return &BigQueryAppender{projectID: projectID, creds: creds}
}

// JoinedSchema は追記先テーブルのスキーマです。
func JoinedSchema() (bigquery.Schema, error) {
	return bigquery.InferSchema(entity.JoinedRecord{})
}

// EncodeRows は行を改行区切りJSONに変換します。
func EncodeRows(rows []entity.JoinedRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range rows {
		if err := enc.Encode(&rows[i]); err != nil {
			return nil, fmt.Errorf("encode row %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Append は rows を追記します。既存行との重複排除は行いません。
func (a *BigQueryAppender) Append(ctx context.Context, dataset, table string, rows []entity.JoinedRecord) error {
	if len(rows) == 0 {
		slog.Info("no rows to append", "table", dataset+"."+table)
		return nil
	}

	schema, err := JoinedSchema()
	if err != nil {
		return fmt.Errorf("infer schema: %w", err)
	}
	body, err := EncodeRows(rows)
	if err != nil {
		return err
	}

	projectID := a.projectID
	if projectID == "" && a.creds != nil {
		projectID = a.creds.ProjectID()
	}
	if projectID == "" {
		projectID = bigquery.DetectProjectID
	}
	client, err := bigquery.NewClient(ctx, projectID, clientOptions(a.creds)...)
	if err != nil {
		return fmt.Errorf("create bigquery client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close bigquery client", "error", err)
		}
	}()

	src := bigquery.NewReaderSource(bytes.NewReader(body))
	src.SourceFormat = bigquery.JSON
	src.Schema = schema

	loader := client.Dataset(dataset).Table(table).LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateIfNeeded

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("start load job: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait load job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("load job %s: %w", job.ID(), err)
	}

	slog.Info("appended rows", "table", dataset+"."+table, "rows", len(rows), "job", job.ID())
	return nil
}
