// Package usecase はステージ済みレコードセットを結合し、分析テーブルへ追記する変換ジョブを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/transform/domain/entity"
)

// RecordSource はバケットからステージ済みのレコードセットをスキーマ付きで読み込みます。
// スキーマに合わない行があればエラーを返します。
type RecordSource interface {
	ReadPrices(ctx context.Context, bucket string, r mdentity.DateRange) ([]mdentity.PriceRecord, error)
	ReadSentiments(ctx context.Context, bucket string, r mdentity.DateRange) ([]mdentity.SentimentRecord, error)
}

// TableAppender は結合結果を dataset.table に追記します。既存行との重複排除は行いません。
type TableAppender interface {
	Append(ctx context.Context, dataset, table string, rows []entity.JoinedRecord) error
}

// Params は変換ジョブのパラメータです（--from_date --to_date --gcs_bucket_name --bq_dataset_name --bq_table_name）。
type Params struct {
	Range   mdentity.DateRange
	Bucket  string
	Dataset string
	Table   string
}

// Validate は必須パラメータが揃っているかを検証します。
func (p Params) Validate() error {
	switch {
	case p.Bucket == "":
		return fmt.Errorf("gcs_bucket_name is required")
	case p.Dataset == "":
		return fmt.Errorf("bq_dataset_name is required")
	case p.Table == "":
		return fmt.Errorf("bq_table_name is required")
	}
	return nil
}

// Result は変換ジョブの件数サマリーです。
type Result struct {
	PriceRows     int
	SentimentRows int
	JoinedRows    int
	AppendedRows  int
}

// TransformUsecase は変換ジョブのユースケースです。
type TransformUsecase struct {
	source   RecordSource
	appender TableAppender
}

// NewTransformUsecase は新しい TransformUsecase を作成します。
func NewTransformUsecase(source RecordSource, appender TableAppender) *TransformUsecase {
	return &TransformUsecase{source: source, appender: appender}
}

// Run は2つのレコードセットを読み込み、外部結合・ゼロ埋め・正の価格での絞り込みを行って追記します。
func (tu *TransformUsecase) Run(ctx context.Context, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	prices, err := tu.source.ReadPrices(ctx, p.Bucket, p.Range)
	if err != nil {
		return nil, fmt.Errorf("read price records: %w", err)
	}
	sentiments, err := tu.source.ReadSentiments(ctx, p.Bucket, p.Range)
	if err != nil {
		return nil, fmt.Errorf("read sentiment records: %w", err)
	}

	joined := Join(prices, sentiments)
	rows := FillAndFilter(joined)

	if err := tu.appender.Append(ctx, p.Dataset, p.Table, rows); err != nil {
		return nil, fmt.Errorf("append to %s.%s: %w", p.Dataset, p.Table, err)
	}

	res := &Result{
		PriceRows:     len(prices),
		SentimentRows: len(sentiments),
		JoinedRows:    len(joined),
		AppendedRows:  len(rows),
	}
	slog.Info("transform complete",
		"table", p.Dataset+"."+p.Table,
		"prices", res.PriceRows, "sentiments", res.SentimentRows,
		"joined", res.JoinedRows, "appended", res.AppendedRows)
	return res, nil
}
