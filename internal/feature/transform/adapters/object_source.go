// Package adapters はtransformフィーチャーの入力アダプターを提供します。
package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	mdadapters "stock_pipeline/internal/feature/marketdata/adapters"
	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/transform/usecase"
)

// ObjectOpener はバケット上のオブジェクトを読み出します。
type ObjectOpener interface {
	OpenObject(ctx context.Context, bucket, name string) (io.ReadCloser, error)
}

// objectSource はステージ済みCSVをオブジェクトストレージから読み込むRecordSource実装です。
type objectSource struct {
	opener ObjectOpener
}

var _ usecase.RecordSource = (*objectSource)(nil)

// NewObjectSource は新しい objectSource を生成します。
func NewObjectSource(opener ObjectOpener) *objectSource {
	return &objectSource{opener: opener}
}

// ReadPrices は stocks_df_<from>_<to>.csv を読み込みます。
func (s *objectSource) ReadPrices(ctx context.Context, bucket string, r mdentity.DateRange) ([]mdentity.PriceRecord, error) {
	var out []mdentity.PriceRecord
	err := s.read(ctx, bucket, mdentity.PriceFileName(r), func(rd io.Reader) (err error) {
		out, err = mdadapters.DecodePrices(rd)
		return err
	})
	return out, err
}

// ReadSentiments は stocks_sentiment_df_<from>_<to>.csv を読み込みます。
func (s *objectSource) ReadSentiments(ctx context.Context, bucket string, r mdentity.DateRange) ([]mdentity.SentimentRecord, error) {
	var out []mdentity.SentimentRecord
	err := s.read(ctx, bucket, mdentity.SentimentFileName(r), func(rd io.Reader) (err error) {
		out, err = mdadapters.DecodeSentiments(rd)
		return err
	})
	return out, err
}

func (s *objectSource) read(ctx context.Context, bucket, name string, decode func(io.Reader) error) error {
	rc, err := s.opener.OpenObject(ctx, bucket, name)
	if err != nil {
		return fmt.Errorf("open gs://%s/%s: %w", bucket, name, err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			slog.Warn("failed to close object reader", "object", name, "error", err)
		}
	}()
	if err := decode(rc); err != nil {
		return fmt.Errorf("gs://%s/%s: %w", bucket, name, err)
	}
	return nil
}
