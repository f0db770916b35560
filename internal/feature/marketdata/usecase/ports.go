// Package usecase は株価・ニュースセンチメントの取得と平坦化のビジネスロジックを実装します。
package usecase

import (
	"context"

	"stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/shared/ratelimiter"
)

// MarketRepository は外部APIから株価とニュースセンチメントを取得するリポジトリのインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	// GetDailyAdjusted は銘柄の日次調整後終値の全期間を返します。
	GetDailyAdjusted(ctx context.Context, symbol string) ([]entity.DailyPrice, error)
	// GetNewsSentiment は指定期間のニュース記事とセンチメントスコアを返します。
	// フィードが含まれない応答の場合は domain.ErrNoFeed を返します。
	GetNewsSentiment(ctx context.Context, symbol string, window entity.Window) ([]entity.Article, error)
}

// RecordStore は平坦化したレコードセットを監査用にローカル保存するインターフェイスです。
type RecordStore interface {
	SavePrices(r entity.DateRange, records []entity.PriceRecord) (string, error)
	SaveSentiments(r entity.DateRange, records []entity.SentimentRecord) (string, error)
}

// Limiter は呼び出しごとに通すレートリミッターです。
type Limiter = ratelimiter.RateLimiterInterface
