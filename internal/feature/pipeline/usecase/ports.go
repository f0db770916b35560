// Package usecase はパイプライン全体のオーケストレーションを実装します。
//
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
package usecase

import (
	"context"

	jsentity "stock_pipeline/internal/feature/jobsubmit/domain/entity"
	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	mdusecase "stock_pipeline/internal/feature/marketdata/usecase"
	"stock_pipeline/internal/feature/pipeline/domain/entity"
	stusecase "stock_pipeline/internal/feature/staging/usecase"
	"stock_pipeline/internal/shared/ratelimiter"
)

// PriceFetcher は価格レコードセットを取得・保存します。
type PriceFetcher interface {
	FetchPrices(ctx context.Context, limiter mdusecase.Limiter, catalog mdentity.Catalog, r mdentity.DateRange) (*mdusecase.PriceResult, error)
}

// SentimentFetcher はセンチメントレコードセットを取得・保存します。
type SentimentFetcher interface {
	FetchSentiments(ctx context.Context, limiter mdusecase.Limiter, catalog mdentity.Catalog, r mdentity.DateRange) (*mdusecase.SentimentResult, error)
}

// Stager は2つのレコードセットとジョブのソースをバケットに置きます。
type Stager interface {
	Stage(ctx context.Context, r mdentity.DateRange, a stusecase.Artifacts) ([]string, error)
}

// Submitter は変換ジョブを投入します。失敗は戻り値の Submission で表します。
type Submitter interface {
	Submit(ctx context.Context, req jsentity.JobRequest) jsentity.Submission
}

// RunRepository は実行履歴を保存します。
type RunRepository interface {
	Save(ctx context.Context, run *entity.Run) error
	ListRecent(ctx context.Context, limit int) ([]entity.Run, error)
}

// RunLocker は同じキーの実行が重ならないようにロックを取ります。
// 既にロックされていれば domain.ErrRunInProgress を返します。
type RunLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// LimiterFactory はフェッチャーごとに新しいレートリミッターを作ります。
type LimiterFactory func() ratelimiter.RateLimiterInterface
