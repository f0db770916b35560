package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"stock_pipeline/internal/feature/marketdata/domain/entity"
)

// PriceResult は価格取得の結果です。スキップした銘柄も理由付きで保持します。
type PriceResult struct {
	Records []entity.PriceRecord
	Skips   []entity.Skip
	Calls   int
	Path    string // ローカルに保存したCSVのパス
}

// PriceUsecase は銘柄ごとに日次調整後終値を取得し、価格レコードセットを生成します。
type PriceUsecase struct {
	market MarketRepository
	store  RecordStore
}

// NewPriceUsecase は新しい PriceUsecase を作成します。
func NewPriceUsecase(market MarketRepository, store RecordStore) *PriceUsecase {
	return &PriceUsecase{market: market, store: store}
}

// FetchPrices はカタログの全銘柄について価格APIを1回ずつ呼び出し、[From, To) の範囲に絞った
// レコードセットをローカルに保存して返します。
// 銘柄単位の失敗はログに出力してスキップし、再試行はしません。
func (pu *PriceUsecase) FetchPrices(ctx context.Context, limiter Limiter, catalog entity.Catalog, r entity.DateRange) (*PriceResult, error) {
	res := &PriceResult{}
	raw := make(map[string][]entity.DailyPrice, len(catalog))

	for _, s := range catalog {
		limiter.WaitIfNeeded()
		res.Calls++
		prices, err := pu.market.GetDailyAdjusted(ctx, s.Code)
		if err != nil {
			// 1つの銘柄でエラーが発生しても処理を止めずにログに出力し、次の銘柄へ
			slog.Error("unable to pull price data", "symbol", s.Code, "error", err)
			res.Skips = append(res.Skips, entity.Skip{Symbol: s.Code, Reason: entity.SkipRequestFailed, Err: err})
			continue
		}
		raw[s.Code] = prices
	}

	res.Records = flattenPrices(catalog, raw, r)

	path, err := pu.store.SavePrices(r, res.Records)
	if err != nil {
		return nil, fmt.Errorf("save price records: %w", err)
	}
	res.Path = path

	slog.Info("price data pulled", "rows", len(res.Records), "skipped", len(res.Skips), "path", path)
	return res, nil
}

// flattenPrices は銘柄ごとの時系列をカタログ順に平坦化し、期間外の日を除外します。
func flattenPrices(catalog entity.Catalog, raw map[string][]entity.DailyPrice, r entity.DateRange) []entity.PriceRecord {
	out := make([]entity.PriceRecord, 0)
	for _, s := range catalog {
		for _, p := range raw[s.Code] {
			if !r.Contains(p.Day) {
				continue
			}
			out = append(out, entity.PriceRecord{
				StockName: s.Name,
				Stock:     s.Code,
				Day:       p.Day,
				Value:     p.AdjustedClose,
			})
		}
	}
	return out
}
