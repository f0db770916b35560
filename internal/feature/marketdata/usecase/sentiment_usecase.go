package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/civil"

	"stock_pipeline/internal/feature/marketdata/domain"
	"stock_pipeline/internal/feature/marketdata/domain/entity"
)

// SentimentResult はセンチメント取得の結果です。
type SentimentResult struct {
	Records []entity.SentimentRecord
	Windows []entity.Window
	Skips   []entity.Skip
	Calls   int
	Path    string
}

// SentimentUsecase は銘柄×週次ウィンドウごとにニュースセンチメントを取得します。
// APIは1回の応答が最大200件のため、5日分ずつ分割して取得します。
type SentimentUsecase struct {
	market MarketRepository
	store  RecordStore
}

// NewSentimentUsecase は新しい SentimentUsecase を作成します。
func NewSentimentUsecase(market MarketRepository, store RecordStore) *SentimentUsecase {
	return &SentimentUsecase{market: market, store: store}
}

// FetchSentiments は全銘柄・全ウィンドウの組み合わせについてAPIを呼び出し、記事を1件1レコードに平坦化します。
// リミッターの呼び出し回数は全組み合わせで共有されます。
// 記事の日付による絞り込みは行いません（ウィンドウが To を超えることもあります）。
func (su *SentimentUsecase) FetchSentiments(ctx context.Context, limiter Limiter, catalog entity.Catalog, r entity.DateRange) (*SentimentResult, error) {
	windows := entity.WeeklyWindows(r)
	res := &SentimentResult{Windows: windows, Records: make([]entity.SentimentRecord, 0)}

	for _, s := range catalog {
		for _, w := range windows {
			limiter.WaitIfNeeded()
			res.Calls++
			articles, err := su.market.GetNewsSentiment(ctx, s.Code, w)
			if err != nil {
				reason := entity.SkipRequestFailed
				if errors.Is(err, domain.ErrNoFeed) {
					reason = entity.SkipNoFeed
				}
				slog.Error("unable to pull sentiment data",
					"symbol", s.Code, "from", w.Start.String(), "to", w.End.String(), "reason", reason, "error", err)
				res.Skips = append(res.Skips, entity.Skip{Symbol: s.Code, Window: w.Start, Reason: reason, Err: err})
				continue
			}
			res.Records = append(res.Records, flattenArticles(s, articles)...)
		}
	}

	path, err := su.store.SaveSentiments(r, res.Records)
	if err != nil {
		return nil, fmt.Errorf("save sentiment records: %w", err)
	}
	res.Path = path

	slog.Info("sentiment data pulled", "rows", len(res.Records), "windows", len(windows), "skipped", len(res.Skips), "path", path)
	return res, nil
}

// flattenArticles は記事をセンチメントレコードに変換します。公開日時から日付を導出できない記事は除外します。
func flattenArticles(s entity.Symbol, articles []entity.Article) []entity.SentimentRecord {
	out := make([]entity.SentimentRecord, 0, len(articles))
	for _, a := range articles {
		day, err := PublishedDay(a.TimePublished)
		if err != nil {
			slog.Warn("skipping article with malformed timestamp", "symbol", s.Code, "url", a.URL, "error", err)
			continue
		}
		out = append(out, entity.SentimentRecord{
			StockName:   s.Name,
			Stock:       s.Code,
			Time:        a.TimePublished,
			Day:         day,
			URL:         a.URL,
			Title:       a.Title,
			Sentiment:   a.Sentiment,
			RecordCount: 1,
		})
	}
	return out
}

// PublishedDay は "20230327T133000" 形式の公開日時から日付を取り出します。
// 区切り文字 'T' の前の8桁を YYYY-MM-DD として解釈します。
func PublishedDay(published string) (civil.Date, error) {
	prefix, _, _ := strings.Cut(published, "T")
	if len(prefix) < 8 {
		return civil.Date{}, fmt.Errorf("time_published %q: short date prefix", published)
	}
	iso := prefix[:4] + "-" + prefix[4:6] + "-" + prefix[6:8]
	d, err := civil.ParseDate(iso)
	if err != nil {
		return civil.Date{}, fmt.Errorf("time_published %q: %w", published, err)
	}
	return d, nil
}
