package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"stock_pipeline/internal/feature/marketdata/domain"
	"stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/marketdata/usecase"
	"stock_pipeline/internal/platform/externalapi/alphavantage/dto"
)

const (
	adjustedCloseField = "5. adjusted close"
	sentimentLimit     = 200
	// queryTimeLayout はtime_from/time_toの形式です（例: 20230327T0000）。
	queryTimeLayout = "20060102T0000"
)

// AlphaVantageMarket はAlpha Vantage外部APIから株価とニュースセンチメントを取得するMarketRepository実装です。
type AlphaVantageMarket struct {
	cfg    Config
	client *http.Client
}

// AlphaVantageMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*AlphaVantageMarket)(nil)

// NewAlphaVantageMarket は指定された設定とHTTPクライアントでAlphaVantageMarketの新しいインスタンスを生成します。
func NewAlphaVantageMarket(cfg Config, client *http.Client) *AlphaVantageMarket {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &AlphaVantageMarket{cfg: cfg, client: client}
}

// GetDailyAdjusted は日次調整後終値の全期間（outputsize=full）を取得し、日付昇順で返します。
func (a *AlphaVantageMarket) GetDailyAdjusted(ctx context.Context, symbol string) ([]entity.DailyPrice, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", symbol)
	q.Set("apikey", a.cfg.APIKey)
	q.Set("outputsize", "full")

	var body dto.DailyAdjustedResponse
	if err := a.get(ctx, q, &body); err != nil {
		return nil, err
	}
	if body.TimeSeries == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSeriesMissing, body.Message())
	}

	prices := make([]entity.DailyPrice, 0, len(body.TimeSeries))
	for day, fields := range body.TimeSeries {
		d, err := civil.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		raw, ok := fields[adjustedCloseField]
		if !ok {
			return nil, fmt.Errorf("parse adjusted close %s: field missing", day)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse adjusted close %q: %w", raw, err)
		}
		prices = append(prices, entity.DailyPrice{Day: d, AdjustedClose: v})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].Day.Before(prices[j].Day) })
	return prices, nil
}

// GetNewsSentiment はウィンドウ期間のニュース記事を最大200件取得します。
// 応答に "feed" が無い場合は domain.ErrNoFeed を返します。
func (a *AlphaVantageMarket) GetNewsSentiment(ctx context.Context, symbol string, window entity.Window) ([]entity.Article, error) {
	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("tickers", symbol)
	q.Set("apikey", a.cfg.APIKey)
	if a.cfg.Topics != "" {
		q.Set("topics", a.cfg.Topics)
	}
	q.Set("time_from", QueryTime(window.Start))
	q.Set("time_to", QueryTime(window.End))
	q.Set("limit", strconv.Itoa(sentimentLimit))

	var body dto.NewsSentimentResponse
	if err := a.get(ctx, q, &body); err != nil {
		return nil, err
	}
	if body.Feed == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoFeed, body.Message())
	}

	articles := make([]entity.Article, 0, len(body.Feed))
	for _, item := range body.Feed {
		articles = append(articles, entity.Article{
			TimePublished: item.TimePublished,
			URL:           item.URL,
			Title:         item.Title,
			Sentiment:     item.OverallSentimentScore,
		})
	}
	return articles, nil
}

// QueryTime は日付をtime_from/time_toパラメータ形式に変換します。
func QueryTime(d civil.Date) string {
	return d.In(time.UTC).Format(queryTimeLayout)
}

// get は /query エンドポイントを呼び出し、JSONレスポンスを out にデコードします。
func (a *AlphaVantageMarket) get(ctx context.Context, q url.Values, out any) error {
	u := fmt.Sprintf("%s/query?%s", a.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("alphavantage http %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", q.Get("function"), err)
	}
	return nil
}
