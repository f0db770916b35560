package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"stock_pipeline/internal/feature/marketdata/domain"
	"stock_pipeline/internal/feature/marketdata/domain/entity"
)

func newTestMarket(t *testing.T, handler http.HandlerFunc) *AlphaVantageMarket {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Topics:  "technology",
	}
	return NewAlphaVantageMarket(cfg, server.Client())
}

func jsonResponse(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

func testWindow() entity.Window {
	start := civil.Date{Year: 2023, Month: time.March, Day: 27}
	return entity.Window{Start: start, End: start.AddDays(5)}
}

func TestNewAlphaVantageMarket(t *testing.T) {
	t.Parallel()

	cfg := Config{APIKey: "test-key", BaseURL: "https://api.test.com", Timeout: 10 * time.Second}
	market := NewAlphaVantageMarket(cfg, &http.Client{})

	if market == nil {
		t.Fatal("expected non-nil market")
	}
	if market.cfg.APIKey != cfg.APIKey {
		t.Errorf("expected API key %q, got %q", cfg.APIKey, market.cfg.APIKey)
	}
}

func TestAlphaVantageMarket_GetDailyAdjusted_Success(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/query" {
			t.Errorf("expected path /query, got %s", r.URL.Path)
		}
		if q.Get("function") != "TIME_SERIES_DAILY_ADJUSTED" {
			t.Errorf("unexpected function %s", q.Get("function"))
		}
		if q.Get("symbol") != "AAPL" || q.Get("apikey") != "test-key" || q.Get("outputsize") != "full" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		jsonResponse(`{
			"Meta Data": {"2. Symbol": "AAPL"},
			"Time Series (Daily)": {
				"2023-03-31": {"4. close": "164.9000", "5. adjusted close": "164.1569"},
				"2023-03-30": {"4. close": "162.3600", "5. adjusted close": "161.6284"}
			}
		}`)(w, r)
	})

	prices, err := market.GetDailyAdjusted(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(prices))
	}
	if prices[0].Day.String() != "2023-03-30" || prices[0].AdjustedClose != 161.6284 {
		t.Errorf("unexpected first price %+v", prices[0])
	}
	if prices[1].Day.String() != "2023-03-31" || prices[1].AdjustedClose != 164.1569 {
		t.Errorf("unexpected second price %+v", prices[1])
	}
}

func TestAlphaVantageMarket_GetDailyAdjusted_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		errMatch string
		errIs    error
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			errMatch: "alphavantage http 503",
		},
		{
			name:     "invalid json",
			handler:  jsonResponse(`{invalid json`),
			errMatch: "decode",
		},
		{
			name:     "quota note instead of series",
			handler:  jsonResponse(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`),
			errMatch: "5 calls per minute",
			errIs:    domain.ErrSeriesMissing,
		},
		{
			name:     "invalid symbol",
			handler:  jsonResponse(`{"Error Message": "Invalid API call."}`),
			errMatch: "Invalid API call",
			errIs:    domain.ErrSeriesMissing,
		},
		{
			name:     "missing adjusted close",
			handler:  jsonResponse(`{"Time Series (Daily)": {"2023-03-31": {"4. close": "164.9"}}}`),
			errMatch: "parse adjusted close",
		},
		{
			name:     "non-numeric adjusted close",
			handler:  jsonResponse(`{"Time Series (Daily)": {"2023-03-31": {"5. adjusted close": "abc"}}}`),
			errMatch: "parse adjusted close",
		},
		{
			name:     "invalid day key",
			handler:  jsonResponse(`{"Time Series (Daily)": {"31/03/2023": {"5. adjusted close": "1"}}}`),
			errMatch: "parse day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			market := newTestMarket(t, tt.handler)
			_, err := market.GetDailyAdjusted(context.Background(), "AAPL")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errMatch) {
				t.Errorf("expected error containing %q, got %v", tt.errMatch, err)
			}
			if tt.errIs != nil && !errors.Is(err, tt.errIs) {
				t.Errorf("expected errors.Is(%v), got %v", tt.errIs, err)
			}
		})
	}
}

func TestAlphaVantageMarket_GetNewsSentiment_Success(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		expected := map[string]string{
			"function":  "NEWS_SENTIMENT",
			"tickers":   "MSFT",
			"apikey":    "test-key",
			"topics":    "technology",
			"time_from": "20230327T0000",
			"time_to":   "20230401T0000",
			"limit":     "200",
		}
		for k, v := range expected {
			if q.Get(k) != v {
				t.Errorf("expected %s=%s, got %s", k, v, q.Get(k))
			}
		}
		jsonResponse(`{
			"items": "2",
			"feed": [
				{"title": "Microsoft up", "url": "https://example.com/1", "time_published": "20230328T101500", "overall_sentiment_score": 0.312},
				{"title": "Microsoft down", "url": "https://example.com/2", "time_published": "20230329T000000", "overall_sentiment_score": -0.2}
			]
		}`)(w, r)
	})

	articles, err := market.GetNewsSentiment(context.Background(), "MSFT", testWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	want := entity.Article{TimePublished: "20230328T101500", URL: "https://example.com/1", Title: "Microsoft up", Sentiment: 0.312}
	if articles[0] != want {
		t.Errorf("expected %+v, got %+v", want, articles[0])
	}
}

func TestAlphaVantageMarket_GetNewsSentiment_EmptyFeed(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, jsonResponse(`{"items": "0", "feed": []}`))

	articles, err := market.GetNewsSentiment(context.Background(), "MSFT", testWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected 0 articles, got %d", len(articles))
	}
}

func TestAlphaVantageMarket_GetNewsSentiment_NoFeed(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, jsonResponse(`{"Information": "Invalid inputs."}`))

	_, err := market.GetNewsSentiment(context.Background(), "MSFT", testWindow())
	if !errors.Is(err, domain.ErrNoFeed) {
		t.Fatalf("expected ErrNoFeed, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid inputs.") {
		t.Errorf("expected API message in error, got %v", err)
	}
}

func TestAlphaVantageMarket_GetNewsSentiment_HTTPError(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := market.GetNewsSentiment(context.Background(), "MSFT", testWindow())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, domain.ErrNoFeed) {
		t.Errorf("http failure should not be reported as no feed: %v", err)
	}
}

func TestAlphaVantageMarket_ContextCancellation(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := market.GetDailyAdjusted(ctx, "AAPL")
	if err == nil {
		t.Fatal("expected error due to context cancellation, got nil")
	}
}

func TestQueryTime(t *testing.T) {
	t.Parallel()

	d := civil.Date{Year: 2023, Month: time.April, Day: 3}
	if got := QueryTime(d); got != "20230403T0000" {
		t.Errorf("expected 20230403T0000, got %s", got)
	}
}
