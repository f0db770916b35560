package usecase

import (
	"context"
	"errors"

	"stock_pipeline/internal/feature/marketdata/domain/entity"
)

var ErrMarketAPI = errors.New("market API error")

// mockMarketRepository is a mock implementation of the MarketRepository interface.
type mockMarketRepository struct {
	GetDailyAdjustedFunc  func(ctx context.Context, symbol string) ([]entity.DailyPrice, error)
	GetNewsSentimentFunc  func(ctx context.Context, symbol string, window entity.Window) ([]entity.Article, error)
	GetDailyAdjustedCalls int
	GetNewsSentimentCalls int
}

func (m *mockMarketRepository) GetDailyAdjusted(ctx context.Context, symbol string) ([]entity.DailyPrice, error) {
	m.GetDailyAdjustedCalls++
	if m.GetDailyAdjustedFunc != nil {
		return m.GetDailyAdjustedFunc(ctx, symbol)
	}
	return nil, errors.New("GetDailyAdjustedFunc is not implemented")
}

func (m *mockMarketRepository) GetNewsSentiment(ctx context.Context, symbol string, window entity.Window) ([]entity.Article, error) {
	m.GetNewsSentimentCalls++
	if m.GetNewsSentimentFunc != nil {
		return m.GetNewsSentimentFunc(ctx, symbol, window)
	}
	return nil, errors.New("GetNewsSentimentFunc is not implemented")
}

// mockRecordStore captures the record sets handed to it.
type mockRecordStore struct {
	prices     []entity.PriceRecord
	sentiments []entity.SentimentRecord
	err        error
}

func (m *mockRecordStore) SavePrices(r entity.DateRange, records []entity.PriceRecord) (string, error) {
	m.prices = records
	return entity.PriceFileName(r), m.err
}

func (m *mockRecordStore) SaveSentiments(r entity.DateRange, records []entity.SentimentRecord) (string, error) {
	m.sentiments = records
	return entity.SentimentFileName(r), m.err
}

// mockRateLimiter is a mock implementation of the RateLimiterInterface.
type mockRateLimiter struct {
	WaitIfNeededCalls int
}

func (m *mockRateLimiter) WaitIfNeeded() {
	m.WaitIfNeededCalls++
}
