package usecase

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/transform/domain/entity"
)

func d(s string) civil.Date {
	v, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return v
}

func price(stock, name, day string, v float64) mdentity.PriceRecord {
	return mdentity.PriceRecord{StockName: name, Stock: stock, Day: d(day), Value: v}
}

func sentiment(stock, name, day, title string, score float64) mdentity.SentimentRecord {
	return mdentity.SentimentRecord{
		StockName: name, Stock: stock, Day: d(day),
		Time: "20230327T133000", URL: "https://example.com/" + title, Title: title,
		Sentiment: score, RecordCount: 1,
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	prices := []mdentity.PriceRecord{
		price("AAPL", "Apple", "2023-03-27", 158.28),
		price("AAPL", "Apple", "2023-03-28", 157.65),
	}
	sentiments := []mdentity.SentimentRecord{
		sentiment("AAPL", "Apple", "2023-03-27", "a", 0.2),
		sentiment("AAPL", "Apple", "2023-03-27", "b", -0.1),
		sentiment("MSFT", "Microsoft", "2023-03-27", "c", 0.3),
	}

	rows := Join(prices, sentiments)
	require.Len(t, rows, 4)

	// 27日はニュース2件で価格行が複製される
	assert.Equal(t, "a", rows[0].Sentiment.Title)
	assert.Equal(t, "b", rows[1].Sentiment.Title)
	assert.Equal(t, 158.28, rows[0].Price.Value)
	assert.Equal(t, 158.28, rows[1].Price.Value)

	// 28日はニュースなし
	assert.Nil(t, rows[2].Sentiment)
	assert.Equal(t, d("2023-03-28"), rows[2].Day)

	// MSFT はセンチメントのみ
	assert.Nil(t, rows[3].Price)
	assert.Equal(t, "MSFT", rows[3].Stock)
}

func TestJoin_NameIsPartOfKey(t *testing.T) {
	t.Parallel()

	rows := Join(
		[]mdentity.PriceRecord{price("GOOG", "Google", "2023-03-27", 100)},
		[]mdentity.SentimentRecord{sentiment("GOOG", "Alphabet", "2023-03-27", "x", 0.1)},
	)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Sentiment)
	assert.Nil(t, rows[1].Price)
}

func TestFillAndFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows []JoinedRow
		want []entity.JoinedRecord
	}{
		{
			name: "price only row is zero filled",
			rows: Join([]mdentity.PriceRecord{price("AAPL", "Apple", "2023-03-28", 157.65)}, nil),
			want: []entity.JoinedRecord{{Day: d("2023-03-28"), Stock: "AAPL", StockName: "Apple", Value: 157.65}},
		},
		{
			name: "sentiment only row is dropped",
			rows: Join(nil, []mdentity.SentimentRecord{sentiment("MSFT", "Microsoft", "2023-03-27", "c", 0.3)}),
			want: []entity.JoinedRecord{},
		},
		{
			name: "non positive price is dropped",
			rows: Join([]mdentity.PriceRecord{
				price("META", "Meta", "2023-03-27", 0),
				price("META", "Meta", "2023-03-28", -1),
			}, nil),
			want: []entity.JoinedRecord{},
		},
		{
			name: "matched row carries both sides",
			rows: Join(
				[]mdentity.PriceRecord{price("AAPL", "Apple", "2023-03-27", 158.28)},
				[]mdentity.SentimentRecord{sentiment("AAPL", "Apple", "2023-03-27", "a", 0.2)},
			),
			want: []entity.JoinedRecord{{
				Day: d("2023-03-27"), Stock: "AAPL", StockName: "Apple", Value: 158.28,
				Time: "20230327T133000", URL: "https://example.com/a", Title: "a", Sentiment: 0.2, RecordCount: 1,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FillAndFilter(tt.rows))
		})
	}
}

func TestFillAndFilter_Bounds(t *testing.T) {
	t.Parallel()

	prices := []mdentity.PriceRecord{
		price("AAPL", "Apple", "2023-03-27", 158.28),
		price("AAPL", "Apple", "2023-03-28", 0),
		price("MSFT", "Microsoft", "2023-03-27", 276.38),
	}
	sentiments := []mdentity.SentimentRecord{
		sentiment("AAPL", "Apple", "2023-03-28", "a", 0.2),
		sentiment("ASML", "ASML Holding N.V. New York", "2023-03-29", "b", 0.1),
	}

	joined := Join(prices, sentiments)
	assert.LessOrEqual(t, len(joined), len(prices)+len(sentiments))

	for _, rec := range FillAndFilter(joined) {
		assert.Greater(t, rec.Value, 0.0)
	}
}
