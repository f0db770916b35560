package usecase

import (
	"cloud.google.com/go/civil"

	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/transform/domain/entity"
)

// joinKey is the (day, symbol, display name) triple both record sets are joined on.
type joinKey struct {
	Day       civil.Date
	Stock     string
	StockName string
}

// JoinedRow is one outer-join result before null filling. A nil side had no match.
type JoinedRow struct {
	Day       civil.Date
	Stock     string
	StockName string
	Price     *mdentity.PriceRecord
	Sentiment *mdentity.SentimentRecord
}

// Join performs a full outer join of prices and sentiments on (Day, Stock, StockName).
// Matched keys yield one row per price/sentiment pair. Unmatched rows from either side
// are kept with the other side nil. Output order: price-driven rows in price order,
// then sentiment-only rows in sentiment order.
func Join(prices []mdentity.PriceRecord, sentiments []mdentity.SentimentRecord) []JoinedRow {
	byKey := make(map[joinKey][]int, len(sentiments))
	for i, s := range sentiments {
		k := joinKey{s.Day, s.Stock, s.StockName}
		byKey[k] = append(byKey[k], i)
	}

	priced := make(map[joinKey]struct{}, len(prices))
	out := make([]JoinedRow, 0, len(prices)+len(sentiments))
	for i := range prices {
		p := &prices[i]
		k := joinKey{p.Day, p.Stock, p.StockName}
		priced[k] = struct{}{}

		matches := byKey[k]
		if len(matches) == 0 {
			out = append(out, JoinedRow{Day: k.Day, Stock: k.Stock, StockName: k.StockName, Price: p})
			continue
		}
		for _, j := range matches {
			out = append(out, JoinedRow{Day: k.Day, Stock: k.Stock, StockName: k.StockName, Price: p, Sentiment: &sentiments[j]})
		}
	}

	for i := range sentiments {
		s := &sentiments[i]
		k := joinKey{s.Day, s.Stock, s.StockName}
		if _, ok := priced[k]; ok {
			continue
		}
		out = append(out, JoinedRow{Day: k.Day, Stock: k.Stock, StockName: k.StockName, Sentiment: s})
	}
	return out
}

// Fill replaces the missing side of a joined row with zero values: 0 for numbers, "" for strings.
func Fill(row JoinedRow) entity.JoinedRecord {
	rec := entity.JoinedRecord{Day: row.Day, Stock: row.Stock, StockName: row.StockName}
	if row.Price != nil {
		rec.Value = row.Price.Value
	}
	if s := row.Sentiment; s != nil {
		rec.Time = s.Time
		rec.URL = s.URL
		rec.Title = s.Title
		rec.Sentiment = s.Sentiment
		rec.RecordCount = int64(s.RecordCount)
	}
	return rec
}

// FillAndFilter fills every joined row and keeps only rows with a strictly positive price.
// This drops sentiment-only rows (zero-filled price) and days without a usable price.
func FillAndFilter(rows []JoinedRow) []entity.JoinedRecord {
	out := make([]entity.JoinedRecord, 0, len(rows))
	for _, row := range rows {
		rec := Fill(row)
		if !(rec.Value > 0) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
