package entity

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// DateLayout is the ISO date format used for run parameters, CSV days and file names.
const DateLayout = "2006-01-02"

// DateRange is the half-open interval [From, To) a run covers.
type DateRange struct {
	From civil.Date
	To   civil.Date
}

// ParseDateRange parses two ISO date strings (YYYY-MM-DD).
// The range is not otherwise validated: a To before From simply yields no price rows.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := civil.ParseDate(from)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse from_date %q: %w", from, err)
	}
	t, err := civil.ParseDate(to)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse to_date %q: %w", to, err)
	}
	return DateRange{From: f, To: t}, nil
}

// Contains reports whether from <= day < to.
func (r DateRange) Contains(day civil.Date) bool {
	return !day.Before(r.From) && day.Before(r.To)
}

// Suffix returns "<from>_<to>", the part every staged file name is keyed by.
func (r DateRange) Suffix() string {
	return r.From.String() + "_" + r.To.String()
}

// PriceFileName は価格レコードセットのファイル名を返します（例: stocks_df_2023-03-27_2023-04-03.csv）。
func PriceFileName(r DateRange) string {
	return "stocks_df_" + r.Suffix() + ".csv"
}

// SentimentFileName はセンチメントレコードセットのファイル名を返します。
func SentimentFileName(r DateRange) string {
	return "stocks_sentiment_df_" + r.Suffix() + ".csv"
}
