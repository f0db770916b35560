package entity

import "cloud.google.com/go/civil"

// DailyPrice is one day of the price API's time series.
type DailyPrice struct {
	Day           civil.Date
	AdjustedClose float64
}

// Article is one entry of the news-sentiment API's feed.
type Article struct {
	TimePublished string  // e.g. "20230327T133000"
	URL           string
	Title         string
	Sentiment     float64 // overall_sentiment_score
}

// PriceRecord is one flattened row of the price record set.
type PriceRecord struct {
	StockName string
	Stock     string
	Day       civil.Date
	Value     float64 // adjusted close
}

// SentimentRecord is one flattened article of the sentiment record set.
type SentimentRecord struct {
	StockName   string
	Stock       string
	Time        string
	Day         civil.Date
	URL         string
	Title       string
	Sentiment   float64
	RecordCount int
}
