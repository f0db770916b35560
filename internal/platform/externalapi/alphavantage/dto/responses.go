// Package dto defines data transfer objects for the Alpha Vantage API responses.
package dto

// apiNotice holds the fields Alpha Vantage uses instead of an HTTP error status.
type apiNotice struct {
	ErrorMessage string `json:"Error Message,omitempty"`
	Note         string `json:"Note,omitempty"`
	Information  string `json:"Information,omitempty"`
}

// Message returns the first non-empty notice, or "".
func (n apiNotice) Message() string {
	switch {
	case n.ErrorMessage != "":
		return n.ErrorMessage
	case n.Note != "":
		return n.Note
	default:
		return n.Information
	}
}

// DailyAdjustedResponse represents the JSON response of function=TIME_SERIES_DAILY_ADJUSTED.
// TimeSeries is keyed by ISO date, each value keyed by field name ("5. adjusted close", ...).
type DailyAdjustedResponse struct {
	apiNotice
	MetaData   map[string]string            `json:"Meta Data"`
	TimeSeries map[string]map[string]string `json:"Time Series (Daily)"`
}

// NewsSentimentResponse represents the JSON response of function=NEWS_SENTIMENT.
// Feed is nil when the response carries no "feed" key.
type NewsSentimentResponse struct {
	apiNotice
	Items string     `json:"items"`
	Feed  []FeedItem `json:"feed"`
}

// FeedItem is one article in a news-sentiment feed.
type FeedItem struct {
	Title                 string  `json:"title"`
	URL                   string  `json:"url"`
	TimePublished         string  `json:"time_published"`
	OverallSentimentScore float64 `json:"overall_sentiment_score"`
}
