// Package domain defines domain-level errors for the marketdata feature.
package domain

import "errors"

var (
	// ErrNoFeed indicates that a news-sentiment response decoded fine but had no "feed" array.
	ErrNoFeed = errors.New("no sentiment feed in response")

	// ErrSeriesMissing indicates that a price response had no daily time series,
	// which is how the API reports invalid symbols and quota notes.
	ErrSeriesMissing = errors.New("time series missing from response")

	// ErrMalformedRow indicates a CSV row that does not fit the record schema.
	ErrMalformedRow = errors.New("malformed record row")
)
