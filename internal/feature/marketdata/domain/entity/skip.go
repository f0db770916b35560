package entity

import "cloud.google.com/go/civil"

// SkipReason classifies why an API call contributed no records.
type SkipReason string

const (
	// SkipRequestFailed covers transport, HTTP status and decode failures.
	SkipRequestFailed SkipReason = "request_failed"
	// SkipNoFeed is a successful sentiment response that carried no article feed.
	SkipNoFeed SkipReason = "no_feed"
)

// Skip records one call that was skipped. Window is the zero date for price calls.
type Skip struct {
	Symbol string
	Window civil.Date
	Reason SkipReason
	Err    error
}
