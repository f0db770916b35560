package entity

import "cloud.google.com/go/civil"

const (
	// WindowStep is the distance between consecutive window starts.
	WindowStep = 7
	// WindowSpan is the number of days a single sentiment query covers.
	WindowSpan = 5
)

// Window is the [Start, End) span of one sentiment query.
type Window struct {
	Start civil.Date
	End   civil.Date
}

// WeeklyWindows returns the sentiment query windows for r.
// The first window always starts at r.From; later ones start every WindowStep days
// while start+WindowStep is still before r.To. Each window covers WindowSpan days.
// Coverage near r.To is not adjusted: up to six trailing days may go unqueried,
// and the last window may extend past r.To.
func WeeklyWindows(r DateRange) []Window {
	start := r.From
	windows := []Window{{Start: start, End: start.AddDays(WindowSpan)}}
	for start.AddDays(WindowStep).Before(r.To) {
		start = start.AddDays(WindowStep)
		windows = append(windows, Window{Start: start, End: start.AddDays(WindowSpan)})
	}
	return windows
}
