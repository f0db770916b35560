// Package entity defines the domain models for the pipeline feature.
package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
)

// RunStatus is the lifecycle state of one pipeline run.
type RunStatus string

const (
	RunRunning      RunStatus = "running"
	RunSucceeded    RunStatus = "succeeded"
	RunSubmitFailed RunStatus = "submit_failed"
	RunFailed       RunStatus = "failed"
)

// Run is the record of one orchestrated run over a date range.
type Run struct {
	ID         string
	Range      mdentity.DateRange
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time

	PriceRecords     int
	SentimentRecords int
	PriceSkips       int
	SentimentSkips   int
	APICalls         int
	StagedObjects    []string

	SubmitMode     string
	SubmitExitCode int
	Message        string
}

// NewRun starts a run record with a fresh ID.
func NewRun(r mdentity.DateRange, now time.Time) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Range:     r,
		Status:    RunRunning,
		StartedAt: now,
	}
}

// Elapsed is the wall-clock duration of a finished run.
func (r *Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FormatElapsed renders d as whole minutes and seconds, e.g. "4 mins & 12 seconds".
// Hours fold into minutes.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d mins & %d seconds", secs/60, secs%60)
}
