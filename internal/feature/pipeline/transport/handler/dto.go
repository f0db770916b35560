package handler

import (
	"time"

	"stock_pipeline/internal/feature/pipeline/domain/entity"
)

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// StartRunRequest は POST /runs のリクエストボディです。
type StartRunRequest struct {
	FromDate string `json:"from_date" binding:"required"`
	ToDate   string `json:"to_date" binding:"required"`
}

// RunResponse は実行記録のレスポンスです。
type RunResponse struct {
	ID               string     `json:"id"`
	FromDate         string     `json:"from_date"`
	ToDate           string     `json:"to_date"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	Elapsed          string     `json:"elapsed,omitempty"`
	PriceRecords     int        `json:"price_records"`
	SentimentRecords int        `json:"sentiment_records"`
	PriceSkips       int        `json:"price_skips"`
	SentimentSkips   int        `json:"sentiment_skips"`
	APICalls         int        `json:"api_calls"`
	StagedObjects    []string   `json:"staged_objects,omitempty"`
	SubmitMode       string     `json:"submit_mode,omitempty"`
	SubmitExitCode   int        `json:"submit_exit_code"`
	Message          string     `json:"message,omitempty"`
}

func toRunResponse(r entity.Run) RunResponse {
	out := RunResponse{
		ID:               r.ID,
		FromDate:         r.Range.From.String(),
		ToDate:           r.Range.To.String(),
		Status:           string(r.Status),
		StartedAt:        r.StartedAt.UTC(),
		PriceRecords:     r.PriceRecords,
		SentimentRecords: r.SentimentRecords,
		PriceSkips:       r.PriceSkips,
		SentimentSkips:   r.SentimentSkips,
		APICalls:         r.APICalls,
		StagedObjects:    r.StagedObjects,
		SubmitMode:       r.SubmitMode,
		SubmitExitCode:   r.SubmitExitCode,
		Message:          r.Message,
	}
	if !r.FinishedAt.IsZero() {
		finished := r.FinishedAt.UTC()
		out.FinishedAt = &finished
		out.Elapsed = entity.FormatElapsed(r.Elapsed())
	}
	return out
}
