// Package handler はpipelineフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/pipeline/domain"
	"stock_pipeline/internal/feature/pipeline/domain/entity"
)

// RunsUsecase はパイプライン実行のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type RunsUsecase interface {
	Start(ctx context.Context, r mdentity.DateRange) (*entity.Run, error)
	History(ctx context.Context, limit int) ([]entity.Run, error)
}

// RunsHandler はパイプライン実行のHTTPリクエストを処理します。
type RunsHandler struct {
	uc RunsUsecase
}

// NewRunsHandler は新しい RunsHandler を生成します。
func NewRunsHandler(uc RunsUsecase) *RunsHandler {
	return &RunsHandler{uc: uc}
}

// StartRun は日付範囲を受け取り、パイプラインを非同期に開始します。
//
// エンドポイント例:
// POST /runs {"from_date":"2023-03-27","to_date":"2023-04-03"}
func (h *RunsHandler) StartRun(c *gin.Context) {
	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from_date and to_date are required"})
		return
	}

	r, err := mdentity.ParseDateRange(req.FromDate, req.ToDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if !r.From.Before(r.To) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrInvalidDateRange.Error()})
		return
	}

	run, err := h.uc.Start(c.Request.Context(), r)
	if errors.Is(err, domain.ErrRunInProgress) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		slog.Error("failed to start run", "from", req.FromDate, "to", req.ToDate, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to start run"})
		return
	}

	c.JSON(http.StatusAccepted, toRunResponse(*run))
}

// ListRuns は最近の実行記録を返します。
//
// エンドポイント例:
// GET /runs?limit=20
func (h *RunsHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	runs, err := h.uc.History(c.Request.Context(), limit)
	if err != nil {
		slog.Error("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list runs"})
		return
	}

	out := make([]RunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, toRunResponse(r))
	}
	c.JSON(http.StatusOK, out)
}
