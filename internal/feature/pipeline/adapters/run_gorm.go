package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/pipeline/domain/entity"
	"stock_pipeline/internal/feature/pipeline/usecase"
)

type runGorm struct {
	db *gorm.DB
}

var _ usecase.RunRepository = (*runGorm)(nil)

func NewRunRepository(db *gorm.DB) *runGorm {
	return &runGorm{db: db}
}

type RunModel struct {
	ID       string `gorm:"primaryKey;size:36"`
	FromDate string `gorm:"size:10;not null;index:run_range,priority:1"`
	ToDate   string `gorm:"size:10;not null;index:run_range,priority:2"`
	Status   string `gorm:"size:16;not null"`

	StartedAt  time.Time `gorm:"not null;index"`
	FinishedAt *time.Time

	PriceRecords     int    `gorm:"not null;default:0"`
	SentimentRecords int    `gorm:"not null;default:0"`
	PriceSkips       int    `gorm:"not null;default:0"`
	SentimentSkips   int    `gorm:"not null;default:0"`
	APICalls         int    `gorm:"not null;default:0"`
	StagedObjects    string `gorm:"type:text"`

	SubmitMode     string `gorm:"size:16"`
	SubmitExitCode int
	Message        string `gorm:"type:text"`
}

func (RunModel) TableName() string {
	return "pipeline_runs"
}

func toModel(e *entity.Run) RunModel {
	m := RunModel{
		ID:               e.ID,
		FromDate:         e.Range.From.String(),
		ToDate:           e.Range.To.String(),
		Status:           string(e.Status),
		StartedAt:        e.StartedAt,
		PriceRecords:     e.PriceRecords,
		SentimentRecords: e.SentimentRecords,
		PriceSkips:       e.PriceSkips,
		SentimentSkips:   e.SentimentSkips,
		APICalls:         e.APICalls,
		StagedObjects:    strings.Join(e.StagedObjects, ","),
		SubmitMode:       e.SubmitMode,
		SubmitExitCode:   e.SubmitExitCode,
		Message:          e.Message,
	}
	if !e.FinishedAt.IsZero() {
		finished := e.FinishedAt
		m.FinishedAt = &finished
	}
	return m
}

func toEntity(m RunModel) (entity.Run, error) {
	r, err := mdentity.ParseDateRange(m.FromDate, m.ToDate)
	if err != nil {
		return entity.Run{}, fmt.Errorf("run %s: %w", m.ID, err)
	}
	e := entity.Run{
		ID:               m.ID,
		Range:            r,
		Status:           entity.RunStatus(m.Status),
		StartedAt:        m.StartedAt,
		PriceRecords:     m.PriceRecords,
		SentimentRecords: m.SentimentRecords,
		PriceSkips:       m.PriceSkips,
		SentimentSkips:   m.SentimentSkips,
		APICalls:         m.APICalls,
		SubmitMode:       m.SubmitMode,
		SubmitExitCode:   m.SubmitExitCode,
		Message:          m.Message,
	}
	if m.FinishedAt != nil {
		e.FinishedAt = *m.FinishedAt
	}
	if m.StagedObjects != "" {
		e.StagedObjects = strings.Split(m.StagedObjects, ",")
	}
	return e, nil
}

// Save は実行記録を ID で upsert します。
func (r *runGorm) Save(ctx context.Context, run *entity.Run) error {
	m := toModel(run)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

// ListRecent は開始時刻の新しい順に最大 limit 件を返します。
func (r *runGorm) ListRecent(ctx context.Context, limit int) ([]entity.Run, error) {
	var rows []RunModel
	q := r.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Run, 0, len(rows))
	for _, m := range rows {
		e, err := toEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
