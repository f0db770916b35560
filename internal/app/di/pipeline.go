package di

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	jsusecase "stock_pipeline/internal/feature/jobsubmit/usecase"
	mdadapters "stock_pipeline/internal/feature/marketdata/adapters"
	mdusecase "stock_pipeline/internal/feature/marketdata/usecase"
	pladapters "stock_pipeline/internal/feature/pipeline/adapters"
	plusecase "stock_pipeline/internal/feature/pipeline/usecase"
	stusecase "stock_pipeline/internal/feature/staging/usecase"
	"stock_pipeline/internal/platform/config"
	"stock_pipeline/internal/platform/db"
	"stock_pipeline/internal/platform/gcp"
	infraredis "stock_pipeline/internal/platform/redis"
	"stock_pipeline/internal/platform/runlock"
)

// Pipeline bundles the orchestrator with the clients it owns.
type Pipeline struct {
	Flow    *plusecase.FlowUsecase
	closers []func() error
}

// Close releases every client created for the pipeline.
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewPipeline wires fetchers, stager and submitter into a FlowUsecase.
// runs and locker may be nil.
func NewPipeline(cfg *config.Config, runs plusecase.RunRepository, locker plusecase.RunLocker) (*Pipeline, error) {
	market := NewMarket(cfg.AlphaVantage)
	store := mdadapters.NewCSVStore(cfg.Pipeline.OutputDir)

	creds := gcp.NewCredentialBlock(cfg.GCP.KeyPath)
	storage := gcp.NewStorageClient(creds)

	submitter, closeSubmitter, err := NewJobSubmitter(cfg.GCP, creds, storage)
	if err != nil {
		return nil, err
	}

	flow := plusecase.NewFlowUsecase(
		mdusecase.NewPriceUsecase(market, store),
		mdusecase.NewSentimentUsecase(market, store),
		stusecase.NewStageUsecase(creds, storage, cfg.GCP.Bucket),
		jsusecase.NewSubmitUsecase(submitter, cfg.GCP.SubmitMode),
		runs,
		locker,
		plusecase.FlowConfig{
			Job:       NewJobRequest(cfg.GCP),
			JobPath:   cfg.GCP.JobPath,
			StepPause: cfg.Pipeline.StepPause,
			Burst:     cfg.Pipeline.RateBurst,
			RatePause: cfg.Pipeline.RatePause,
		},
	)

	return &Pipeline{Flow: flow, closers: []func() error{storage.Close, closeSubmitter}}, nil
}

// NewTriggerPipeline validates the run settings before wiring the pipeline.
func NewTriggerPipeline(cfg *config.Config, runs plusecase.RunRepository, locker plusecase.RunLocker) (*Pipeline, error) {
	if err := cfg.ValidateRun(); err != nil {
		return nil, err
	}
	return NewPipeline(cfg, runs, locker)
}

// NewDatabase opens the run history database when enabled. It returns nil when disabled.
func NewDatabase(cfg config.Database) (*gorm.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return db.OpenDB(db.Config{
		Driver:       cfg.Driver,
		User:         cfg.User,
		Password:     cfg.Password,
		Name:         cfg.Name,
		Host:         cfg.Host,
		Port:         cfg.Port,
		InstanceName: cfg.InstanceName,
		SSLMode:      cfg.SSLMode,
		SQLitePath:   cfg.SQLitePath,
	}, cfg.Migrate, &pladapters.RunModel{})
}

// NewRunRepository returns a gorm-backed RunRepository, or nil without a database.
func NewRunRepository(gdb *gorm.DB) plusecase.RunRepository {
	if gdb == nil {
		return nil
	}
	return pladapters.NewRunRepository(gdb)
}

// NewRedis connects to Redis when enabled. Connection failure is logged and treated as disabled.
func NewRedis(ctx context.Context, cfg config.Redis) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		slog.Warn("Redis unavailable. Running without run lock.", "error", err)
		return nil
	}
	return rdb
}

// NewRunLocker returns a Redis-backed RunLocker, or nil without Redis.
func NewRunLocker(rdb *redis.Client, ttl time.Duration) plusecase.RunLocker {
	if rdb == nil {
		return nil
	}
	return runlock.NewRedisLocker(rdb, "stock_pipeline", ttl)
}
