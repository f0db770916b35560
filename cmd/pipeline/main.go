package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"stock_pipeline/internal/app/di"
	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/pipeline/domain/entity"
	"stock_pipeline/internal/platform/config"
	"stock_pipeline/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	from := flag.String("from", "", "first day of the range (YYYY-MM-DD, inclusive)")
	to := flag.String("to", "", "day after the last day of the range (YYYY-MM-DD, exclusive)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// フラグ指定があれば設定より優先
	if *from != "" {
		cfg.Pipeline.FromDate = *from
	}
	if *to != "" {
		cfg.Pipeline.ToDate = *to
	}
	if err := cfg.ValidateRun(); err != nil {
		log.Fatal(err)
	}
	r, err := mdentity.ParseDateRange(cfg.Pipeline.FromDate, cfg.Pipeline.ToDate)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 実行履歴（任意）
	gdb, err := di.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}

	// 多重起動防止（任意）
	rdb := di.NewRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	p, err := di.NewPipeline(cfg, di.NewRunRepository(gdb), di.NewRunLocker(rdb, cfg.Redis.LockTTL))
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			slog.Error("failed to close clients", "error", err)
		}
	}()

	run, err := p.Flow.Run(ctx, r)
	if err != nil {
		log.Fatal("pipeline failed: ", err)
	}
	if run.Status != entity.RunSucceeded {
		slog.Warn("pipeline finished without a successful job", "status", run.Status, "exit_code", run.SubmitExitCode)
	}
	slog.Info("pipeline finished", "run_id", run.ID, "took", entity.FormatElapsed(run.Elapsed()))
}
