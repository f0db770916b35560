package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"stock_pipeline/internal/app/di"
	"stock_pipeline/internal/app/router"
	pipelinehandler "stock_pipeline/internal/feature/pipeline/transport/handler"
	"stock_pipeline/internal/platform/config"
	jwtmw "stock_pipeline/internal/platform/jwt"
	"stock_pipeline/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	issueToken := flag.String("issue-token", "", "print a trigger token for the given subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the token printed by -issue-token")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.Server.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	// スケジューラ等に渡すトークンを発行して終了
	if *issueToken != "" {
		if cfg.Server.JWTSecret == "" {
			log.Fatal("JWT_SECRET is required to issue tokens")
		}
		token, err := jwtmw.NewGenerator(cfg.Server.JWTSecret, *tokenTTL).GenerateToken(*issueToken)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := di.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}

	// Redis
	rdb := di.NewRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// 実行に必要な設定が揃っていなければ起動しない
	p, err := di.NewTriggerPipeline(cfg, di.NewRunRepository(gdb), di.NewRunLocker(rdb, cfg.Redis.LockTTL))
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			slog.Error("failed to close clients", "error", err)
		}
	}()

	// Handler
	runsH := pipelinehandler.NewRunsHandler(p.Flow)

	// ルータ生成
	r := router.NewRouter(di.NewHealth(gdb, rdb), runsH, cfg.Server.JWTSecret)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan struct{})
	go func() {
		defer close(shutdown)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server listening", "addr", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-shutdown

	// 実行中の run を完走させてからクライアントを閉じる（defer は Wait の後に走る）
	slog.Info("waiting for running pipeline runs")
	p.Flow.Wait()
}
