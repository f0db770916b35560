package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"stock_pipeline/internal/app/di"
	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	stdomain "stock_pipeline/internal/feature/staging/domain"
	tfusecase "stock_pipeline/internal/feature/transform/usecase"
	"stock_pipeline/internal/platform/config"
	"stock_pipeline/internal/platform/gcp"
	"stock_pipeline/internal/platform/logger"
)

// transform はステージ済みの価格・センチメントを結合して BigQuery に追記するジョブです。
// 引数はジョブ投入時の "--" 以降と同じ形式で受け取ります。
func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	bucket := flag.String("gcs_bucket_name", "", "bucket holding the staged record sets")
	dataset := flag.String("bq_dataset_name", "", "destination dataset")
	table := flag.String("bq_table_name", "", "destination table")
	from := flag.String("from_date", "", "first day of the range (YYYY-MM-DD)")
	to := flag.String("to_date", "", "day after the last day of the range (YYYY-MM-DD)")
	flag.Parse()

	for _, f := range []struct{ name, value string }{
		{"gcs_bucket_name", *bucket},
		{"bq_dataset_name", *dataset},
		{"bq_table_name", *table},
		{"from_date", *from},
		{"to_date", *to},
	} {
		if f.value == "" {
			flag.Usage()
			log.Fatalf("--%s is required", f.name)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	r, err := mdentity.ParseDateRange(*from, *to)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	creds := gcp.NewCredentialBlock(cfg.GCP.KeyPath)
	if err := creds.Register(ctx); err != nil && !errors.Is(err, stdomain.ErrCredentialsRegistered) {
		log.Fatal("failed to register credentials: ", err)
	}

	storage := gcp.NewStorageClient(creds)
	defer func() {
		if err := storage.Close(); err != nil {
			slog.Error("failed to close storage client", "error", err)
		}
	}()

	res, err := di.NewTransform(cfg.GCP, creds, storage).Run(ctx, tfusecase.Params{
		Range:   r,
		Bucket:  *bucket,
		Dataset: *dataset,
		Table:   *table,
	})
	if err != nil {
		slog.Error("transform failed", "error", err)
		os.Exit(1)
	}
	slog.Info("transform finished",
		"price_rows", res.PriceRows, "sentiment_rows", res.SentimentRows,
		"joined_rows", res.JoinedRows, "appended_rows", res.AppendedRows)
}
