package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv は上書き対象の環境変数をテスト中だけ空にします。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FROM_DATE", "TO_DATE", "OUTPUT_DIR", "STEP_PAUSE", "RATE_BURST", "RATE_PAUSE",
		"ALPHA_VANTAGE_API_KEY", "ALPHA_VANTAGE_BASE_URL",
		"GOOGLE_APPLICATION_CREDENTIALS", "GCP_KEY_PATH", "GCP_PROJECT_ID", "GCS_BUCKET_NAME",
		"BQ_DATASET_NAME", "BQ_TABLE_NAME", "DATAPROC_CLUSTER", "DATAPROC_REGION", "JOB_FILE", "JOB_PATH", "SUBMIT_MODE",
		"DB_ENABLED", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"INSTANCE_CONNECTION_NAME", "SQLITE_PATH", "RUN_MIGRATIONS",
		"REDIS_ENABLED", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD",
		"SERVER_ADDR", "JWT_SECRET", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.StepPause)
	assert.Equal(t, 5, cfg.Pipeline.RateBurst)
	assert.Equal(t, 62*time.Second, cfg.Pipeline.RatePause)
	assert.Equal(t, "technology", cfg.AlphaVantage.Topics)
	assert.Equal(t, "gcloud", cfg.GCP.SubmitMode)
}

// TestDefault_JobSourceShipped は既定のジョブソースがリポジトリに含まれ、同じ名前でステージされることを検証します。
func TestDefault_JobSourceShipped(t *testing.T) {
	gcp := Default().GCP
	root := filepath.Join("..", "..", "..")

	info, err := os.Stat(filepath.Join(root, gcp.JobPath))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, gcp.JobFile, filepath.Base(gcp.JobPath))
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	path := writeConfig(t, `
pipeline:
  from_date: "2023-03-27"
  to_date: "2023-04-03"
  step_pause: 5s
alpha_vantage:
  api_key: yaml-key
gcp:
  bucket: stock-bucket
  dataset: stocks
  table: daily
  cluster: cluster-1
  region: us-central1
database:
  enabled: true
  driver: sqlite
  sqlite_path: runs.db
logging:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2023-03-27", cfg.Pipeline.FromDate)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.StepPause)
	assert.Equal(t, 62*time.Second, cfg.Pipeline.RatePause, "unset keys keep defaults")
	assert.Equal(t, "yaml-key", cfg.AlphaVantage.APIKey)
	assert.Equal(t, "stock-bucket", cfg.GCP.Bucket)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NoError(t, cfg.ValidateRun())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	path := writeConfig(t, "alpha_vantage:\n  api_key: yaml-key\n")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "env-key")
	t.Setenv("GCS_BUCKET_NAME", "env-bucket")
	t.Setenv("RATE_PAUSE", "1s")
	t.Setenv("RATE_BURST", "3")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.AlphaVantage.APIKey)
	assert.Equal(t, "env-bucket", cfg.GCP.Bucket)
	assert.Equal(t, time.Second, cfg.Pipeline.RatePause)
	assert.Equal(t, 3, cfg.Pipeline.RateBurst)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BQ_TABLE_NAME=from-dotenv\n"), 0o600))

	// godotenv は既存の環境変数を上書きしないため、空で設定済みのキーは先に消しておく
	require.NoError(t, os.Unsetenv("BQ_TABLE_NAME"))
	t.Cleanup(func() { os.Unsetenv("BQ_TABLE_NAME") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.GCP.Table)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "pipeline: [unclosed"))
	assert.Error(t, err)

	t.Setenv("STEP_PAUSE", "sixty")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STEP_PAUSE")
}

func TestValidateRun(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := Default()
		cfg.AlphaVantage.APIKey = "k"
		cfg.GCP.Bucket = "b"
		cfg.GCP.Dataset = "d"
		cfg.GCP.Table = "t"
		cfg.GCP.Cluster = "c"
		cfg.GCP.Region = "r"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing key", func(c *Config) { c.AlphaVantage.APIKey = "" }, "alpha_vantage.api_key"},
		{"missing cluster for gcloud", func(c *Config) { c.GCP.Cluster = "" }, "gcp.cluster"},
		{"local needs no cluster", func(c *Config) { c.GCP.SubmitMode = "local"; c.GCP.Cluster = ""; c.GCP.Region = "" }, ""},
		{"unknown mode", func(c *Config) { c.GCP.SubmitMode = "spark" }, "unknown submit mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.ValidateRun()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAlphaVantage_ClientConfig(t *testing.T) {
	t.Parallel()

	av := AlphaVantage{APIKey: "k", BaseURL: "http://localhost", Topics: "technology", Timeout: time.Second}
	got := av.ClientConfig()
	assert.Equal(t, "k", got.APIKey)
	assert.Equal(t, "http://localhost", got.BaseURL)
	assert.Equal(t, time.Second, got.Timeout)
}
