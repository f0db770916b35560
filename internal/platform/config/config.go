// Package config はパイプライン全体の設定を読み込みます。
//
// 優先順位: 既定値 < YAMLファイル < 環境変数（.env の内容を含む）
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stock_pipeline/internal/platform/externalapi/alphavantage"
)

// Config is the top-level configuration.
type Config struct {
	Pipeline     Pipeline     `yaml:"pipeline"`
	AlphaVantage AlphaVantage `yaml:"alpha_vantage"`
	GCP          GCP          `yaml:"gcp"`
	Database     Database     `yaml:"database"`
	Redis        Redis        `yaml:"redis"`
	Server       Server       `yaml:"server"`
	Logging      Logging      `yaml:"logging"`
}

// Pipeline controls one orchestrated run.
type Pipeline struct {
	FromDate  string        `yaml:"from_date"`
	ToDate    string        `yaml:"to_date"`
	OutputDir string        `yaml:"output_dir"`
	StepPause time.Duration `yaml:"step_pause"`
	RateBurst int           `yaml:"rate_burst"`
	RatePause time.Duration `yaml:"rate_pause"`
}

// AlphaVantage holds the market data API settings.
type AlphaVantage struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Topics  string        `yaml:"topics"`
	Timeout time.Duration `yaml:"timeout"`
}

// GCP holds storage, warehouse and cluster coordinates.
type GCP struct {
	KeyPath    string `yaml:"key_path"`
	ProjectID  string `yaml:"project_id"`
	Bucket     string `yaml:"bucket"`
	Dataset    string `yaml:"dataset"`
	Table      string `yaml:"table"`
	Cluster    string `yaml:"cluster"`
	Region     string `yaml:"region"`
	JobFile    string `yaml:"job_file"`
	JobPath    string `yaml:"job_path"`
	SubmitMode string `yaml:"submit_mode"` // gcloud | dataproc | local
	GcloudBin  string `yaml:"gcloud_bin"`
}

// Database configures the run history store. Disabled by default.
type Database struct {
	Enabled      bool   `yaml:"enabled"`
	Driver       string `yaml:"driver"` // postgres | sqlite
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	InstanceName string `yaml:"instance_name"`
	SSLMode      string `yaml:"ssl_mode"`
	SQLitePath   string `yaml:"sqlite_path"`
	Migrate      bool   `yaml:"migrate"`
}

// Redis configures the run lock. Disabled by default.
type Redis struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// Server configures the trigger service.
type Server struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Pipeline: Pipeline{
			OutputDir: ".",
			StepPause: 60 * time.Second,
			RateBurst: 5,
			RatePause: 62 * time.Second,
		},
		AlphaVantage: AlphaVantage{
			BaseURL: alphavantage.DefaultBaseURL,
			Topics:  "technology",
			Timeout: 30 * time.Second,
		},
		GCP: GCP{
			JobFile:    "transform_job.py",
			JobPath:    "jobs/transform_job.py",
			SubmitMode: "gcloud",
			GcloudBin:  "gcloud",
		},
		Database: Database{
			Driver:  "postgres",
			Port:    "5432",
			SSLMode: "disable",
		},
		Redis: Redis{
			Host:    "localhost",
			Port:    "6379",
			LockTTL: 2 * time.Hour,
		},
		Server: Server{
			Addr: ":8080",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the optional YAML file at path and applies environment overrides.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ClientConfig converts the section into the API client's config.
func (a AlphaVantage) ClientConfig() alphavantage.Config {
	return alphavantage.Config{
		APIKey:  a.APIKey,
		BaseURL: a.BaseURL,
		Topics:  a.Topics,
		Timeout: a.Timeout,
	}
}

// ValidateRun reports the settings a pipeline run cannot start without.
func (c *Config) ValidateRun() error {
	var missing []string
	check := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	check("alpha_vantage.api_key", c.AlphaVantage.APIKey)
	check("gcp.bucket", c.GCP.Bucket)
	check("gcp.dataset", c.GCP.Dataset)
	check("gcp.table", c.GCP.Table)
	check("gcp.job_path", c.GCP.JobPath)
	switch c.GCP.SubmitMode {
	case "gcloud", "dataproc":
		check("gcp.cluster", c.GCP.Cluster)
		check("gcp.region", c.GCP.Region)
	case "local":
	default:
		return fmt.Errorf("unknown submit mode %q", c.GCP.SubmitMode)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "true" || v == "1"
		}
	}

	str("FROM_DATE", &cfg.Pipeline.FromDate)
	str("TO_DATE", &cfg.Pipeline.ToDate)
	str("OUTPUT_DIR", &cfg.Pipeline.OutputDir)
	dur("STEP_PAUSE", &cfg.Pipeline.StepPause)
	num("RATE_BURST", &cfg.Pipeline.RateBurst)
	dur("RATE_PAUSE", &cfg.Pipeline.RatePause)

	str("ALPHA_VANTAGE_API_KEY", &cfg.AlphaVantage.APIKey)
	str("ALPHA_VANTAGE_BASE_URL", &cfg.AlphaVantage.BaseURL)

	str("GOOGLE_APPLICATION_CREDENTIALS", &cfg.GCP.KeyPath)
	str("GCP_KEY_PATH", &cfg.GCP.KeyPath)
	str("GCP_PROJECT_ID", &cfg.GCP.ProjectID)
	str("GCS_BUCKET_NAME", &cfg.GCP.Bucket)
	str("BQ_DATASET_NAME", &cfg.GCP.Dataset)
	str("BQ_TABLE_NAME", &cfg.GCP.Table)
	str("DATAPROC_CLUSTER", &cfg.GCP.Cluster)
	str("DATAPROC_REGION", &cfg.GCP.Region)
	str("JOB_FILE", &cfg.GCP.JobFile)
	str("JOB_PATH", &cfg.GCP.JobPath)
	str("SUBMIT_MODE", &cfg.GCP.SubmitMode)

	flag("DB_ENABLED", &cfg.Database.Enabled)
	str("DB_DRIVER", &cfg.Database.Driver)
	str("DB_HOST", &cfg.Database.Host)
	str("DB_PORT", &cfg.Database.Port)
	str("DB_USER", &cfg.Database.User)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_NAME", &cfg.Database.Name)
	str("INSTANCE_CONNECTION_NAME", &cfg.Database.InstanceName)
	str("SQLITE_PATH", &cfg.Database.SQLitePath)
	flag("RUN_MIGRATIONS", &cfg.Database.Migrate)

	flag("REDIS_ENABLED", &cfg.Redis.Enabled)
	str("REDIS_HOST", &cfg.Redis.Host)
	str("REDIS_PORT", &cfg.Redis.Port)
	str("REDIS_PASSWORD", &cfg.Redis.Password)

	str("SERVER_ADDR", &cfg.Server.Addr)
	str("JWT_SECRET", &cfg.Server.JWTSecret)

	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	return errors.Join(errs...)
}
