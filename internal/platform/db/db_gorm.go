package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Config はデータベース接続設定です。
type Config struct {
	Driver       string // "postgres"（既定）または "sqlite"
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	InstanceName string // Cloud SQL のインスタンス接続名。設定時は Unix ソケットで接続
	SSLMode      string
	SQLitePath   string
}

// Opener は DSN から gorm.DB を開きます。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN は PostgreSQL の DSN を組み立てます。InstanceName があれば Cloud SQL のソケットを優先します。
func BuildDSN(cfg Config) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// ConnectWithRetry は timeout まで retryInterval ごとに接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying...", "error", err)
		time.Sleep(retryInterval)
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func openSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

// OpenDB は設定に従って接続し、migrate が true なら models をマイグレーションします。
func OpenDB(cfg Config, migrate bool, models ...any) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "./pipeline.db"
		}
		db, err = openSQLite(path)
	case "", "postgres":
		db, err = ConnectWithRetry(BuildDSN(cfg), 60*time.Second, openPostgres)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if migrate && len(models) > 0 {
		// マイグレーション（実行履歴など）
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}
