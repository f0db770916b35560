package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_pipeline/internal/platform/http/handler"
)

// NewHealth builds the /healthz handler with a check per configured dependency.
func NewHealth(gdb *gorm.DB, rdb *redis.Client) *handler.Health {
	checks := map[string]handler.CheckFunc{}
	if gdb != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return handler.NewHealth(checks)
}
