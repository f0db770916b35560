// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckFunc は依存先（DB・Redis など）の疎通を確認します。
type CheckFunc func(ctx context.Context) error

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// 登録された依存先をすべて確認し、1つでも失敗すれば 503 を返します。
type Health struct {
	checks  map[string]CheckFunc
	timeout time.Duration
}

// NewHealth は新しい Health を生成します。checks は nil でも構いません。
func NewHealth(checks map[string]CheckFunc) *Health {
	return &Health{checks: checks, timeout: 2 * time.Second}
}

// Handle はHTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func (h *Health) Handle(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}

	body := gin.H{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	c.JSON(status, body)
}
