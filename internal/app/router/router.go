package router

import (
	"github.com/gin-gonic/gin"

	pipelinehandler "stock_pipeline/internal/feature/pipeline/transport/handler"
	"stock_pipeline/internal/platform/http/handler"
	jwtmw "stock_pipeline/internal/platform/jwt"
)

func NewRouter(health *handler.Health, runs *pipelinehandler.RunsHandler, jwtSecret string) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health.Handle)
	r.HEAD("/healthz", health.Handle)

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		// 日付範囲を指定してパイプラインを開始
		auth.POST("/runs", runs.StartRun)
		// 実行履歴
		auth.GET("/runs", runs.ListRuns)
	}

	return r
}
