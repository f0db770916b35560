// Package alphavantage はAlpha Vantage株式市場APIのクライアントを提供します。
package alphavantage

import "time"

// DefaultBaseURL はAlpha Vantage APIのベースURLです。
const DefaultBaseURL = "https://www.alphavantage.co"

// Config はAlpha Vantage APIクライアントの設定を保持します。
type Config struct {
	APIKey  string        // 認証用APIキー
	BaseURL string        // APIのベースURL（例: "https://www.alphavantage.co"）
	Topics  string        // ニュースセンチメントのトピックフィルター
	Timeout time.Duration // HTTPリクエストタイムアウト
}
