// Package logger は slog ベースのアプリケーションロガーを生成します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel は "debug" / "info" / "warn" / "error" を slog.Level に変換します。
// 認識できない値は info になります。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New は w に出力するロガーを生成します。format が "json" なら JSON、それ以外はテキストです。
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup は標準出力へのロガーを生成し、slog のデフォルトに設定します。
func Setup(level, format string) *slog.Logger {
	l := New(os.Stdout, level, format)
	slog.SetDefault(l)
	return l
}
