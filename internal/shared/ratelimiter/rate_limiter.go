// Package ratelimiter は外部APIの呼び出し回数を制限するリミッターを提供します。
package ratelimiter

import (
	"log/slog"
	"time"
)

const (
	// DefaultBurst は一時停止までに連続して発行できる呼び出し回数です（Alpha Vantage: 5回/分）。
	DefaultBurst = 5
	// DefaultPause は1分に2秒の余裕を加えた停止時間です。
	DefaultPause = 62 * time.Second
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// CallLimiter は呼び出し番号を数え、burst 回ごとに固定時間停止します。
// 番号は1から始まり、(burst+1) の倍数に当たる番号は呼び出しの代わりに停止に使われます。
// 停止後も番号は進むため、burst 回の呼び出しと1回の停止が交互に繰り返されます。
// ジッターや指数バックオフは行いません。
type CallLimiter struct {
	burst  int
	pause  time.Duration
	sleep  func(time.Duration)
	index  int
	calls  int
	pauses int
}

// Option はCallLimiterの設定を変更します。
type Option func(*CallLimiter)

// WithSleep は停止に使う関数を差し替えます（テスト用）。
func WithSleep(sleep func(time.Duration)) Option {
	return func(l *CallLimiter) { l.sleep = sleep }
}

// NewCallLimiter は新しいCallLimiterを生成します。
// burst が0以下の場合は DefaultBurst、pause が負の場合は DefaultPause を使います。
func NewCallLimiter(burst int, pause time.Duration, opts ...Option) *CallLimiter {
	if burst <= 0 {
		burst = DefaultBurst
	}
	if pause < 0 {
		pause = DefaultPause
	}
	l := &CallLimiter{
		burst: burst,
		pause: pause,
		sleep: time.Sleep,
		index: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WaitIfNeeded は次の呼び出しの直前に呼びます。
// 現在の番号が停止枠に当たる場合は停止してから番号を1つ進めます。
func (l *CallLimiter) WaitIfNeeded() {
	if l.index%(l.burst+1) == 0 {
		slog.Info("reached max API calls per minute, pausing", "calls", l.burst, "pause", l.pause)
		l.sleep(l.pause)
		l.index++
		l.pauses++
	}
	l.index++
	l.calls++
}

// Calls はこれまでに許可した呼び出し回数を返します。
func (l *CallLimiter) Calls() int {
	return l.calls
}

// Pauses はこれまでに挿入した停止回数を返します。
func (l *CallLimiter) Pauses() int {
	return l.pauses
}
