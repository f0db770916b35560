package domain

import "errors"

// ErrRunInProgress は同じ日付範囲の実行が既に走っている場合のエラーです。
var ErrRunInProgress = errors.New("a run for this date range is already in progress")

// ErrInvalidDateRange はリクエストの日付範囲が不正な場合のエラーです。
var ErrInvalidDateRange = errors.New("invalid date range")
