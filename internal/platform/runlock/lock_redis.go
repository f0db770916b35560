// Package runlock は日付範囲ごとのパイプライン実行を1つに制限するロックを提供します。
package runlock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"stock_pipeline/internal/feature/pipeline/domain"
	"stock_pipeline/internal/feature/pipeline/usecase"
)

// DefaultTTL はロックの有効期限です。プロセスが落ちてもこの時間で解放されます。
const DefaultTTL = 2 * time.Hour

// releaseScript は自分のトークンが入っている場合だけキーを消します。
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements usecase.RunLocker using Redis SET NX.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	token  func() string
}

var _ usecase.RunLocker = (*RedisLocker)(nil)

// Option は RedisLocker の設定を変更します。
type Option func(*RedisLocker)

// WithToken はロック値の生成を差し替えます。
func WithToken(token func() string) Option {
	return func(l *RedisLocker) { l.token = token }
}

// NewRedisLocker creates a new RedisLocker instance.
func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration, opts ...Option) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	l := &RedisLocker{client: client, prefix: prefix, ttl: ttl, token: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// lockKey returns the Redis key for a lock.
func (l *RedisLocker) lockKey(key string) string {
	return fmt.Sprintf("%s:%s", l.prefix, key)
}

// Acquire はロックを取得し、解放関数を返します。
// 既に取得されていれば domain.ErrRunInProgress を返します。
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	k := l.lockKey(key)
	token := l.token()

	ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", k, err)
	}
	if !ok {
		return nil, domain.ErrRunInProgress
	}

	release := func() {
		// 呼び出し元の ctx は終わっている可能性があるため独立した ctx を使う
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{k}, token).Err(); err != nil {
			slog.Warn("failed to release run lock", "key", k, "error", err)
		}
	}
	return release, nil
}
