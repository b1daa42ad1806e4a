package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	applog "medquote-backend/internal/infrastructure/logger"
)

// OpenRedis connects the client shared by the idempotency store and the
// auto-quotation queue. BRPOP consumers hold a pooled connection each, so the
// pool is sized above the worker count.
func OpenRedis(addr string, db, workers int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		PoolSize: 10 + workers,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	applog.L().Info("redis: connected", zap.String("addr", addr), zap.Int("db", db))
	return r, nil
}
