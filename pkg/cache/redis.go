package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/docnotify/docnotify-api/pkg/config"
)

// MaybeNewRedis connects to Redis when configured. An empty host or a failed
// connection returns nil, callers treat that as cache-disabled mode.
func MaybeNewRedis(cfg config.RedisConfig, logr *zap.Logger) *redis.Client {
	if cfg.Host == "" {
		logr.Info("redis not configured, cache and sweep lock disabled")
		return nil
	}

	client, err := NewRedis(cfg)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache and sweep lock", zap.Error(err))
		return nil
	}
	return client
}

// NewRedis returns a configured Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
