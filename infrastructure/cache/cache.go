package cache

import (
	"context"
	"fmt"

	"trend-api/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis and verifies the connection. An empty host disables Redis.
func NewCache(ctx context.Context, addr string, username string, password string) (*redis.Client, error) {
	if addr == "" || addr[0] == ':' {
		return nil, fmt.Errorf("redis address is not configured")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	logger.GetLogger().WithField("addr", addr).Info("Redis client connected")
	return rdb, nil
}
