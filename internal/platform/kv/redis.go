// Package kv connects to the Redis instance backing session revocation.
package kv

import (
	"context"
	"fmt"

	"recipebox/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil, nil when no Redis address is configured.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

func CloseRedis(rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	return rdb.Close()
}
