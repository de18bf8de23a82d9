package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

// newRedisClient returns nil when REDIS_ADDR is unset; rate limiting is then off.
func newRedisClient(ctx context.Context, log *logger.Logger, cfg Config) (redis.UniversalClient, error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set; upload rate limiting disabled")
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}
	log.Info("Connected to Redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return rdb, nil
}
