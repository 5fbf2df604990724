package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/config"
)

// initRedis returns nil when REDIS_URL is unset; the server then runs as a
// single process with in-memory limiters and local-only notifications.
func initRedis(cfg *config.Config, log *zap.Logger) (redis.UniversalClient, error) {
	if !cfg.Redis.Enabled() {
		log.Info("redis disabled, running single-process")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Addr, err)
	}

	log.Info("redis connected", zap.String("addr", opts.Addr))
	return rdb, nil
}
