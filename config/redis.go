package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ConnectRedis returns nil when no address is configured; callers treat a
// nil client as "caching disabled".
func ConnectRedis(ctx context.Context, c Redis) (*redis.Client, error) {
	if c.Addr == "" {
		log.Info().Msg("REDIS_ADDR empty, listing cache disabled")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info().Str("addr", c.Addr).Msg("connected to Redis")
	return client, nil
}
