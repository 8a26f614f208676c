package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis is nil when REDIS_URL is not configured; callers fall back to in-process stores.
var Redis *redis.Client

// InitRedis connects to Redis and verifies the connection
func InitRedis(url string) error {
	if url == "" {
		log.Warn().Msg("REDIS_URL not set, using in-memory OTP store; order idempotency falls back to the database")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("could not connect to redis: %w", err)
	}

	Redis = client
	log.Info().Str("addr", opts.Addr).Msg("connected to redis")
	return nil
}

// CloseRedis closes the Redis client if one was opened
func CloseRedis() {
	if Redis == nil {
		return
	}
	if err := Redis.Close(); err != nil {
		log.Error().Err(err).Msg("error closing redis")
	}
}
