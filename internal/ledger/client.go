package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alfreddev/weatherproxy/internal/config"
)

// NewRedisClient creates a go-redis client from the gateway config.
// Returns an error if the Redis URL cannot be parsed.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opt.Password = cfg.RedisPassword
	}
	if cfg.RedisDB != 0 {
		opt.DB = cfg.RedisDB
	}
	return redis.NewClient(opt), nil
}

// Ping checks connectivity with a bounded timeout.
func Ping(rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}
