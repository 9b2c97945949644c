package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"ytpm/infrastructure/logger"
)

// NewCache connects a Redis client. The caller treats a nil client as
// "cache disabled" and every consumer here tolerates that.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without cache")
		return nil, err
	}
	return client, nil
}
