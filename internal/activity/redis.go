package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/news-interactions-api/internal/config"
	"github.com/news-interactions-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes activity entries as JSON on a pub/sub channel
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher connects to Redis and verifies the connection
func NewRedisPublisher(ctx context.Context, cfg config.RedisConfig) (*RedisPublisher, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	channel := cfg.Channel
	if channel == "" {
		channel = "activity"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisPublisherWithClient(rdb, channel), nil
}

// NewRedisPublisherWithClient wraps an existing client
func NewRedisPublisherWithClient(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// Publish sends entry to the configured channel
func (p *RedisPublisher) Publish(ctx context.Context, entry *models.Activity) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode activity: %w", err)
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

// Close releases the Redis connection
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
