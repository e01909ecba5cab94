package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the client beyond what the URL carries.
type Options struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient creates a Redis client from redisURL and verifies it with a ping.
func NewClient(ctx context.Context, redisURL string, opts ...Options) (*redis.Client, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	for _, o := range opts {
		if o.DialTimeout > 0 {
			parsed.DialTimeout = o.DialTimeout
		}
		if o.ReadTimeout > 0 {
			parsed.ReadTimeout = o.ReadTimeout
		}
		if o.WriteTimeout > 0 {
			parsed.WriteTimeout = o.WriteTimeout
		}
	}

	client := redis.NewClient(parsed)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Pinger adapts a client to the readiness check signature.
func Pinger(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
