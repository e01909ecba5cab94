package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateCounter is a fixed-window request counter shared by every server
// process. It implements middleware.Limiter.
type RateCounter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateCounter allows limit hits per key per window.
func NewRateCounter(client *redis.Client, limit int, window time.Duration) *RateCounter {
	return &RateCounter{
		client: client,
		prefix: "ratelimit:",
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow counts a hit for key and reports whether it is within the limit.
func (c *RateCounter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := c.now().UnixNano() / int64(c.window)
	fullKey := c.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, c.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, storeError(err)
	}

	return incr.Val() <= c.limit, nil
}
