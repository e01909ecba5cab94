package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateCounterFixedWindow(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	counter := NewRateCounter(client, 2, time.Minute)
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	counter.now = func() time.Time { return start }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := counter.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("allow failed: %v", err)
		}
		if ok != want {
			t.Fatalf("hit %d: got %v, want %v", i, ok, want)
		}
	}

	if ok, _ := counter.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatalf("other key must have its own window")
	}

	counter.now = func() time.Time { return start.Add(time.Minute) }
	if ok, _ := counter.Allow(ctx, "10.0.0.1"); !ok {
		t.Fatalf("next window must reset the count")
	}
}

func TestRateCounterKeysExpire(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	counter := NewRateCounter(client, 5, time.Minute)
	if _, err := counter.Allow(context.Background(), "10.0.0.1"); err != nil {
		t.Fatalf("allow failed: %v", err)
	}

	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected one counter key, got %v", keys)
	}
	if ttl := mr.TTL(keys[0]); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}
