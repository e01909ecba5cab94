package redis

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/goticket/internal/infrastructure/metrics"
	"github.com/iho/goticket/internal/usecase"
)

func TestIdempotencyStore_CheckAndSetExisting(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client, nil)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"key", "cached", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !exists || string(resp) != "cached" {
		t.Fatalf("expected existing cached response, got exists=%v resp=%s", exists, resp)
	}
}

func TestIdempotencyStore_ClaimIsExclusive(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client, nil)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "purchase-1", nil, time.Minute)
	if err != nil || exists || resp != nil {
		t.Fatalf("unexpected result: exists=%v resp=%v err=%v", exists, resp, err)
	}

	val, err := client.Get(ctx, store.prefix+"purchase-1").Result()
	if err != nil || val != usecase.IdempotencyPending {
		t.Fatalf("expected pending marker, got val=%s err=%v", val, err)
	}

	exists, resp, err = store.CheckAndSet(ctx, "purchase-1", nil, time.Minute)
	if err != nil || !exists || string(resp) != usecase.IdempotencyPending {
		t.Fatalf("second claim must see the pending marker: exists=%v resp=%s err=%v", exists, resp, err)
	}
}

func TestIdempotencyStore_UpdateAndRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client, nil)
	ctx := context.Background()

	if err := store.Update(ctx, "complete", []byte("done"), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	val, err := client.Get(ctx, store.prefix+"complete").Result()
	if err != nil || val != "done" {
		t.Fatalf("expected updated value, got %s err=%v", val, err)
	}

	if err := store.Release(ctx, "complete"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if mr.Exists(store.prefix + "complete") {
		t.Fatalf("released key still present")
	}
}

func TestIdempotencyStore_ErrorsAreCounted(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	m := metrics.New(prometheus.NewRegistry())
	store := NewIdempotencyStore(client, m)
	mr.Close()

	_, _, err := store.CheckAndSet(context.Background(), "key", nil, time.Minute)
	if err == nil {
		t.Fatalf("expected error with redis down")
	}

	if got := testutil.ToFloat64(m.RedisErrors.WithLabelValues("idempotency_claim")); got != 1 {
		t.Fatalf("expected one counted error, got %v", got)
	}
}
