package postgres

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/semaphore"

	"github.com/iho/goticket/internal/infrastructure/postgres/generated"
)

// AdvisoryLocker implements usecase.Locker with transaction-scoped advisory
// locks, so every server process sharing the database serializes on the
// same keys. Each held lock set pins one pooled connection.
type AdvisoryLocker struct {
	pool  pgxPool
	slots *semaphore.Weighted
}

// NewAdvisoryLocker creates a new AdvisoryLocker. At most half of the
// pool's connections hold locks at once; the rest stay free for the store
// calls made while the locks are held.
func NewAdvisoryLocker(pool *pgxpool.Pool) *AdvisoryLocker {
	return newAdvisoryLockerWithPool(pool, int(pool.Config().MaxConns)/2)
}

func newAdvisoryLockerWithPool(pool pgxPool, maxHeld int) *AdvisoryLocker {
	if maxHeld < 1 {
		maxHeld = 1
	}
	return &AdvisoryLocker{pool: pool, slots: semaphore.NewWeighted(int64(maxHeld))}
}

// Acquire takes the keys in order inside one transaction. Release ends the
// transaction, which drops every lock at once. When ctx carries a deadline
// the server gives up waiting at the same moment (lock_timeout).
func (l *AdvisoryLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return nil, mapError(err)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		l.slots.Release(1)
		return nil, mapError(err)
	}

	abort := func(err error) (func(), error) {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		l.slots.Release(1)
		return nil, mapError(err)
	}

	queries := generated.New(tx)
	if deadline, ok := ctx.Deadline(); ok {
		if err := queries.SetLockTimeout(ctx, lockTimeout(deadline)); err != nil {
			return abort(err)
		}
	}

	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if err := queries.AcquireXactLock(ctx, key); err != nil {
			return abort(err)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = tx.Rollback(context.Background())
			l.slots.Release(1)
		})
	}, nil
}

// lockTimeout renders the time left until deadline as a lock_timeout
// setting. Zero would disable the timeout, so it never goes below 1ms.
func lockTimeout(deadline time.Time) string {
	ms := time.Until(deadline).Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return strconv.FormatInt(ms, 10) + "ms"
}
