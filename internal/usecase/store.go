package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/goticket/internal/domain"
)

// withStoreTimeout runs fn under a per-call deadline. A deadline hit is
// reported as domain.ErrStoreUnavailable.
func withStoreTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return storeError(fn(callCtx))
}

// lockWithTimeout waits at most timeout for keys, so a queue of buyers on
// one account or event fails as domain.ErrStoreUnavailable instead of
// waiting forever.
func lockWithTimeout(ctx context.Context, locker Locker, timeout time.Duration, keys ...string) (func(), error) {
	var release func()
	err := withStoreTimeout(ctx, timeout, func(ctx context.Context) error {
		var err error
		release, err = locker.Acquire(ctx, keys...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return release, nil
}

func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}
