package memory

import (
	"context"
	"sync"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

// KeyedLocker implements usecase.Locker with one mutex per key, created on
// demand and dropped when no caller holds or waits for it.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

// NewKeyedLocker creates a new KeyedLocker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyLock)}
}

// Acquire locks keys in the given order. Duplicate keys are locked once.
// If ctx ends while waiting, keys already taken are released.
func (l *KeyedLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acquired := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))

	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if err := l.lock(ctx, key); err != nil {
			l.unlockAll(acquired)
			return nil, err
		}
		acquired = append(acquired, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.unlockAll(acquired) })
	}, nil
}

func (l *KeyedLocker) lock(ctx context.Context, key string) error {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.drop(key, entry)
		return ctx.Err()
	}
}

func (l *KeyedLocker) unlockAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		entry := l.locks[keys[i]]
		l.mu.Unlock()

		<-entry.ch
		l.drop(keys[i], entry)
	}
}

func (l *KeyedLocker) drop(key string, entry *keyLock) {
	l.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
