package usecase

import "time"

const (
	// DefaultStoreTimeout bounds a single store call when none is configured.
	DefaultStoreTimeout = 5 * time.Second

	// DefaultTokenTTL is how long an issued settlement token stays resolvable.
	DefaultTokenTTL = 30 * time.Second
)

// AccountLockKey is the lock key serializing operations on one account.
func AccountLockKey(userID string) string {
	return "account:" + userID
}

// EventLockKey is the lock key serializing inventory changes on one event.
func EventLockKey(eventName string) string {
	return "event:" + eventName
}
