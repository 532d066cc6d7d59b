package driven

import (
	"context"
	"time"
)

// CacheBackend stores memoized values by key.
// Expired entries must never be returned. Concurrent writers may race;
// last write wins.
type CacheBackend interface {
	// Get returns the value stored under key.
	// The boolean is false on a miss or when the entry has expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
