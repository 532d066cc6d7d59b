package domain

import "time"

// CacheEntry is a memoized value held by an in-process cache backend.
// Durable backends let the store manage expiry instead.
type CacheEntry struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

// Live reports whether the entry may still be served at now.
func (e CacheEntry) Live(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}
