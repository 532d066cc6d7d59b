package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
	"github.com/drewfsc/saturday-night/internal/logger"
)

// Cache lookup results reported to a CacheObserver.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CacheObserver is told the outcome of every cache lookup.
type CacheObserver func(name, result string)

// MemoizeOption configures Memoize.
type MemoizeOption func(*memoizeConfig)

type memoizeConfig struct {
	observe CacheObserver
}

// WithCacheObserver reports lookups to observe.
func WithCacheObserver(observe CacheObserver) MemoizeOption {
	return func(c *memoizeConfig) {
		c.observe = observe
	}
}

// CacheKey returns name + ":" + the JSON encoding of args.
func CacheKey(name string, args any) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return name + ":" + string(data), nil
}

// Memoize wraps fn so that results are served from backend for ttl.
// The returned function has the same signature as fn. Errors are never
// cached, and concurrent misses on the same key may both call fn.
// Backend failures degrade to calling fn directly.
func Memoize[A, R any](
	name string,
	fn func(context.Context, A) (R, error),
	ttl time.Duration,
	backend driven.CacheBackend,
	opts ...MemoizeOption,
) func(context.Context, A) (R, error) {
	if backend == nil || ttl <= 0 {
		return fn
	}

	cfg := memoizeConfig{observe: func(string, string) {}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx context.Context, args A) (R, error) {
		key, err := CacheKey(name, args)
		if err != nil {
			logger.Warn("cache key for %s: %v", name, err)
			return fn(ctx, args)
		}

		data, ok, err := backend.Get(ctx, key)
		switch {
		case err != nil:
			cfg.observe(name, CacheError)
			logger.Warn("cache read for %s failed: %v", name, err)
		case ok:
			var cached R
			if err := json.Unmarshal(data, &cached); err == nil {
				cfg.observe(name, CacheHit)
				logger.Debug("cache hit for %s", key)
				return cached, nil
			}
			cfg.observe(name, CacheError)
			logger.Warn("cache entry for %s is unreadable, refetching", name)
		default:
			cfg.observe(name, CacheMiss)
			logger.Debug("cache miss for %s", key)
		}

		result, err := fn(ctx, args)
		if err != nil {
			return result, err
		}

		data, err = json.Marshal(result)
		if err != nil {
			logger.Warn("cache encode for %s: %v", name, err)
			return result, nil
		}
		if err := backend.Set(ctx, key, data, ttl); err != nil {
			logger.Warn("cache write for %s failed: %v", name, err)
		}
		return result, nil
	}
}
