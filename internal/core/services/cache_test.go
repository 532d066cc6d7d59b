package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

type lookupArgs struct {
	ID    string `json:"id"`
	Limit int    `json:"limit"`
}

type countingFunc struct {
	calls int
	err   error
}

func (c *countingFunc) fetch(_ context.Context, args lookupArgs) ([]string, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []string{args.ID, "call"}, nil
}

func TestCacheKey(t *testing.T) {
	key, err := CacheKey("tabular.fetch", lookupArgs{ID: "abc", Limit: 5})

	require.NoError(t, err)
	assert.Equal(t, `tabular.fetch:{"id":"abc","limit":5}`, key)
}

func TestMemoize_HitWithinTTL(t *testing.T) {
	cache := newFakeCache()
	fn := &countingFunc{}
	memo := Memoize("lookup", fn.fetch, time.Minute, cache)
	ctx := context.Background()

	first, err := memo(ctx, lookupArgs{ID: "a"})
	require.NoError(t, err)
	second, err := memo(ctx, lookupArgs{ID: "a"})
	require.NoError(t, err)

	assert.Equal(t, 1, fn.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, time.Minute, cache.lastTTL)
}

func TestMemoize_DistinctArgsMiss(t *testing.T) {
	fn := &countingFunc{}
	memo := Memoize("lookup", fn.fetch, time.Minute, newFakeCache())
	ctx := context.Background()

	_, _ = memo(ctx, lookupArgs{ID: "a"})
	_, _ = memo(ctx, lookupArgs{ID: "b"})
	_, _ = memo(ctx, lookupArgs{ID: "a", Limit: 1})

	assert.Equal(t, 3, fn.calls)
}

func TestMemoize_RefetchesAfterExpiry(t *testing.T) {
	cache := newFakeCache()
	fn := &countingFunc{}
	memo := Memoize("lookup", fn.fetch, time.Minute, cache)
	ctx := context.Background()

	_, _ = memo(ctx, lookupArgs{ID: "a"})
	cache.advance(59 * time.Second)
	_, _ = memo(ctx, lookupArgs{ID: "a"})
	assert.Equal(t, 1, fn.calls)

	cache.advance(time.Second)
	_, _ = memo(ctx, lookupArgs{ID: "a"})
	assert.Equal(t, 2, fn.calls)
}

func TestMemoize_ErrorsAreNotCached(t *testing.T) {
	cache := newFakeCache()
	fn := &countingFunc{err: domain.ErrUpstream}
	memo := Memoize("lookup", fn.fetch, time.Minute, cache)
	ctx := context.Background()

	_, err := memo(ctx, lookupArgs{ID: "a"})
	assert.ErrorIs(t, err, domain.ErrUpstream)

	fn.err = nil
	result, err := memo(ctx, lookupArgs{ID: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "call"}, result)
	assert.Equal(t, 2, fn.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestMemoize_ReadFailureFallsThrough(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	fn := &countingFunc{}
	var results []string
	memo := Memoize("lookup", fn.fetch, time.Minute, cache,
		WithCacheObserver(func(_, result string) { results = append(results, result) }))

	result, err := memo(context.Background(), lookupArgs{ID: "a"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "call"}, result)
	assert.Equal(t, []string{CacheError}, results)
}

func TestMemoize_WriteFailureStillReturns(t *testing.T) {
	cache := newFakeCache()
	cache.setErr = errors.New("read-only")
	fn := &countingFunc{}
	memo := Memoize("lookup", fn.fetch, time.Minute, cache)

	result, err := memo(context.Background(), lookupArgs{ID: "a"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "call"}, result)
}

func TestMemoize_UnreadableEntryRefetches(t *testing.T) {
	cache := newFakeCache()
	key, err := CacheKey("lookup", lookupArgs{ID: "a"})
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), key, []byte("not json"), time.Minute))
	fn := &countingFunc{}
	memo := Memoize("lookup", fn.fetch, time.Minute, cache)

	result, err := memo(context.Background(), lookupArgs{ID: "a"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "call"}, result)
	assert.Equal(t, 1, fn.calls)
}

func TestMemoize_ObserverSeesMissThenHit(t *testing.T) {
	var results []string
	fn := &countingFunc{}
	memo := Memoize("lookup", fn.fetch, time.Minute, newFakeCache(),
		WithCacheObserver(func(name, result string) {
			assert.Equal(t, "lookup", name)
			results = append(results, result)
		}))

	_, _ = memo(context.Background(), lookupArgs{ID: "a"})
	_, _ = memo(context.Background(), lookupArgs{ID: "a"})

	assert.Equal(t, []string{CacheMiss, CacheHit}, results)
}

func TestMemoize_DisabledWithoutBackendOrTTL(t *testing.T) {
	fn := &countingFunc{}
	ctx := context.Background()

	noBackend := Memoize("lookup", fn.fetch, time.Minute, nil)
	_, _ = noBackend(ctx, lookupArgs{ID: "a"})
	_, _ = noBackend(ctx, lookupArgs{ID: "a"})

	noTTL := Memoize("lookup", fn.fetch, 0, newFakeCache())
	_, _ = noTTL(ctx, lookupArgs{ID: "a"})
	_, _ = noTTL(ctx, lookupArgs{ID: "a"})

	assert.Equal(t, 4, fn.calls)
}

func TestMemoize_DatasetRoundTrip(t *testing.T) {
	backend := newSalesBackend()
	service := NewTabularService(backend)
	memo := Memoize("tabular.fetch", service.Fetch, time.Minute, newFakeCache())
	ctx := context.Background()
	intent := rowsIntent("Sales", 2)
	dr := domain.NewDateRange(day("2025-01-01"), day("2025-01-31"))
	intent.DateRange = &dr

	fresh, err := memo(ctx, intent)
	require.NoError(t, err)
	cached, err := memo(ctx, intent)
	require.NoError(t, err)

	assert.Equal(t, 1, backend.gets)
	assert.Equal(t, fresh.Fields, cached.Fields)
	assert.Equal(t, fresh.Records, cached.Records)
	assert.Equal(t, fresh.TotalMatched, cached.TotalMatched)
	assert.Equal(t, Verbal(fresh), Verbal(cached))
}
