package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// setupTestCache creates a cache in a temporary directory.
func setupTestCache(t *testing.T) (*Cache, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)}
	cache, err := NewCache(t.TempDir(), WithClock(clock.Now))
	require.NoError(t, err)
	require.NotNil(t, cache)
	t.Cleanup(func() { assert.NoError(t, cache.Close()) })

	return cache, clock
}

func TestNewCache_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	cache, err := NewCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	assert.Equal(t, filepath.Join(dir, "cache.db"), cache.Path())
	assert.FileExists(t, cache.Path())
}

func TestNewCache_ReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewCache(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "tabular.info:{}", []byte("payload"), time.Hour))
	require.NoError(t, first.Close())

	second, err := NewCache(dir)
	require.NoError(t, err)
	defer second.Close()

	val, ok, err := second.Get(ctx, "tabular.info:{}")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", string(val))

	var applied int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestCache_GetMissing(t *testing.T) {
	cache, _ := setupTestCache(t)

	val, ok, err := cache.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestCache_SetOverwrites(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("old"), time.Minute))
	require.NoError(t, cache.Set(ctx, "k", []byte("new"), time.Minute))

	val, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", string(val))
}

func TestCache_Expiry(t *testing.T) {
	cache, clock := setupTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))

	clock.Advance(59 * time.Second)
	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Sweep(t *testing.T) {
	cache, clock := setupTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, cache.Set(ctx, "long", []byte("b"), time.Hour))

	clock.Advance(time.Minute)

	removed, err := cache.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok, err := cache.Get(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_ClosedDatabaseErrors(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	_, _, err = cache.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), "k", []byte("v"), time.Minute))
}
