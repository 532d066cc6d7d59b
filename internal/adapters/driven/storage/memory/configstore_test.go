package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
}

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"sources.default_spreadsheet_id": "abc",
		"cache.ttl_seconds":              60,
	})

	assert.Equal(t, "abc", store.GetString("sources.default_spreadsheet_id"))
	assert.Equal(t, 60, store.GetInt("cache.ttl_seconds"))
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("cache.backend", "redis"))
	require.NoError(t, store.Set("cache.backend", "sqlite"))

	val, ok := store.Get("cache.backend")
	assert.True(t, ok)
	assert.Equal(t, "sqlite", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetString(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("name", "value")
	_ = store.Set("number", 123)

	assert.Equal(t, "value", store.GetString("name"))
	assert.Equal(t, "", store.GetString("number"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_GetInt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 42, 42},
		{"int64", int64(123), 123},
		{"float64", 123.7, 123},
		{"numeric string", " 15 ", 15},
		{"non-numeric string", "fifteen", 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfigStore()
			_ = store.Set("key", tt.value)
			assert.Equal(t, tt.want, store.GetInt("key"))
		})
	}

	assert.Equal(t, 0, NewConfigStore().GetInt("missing"))
}

func TestConfigStore_GetBool(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"true", true, true},
		{"false", false, false},
		{"string true", "true", true},
		{"string 1", "1", true},
		{"string garbage", "yes please", false},
		{"int", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfigStore()
			_ = store.Set("key", tt.value)
			assert.Equal(t, tt.want, store.GetBool("key"))
		})
	}
}

func TestConfigStore_SaveAndLoadAreNoOps(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("key", "value")

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, "value", store.GetString("key"))
	assert.Equal(t, 1, store.Saves())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%10)
			_ = store.Set(key, i)
			_ = store.GetInt(key)
			_ = store.GetString(key)
		}()
	}
	wg.Wait()

	for i := range 10 {
		_, ok := store.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, ok)
	}
}
