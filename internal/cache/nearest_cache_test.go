package cache

import (
	"testing"
	"time"

	"github.com/shralptide/tidestations/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestCache(t *testing.T) {
	t.Parallel()

	cache, err := NewNearestCache(&config.CacheConfig{NearestLRUSize: 10, NearestLRUTTLMinutes: 60})
	require.NoError(t, err)

	stations := createTestRecords(t, "Seattle", "Tacoma")

	_, ok := cache.Get(47.6, -122.3, 5)
	assert.False(t, ok)

	cache.Add(47.6, -122.3, 5, stations)

	got, ok := cache.Get(47.6, -122.3, 5)
	assert.True(t, ok)
	assert.Equal(t, stations, got)

	// Any change in the point or the limit is a different query
	_, ok = cache.Get(47.600001, -122.300001, 5)
	assert.False(t, ok)
	_, ok = cache.Get(47.6, -122.3, 2)
	assert.False(t, ok)

	stats := cache.GetCacheStats()
	assert.Equal(t, uint64(1), stats["nearest_hits"])
	assert.Equal(t, uint64(3), stats["nearest_misses"])

	cache.Clear()
	_, ok = cache.Get(47.6, -122.3, 5)
	assert.False(t, ok)
}

func TestNearestCacheExpiration(t *testing.T) {
	t.Parallel()

	cache, err := NewNearestCache(&config.CacheConfig{NearestLRUSize: 10, NearestLRUTTLMinutes: 1})
	require.NoError(t, err)
	clock := &mockClock{now: time.Now()}
	cache.clock = clock

	cache.Add(10, 10, 1, createTestRecords(t, "Somewhere"))
	_, ok := cache.Get(10, 10, 1)
	assert.True(t, ok)

	clock.now = clock.now.Add(2 * time.Minute)
	_, ok = cache.Get(10, 10, 1)
	assert.False(t, ok)
}

func TestNearestCacheEviction(t *testing.T) {
	t.Parallel()

	cache, err := NewNearestCache(&config.CacheConfig{NearestLRUSize: 2, NearestLRUTTLMinutes: 60})
	require.NoError(t, err)

	records := createTestRecords(t, "A")
	cache.Add(1, 1, 1, records)
	cache.Add(2, 2, 1, records)
	cache.Add(3, 3, 1, records)

	_, ok := cache.Get(1, 1, 1)
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = cache.Get(3, 3, 1)
	assert.True(t, ok)
}

func TestNewNearestCacheInvalidSize(t *testing.T) {
	t.Parallel()

	_, err := NewNearestCache(&config.CacheConfig{NearestLRUSize: 0})
	assert.Error(t, err)
}
