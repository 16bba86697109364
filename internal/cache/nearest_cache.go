package cache

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/models"
)

type NearestCacheEntry struct {
	Stations  []models.StationRecord
	ExpiresAt time.Time
}

// NearestCache memoizes nearest-station queries. Cached records carry the
// distance from the query point, so keys use the exact coordinates.
type NearestCache struct {
	lru    *lru.Cache[string, *NearestCacheEntry]
	ttl    time.Duration
	clock  clock
	mu     sync.Mutex
	hits   uint64
	misses uint64
}

func NewNearestCache(cfg *config.CacheConfig) (*NearestCache, error) {
	if cfg == nil {
		cfg = config.GetCacheConfig()
	}

	lruCache, err := lru.New[string, *NearestCacheEntry](cfg.NearestLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &NearestCache{
		lru:   lruCache,
		ttl:   cfg.GetNearestLRUTTL(),
		clock: systemClock{},
	}, nil
}

func nearestKey(lat, lon float64, limit int) string {
	return strconv.FormatFloat(lat, 'g', -1, 64) + ":" +
		strconv.FormatFloat(lon, 'g', -1, 64) + ":" +
		strconv.Itoa(limit)
}

func (c *NearestCache) Get(lat, lon float64, limit int) ([]models.StationRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := nearestKey(lat, lon, limit)
	entry, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}

	if c.clock.Now().After(entry.ExpiresAt) {
		c.lru.Remove(key)
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.Stations, true
}

func (c *NearestCache) Add(lat, lon float64, limit int, stations []models.StationRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(nearestKey(lat, lon, limit), &NearestCacheEntry{
		Stations:  stations,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
}

// GetCacheStats returns hit and miss counters.
func (c *NearestCache) GetCacheStats() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]uint64{
		"nearest_hits":   c.hits,
		"nearest_misses": c.misses,
	}
}

// Clear removes all entries; used when the station list is reloaded.
func (c *NearestCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
