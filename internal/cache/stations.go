package cache

import (
	"sync"
	"time"

	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/models"
)

// StationCache keeps the most recently loaded station list in memory. The
// slice is replaced as a whole, never edited in place, so readers always see
// a complete list.
type StationCache struct {
	stations    []models.StationRecord
	lastUpdated time.Time
	ttl         time.Duration
	clock       clock
	mu          sync.RWMutex
}

func NewStationCache(cfg *config.CacheConfig) *StationCache {
	if cfg == nil {
		cfg = config.GetCacheConfig()
	}
	return &StationCache{
		ttl:   cfg.GetStationListTTL(),
		clock: systemClock{},
	}
}

// GetStations returns the cached list, or nil when empty or expired.
func (c *StationCache) GetStations() []models.StationRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stations == nil || c.isExpired() {
		return nil
	}
	return c.stations
}

func (c *StationCache) SetStations(stations []models.StationRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stations = stations
	c.lastUpdated = c.clock.Now()
}

// Invalidate drops the cached list so the next read reloads it.
func (c *StationCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stations = nil
	c.lastUpdated = time.Time{}
}

func (c *StationCache) isExpired() bool {
	return c.clock.Now().Sub(c.lastUpdated) > c.ttl
}
