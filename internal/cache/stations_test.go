package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRecords(t testing.TB, names ...string) []models.StationRecord {
	t.Helper()

	records := make([]models.StationRecord, 0, len(names))
	for i, name := range names {
		r, err := models.NewStationRecordBuilder().
			SetName(name).
			SetUnits("feet").
			SetState("WA").
			SetLatitudeValue(47.6 + float64(i)*0.01).
			SetLongitudeValue(-122.3).
			Build()
		require.NoError(t, err)
		records = append(records, r)
	}
	return records
}

func TestStationCacheGetSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stations []models.StationRecord
		wantLen  int
	}{
		{
			name:     "empty list",
			stations: []models.StationRecord{},
			wantLen:  0,
		},
		{
			name:     "single station",
			stations: createTestRecords(t, "Seattle"),
			wantLen:  1,
		},
		{
			name:     "multiple stations",
			stations: createTestRecords(t, "Seattle", "Tacoma", "Everett"),
			wantLen:  3,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cache := NewStationCache(&config.CacheConfig{StationListTTLHours: 24})
			assert.Nil(t, cache.GetStations())

			cache.SetStations(tt.stations)

			got := cache.GetStations()
			require.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.stations, got)
		})
	}
}

func TestStationCacheExpiration(t *testing.T) {
	t.Parallel()

	clock := &mockClock{now: time.Now()}
	cache := NewStationCache(&config.CacheConfig{StationListTTLHours: 1})
	cache.clock = clock

	cache.SetStations(createTestRecords(t, "Seattle"))
	assert.Len(t, cache.GetStations(), 1)

	clock.now = clock.now.Add(2 * time.Hour)
	assert.Nil(t, cache.GetStations())
}

func TestStationCacheInvalidate(t *testing.T) {
	t.Parallel()

	cache := NewStationCache(&config.CacheConfig{StationListTTLHours: 24})
	cache.SetStations(createTestRecords(t, "Seattle"))
	cache.Invalidate()

	assert.Nil(t, cache.GetStations())
}

func TestStationCacheConcurrency(t *testing.T) {
	t.Parallel()

	cache := NewStationCache(&config.CacheConfig{StationListTTLHours: 24})
	stations := createTestRecords(t, "Seattle", "Tacoma")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cache.SetStations(stations)
		}()
		go func() {
			defer wg.Done()
			got := cache.GetStations()
			if got != nil {
				assert.Len(t, got, 2)
			}
		}()
	}
	wg.Wait()
}
