package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// In-memory station list
	StationListTTLHours int

	// Nearest-station LRU
	NearestLRUSize       int
	NearestLRUTTLMinutes int

	// DynamoDB batch writes
	BatchSize       int
	MaxBatchRetries int

	EnableListCache   bool
	EnableNearestLRU  bool
	EnableStoreWrites bool
}

const (
	defaultStationListTTLHours  = 24
	defaultNearestLRUSize       = 1000
	defaultNearestLRUTTLMinutes = 60
	defaultBatchSize            = 25
	defaultMaxBatchRetries      = 3
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		StationListTTLHours:  getEnvInt("CACHE_STATION_LIST_TTL_HOURS", defaultStationListTTLHours),
		NearestLRUSize:       getEnvInt("CACHE_NEAREST_LRU_SIZE", defaultNearestLRUSize),
		NearestLRUTTLMinutes: getEnvInt("CACHE_NEAREST_LRU_TTL_MINUTES", defaultNearestLRUTTLMinutes),
		BatchSize:            getEnvInt("CACHE_BATCH_SIZE", defaultBatchSize),
		MaxBatchRetries:      getEnvInt("CACHE_MAX_BATCH_RETRIES", defaultMaxBatchRetries),
		EnableListCache:      getEnvBool("CACHE_ENABLE_LIST", true),
		EnableNearestLRU:     getEnvBool("CACHE_ENABLE_NEAREST_LRU", true),
		EnableStoreWrites:    getEnvBool("CACHE_ENABLE_STORE_WRITES", true),
	}

	// DynamoDB rejects batches over 25 items
	if config.BatchSize <= 0 || config.BatchSize > defaultBatchSize {
		config.BatchSize = defaultBatchSize
	}

	log.Debug().
		Int("StationListTTLHours", config.StationListTTLHours).
		Int("NearestLRUSize", config.NearestLRUSize).
		Int("NearestLRUTTLMinutes", config.NearestLRUTTLMinutes).
		Int("BatchSize", config.BatchSize).
		Int("MaxBatchRetries", config.MaxBatchRetries).
		Bool("EnableListCache", config.EnableListCache).
		Bool("EnableNearestLRU", config.EnableNearestLRU).
		Bool("EnableStoreWrites", config.EnableStoreWrites).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetStationListTTL() time.Duration {
	return time.Duration(c.StationListTTLHours) * time.Hour
}

func (c *CacheConfig) GetNearestLRUTTL() time.Duration {
	return time.Duration(c.NearestLRUTTLMinutes) * time.Minute
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
