package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Station sources understood by the catalog commands.
const (
	SourceNOAA   = "noaa"
	SourceFile   = "file"
	SourceSQLite = "sqlite"
	SourceDynamo = "dynamo"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	MaxRetries  int
	NOAABaseURL string

	StationSource string
	StationFile   string
	SQLitePath    string

	DynamoTable    string
	DynamoEndpoint string
	CacheBucket    string
	S3Endpoint     string

	DefaultUnits string
	AllowedUnits []string
	Port         int
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		if retries > 0 {
			c.MaxRetries = retries
		}
	}
}

func WithNOAABaseURL(url string) Option {
	return func(c *Config) {
		c.NOAABaseURL = strings.TrimRight(url, "/")
	}
}

// WithStationSource selects where the catalog loads stations from.
// Unknown values fall back to NOAA.
func WithStationSource(source string) Option {
	return func(c *Config) {
		switch strings.ToLower(source) {
		case SourceNOAA, SourceFile, SourceSQLite, SourceDynamo:
			c.StationSource = strings.ToLower(source)
		default:
			log.Warn().Str("source", source).Msg("Unknown station source, using noaa")
			c.StationSource = SourceNOAA
		}
	}
}

func WithStationFile(path string) Option {
	return func(c *Config) {
		c.StationFile = path
	}
}

func WithSQLitePath(path string) Option {
	return func(c *Config) {
		c.SQLitePath = path
	}
}

func WithDynamoTable(table, endpoint string) Option {
	return func(c *Config) {
		c.DynamoTable = table
		c.DynamoEndpoint = endpoint
	}
}

// WithCacheBucket enables the shared S3 station list cache. A non-empty
// endpoint points it at a local emulator.
func WithCacheBucket(bucket, endpoint string) Option {
	return func(c *Config) {
		c.CacheBucket = bucket
		c.S3Endpoint = endpoint
	}
}

// WithUnits sets the default unit label and the accepted vocabulary.
func WithUnits(defaultUnits string, allowed []string) Option {
	return func(c *Config) {
		if defaultUnits != "" {
			c.DefaultUnits = defaultUnits
		}
		if len(allowed) > 0 {
			c.AllowedUnits = allowed
		}
	}
}

func WithPort(port int) Option {
	return func(c *Config) {
		if port > 0 {
			c.Port = port
		}
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:   "production",
		LogLevel:      zerolog.InfoLevel,
		HTTPTimeout:   10 * time.Second,
		MaxRetries:    3,
		NOAABaseURL:   "https://api.tidesandcurrents.noaa.gov",
		StationSource: SourceNOAA,
		SQLitePath:    "data/stations.db",
		DynamoTable:   "tide-stations",
		DefaultUnits:  "feet",
		AllowedUnits:  []string{"feet", "meters"},
		Port:          8080,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.IsLocal() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

func (c *Config) IsLocal() bool {
	return c.Environment == "local" || c.Environment == "development"
}

// ListenAddr returns the address the standalone server binds to.
func (c *Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// LoadFromEnv loads configuration from environment variables. A .env file
// in the working directory is read first when present.
func LoadFromEnv() *Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithMaxRetries(getEnvInt("HTTP_MAX_RETRIES", 3)),
		WithNOAABaseURL(getEnvOrDefault("NOAA_BASE_URL", "https://api.tidesandcurrents.noaa.gov")),
		WithStationSource(getEnvOrDefault("STATION_SOURCE", SourceNOAA)),
		WithStationFile(os.Getenv("STATION_FILE")),
		WithSQLitePath(getEnvOrDefault("SQLITE_PATH", "data/stations.db")),
		WithDynamoTable(getEnvOrDefault("DYNAMODB_TABLE", "tide-stations"), os.Getenv("DYNAMODB_ENDPOINT")),
		WithCacheBucket(os.Getenv("STATION_CACHE_BUCKET"), os.Getenv("S3_ENDPOINT")),
		WithUnits(os.Getenv("DEFAULT_UNITS"), getEnvList("ALLOWED_UNITS")),
		WithPort(getEnvInt("PORT", 8080)),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
