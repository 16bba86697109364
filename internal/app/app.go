// Package app assembles a station catalog and its backing services from
// configuration. The Lambda, the HTTP server and the CLI all start here.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/awsclient"
	"github.com/shralptide/tidestations/internal/cache"
	"github.com/shralptide/tidestations/internal/catalog"
	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/store"
	"github.com/shralptide/tidestations/pkg/http/client"
)

const (
	PersistNone   = ""
	PersistSQLite = config.SourceSQLite
	PersistDynamo = config.SourceDynamo
)

type Options struct {
	// Persist names the store freshly loaded lists are written to.
	Persist string
	Strict  bool
	Cache   *config.CacheConfig
}

// Components owns everything Build opened. Close releases it.
type Components struct {
	Catalog *catalog.Catalog

	cfg      *config.Config
	cacheCfg *config.CacheConfig
	db       *sql.DB
	dynamo   *store.DynamoStore
}

func Build(ctx context.Context, cfg *config.Config, opts Options) (*Components, error) {
	cacheCfg := opts.Cache
	if cacheCfg == nil {
		cacheCfg = config.GetCacheConfig()
	}

	c := &Components{cfg: cfg, cacheCfg: cacheCfg}

	source, err := c.source(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	catalogOpts := []catalog.Option{
		catalog.WithCache(cache.NewStationCache(cacheCfg)),
		catalog.WithUnits(cfg.DefaultUnits, cfg.AllowedUnits),
		catalog.WithStrict(opts.Strict),
	}

	if cacheCfg.EnableNearestLRU {
		nearest, err := cache.NewNearestCache(cacheCfg)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		catalogOpts = append(catalogOpts, catalog.WithNearestCache(nearest))
	}

	if cacheCfg.EnableListCache && cfg.CacheBucket != "" {
		s3Client, err := awsclient.NewS3Client(ctx, cfg.S3Endpoint)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		catalogOpts = append(catalogOpts, catalog.WithListCache(
			cache.NewS3StationCache(s3Client, cfg.CacheBucket, cacheCfg.GetStationListTTL()),
		))
	}

	if cacheCfg.EnableStoreWrites && opts.Persist != PersistNone && opts.Persist != cfg.StationSource {
		st, err := c.Store(ctx, opts.Persist)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		catalogOpts = append(catalogOpts, catalog.WithStore(st))
	}

	c.Catalog = catalog.New(source, catalogOpts...)

	log.Debug().
		Str("source", cfg.StationSource).
		Str("persist", opts.Persist).
		Bool("list_cache", cfg.CacheBucket != "").
		Msg("Station catalog assembled")

	return c, nil
}

func (c *Components) source(ctx context.Context) (catalog.Source, error) {
	switch c.cfg.StationSource {
	case config.SourceFile:
		if c.cfg.StationFile == "" {
			return nil, errors.New("STATION_FILE is required for the file source")
		}
		return catalog.NewFileSource(c.cfg.StationFile), nil
	case config.SourceSQLite:
		return c.Store(ctx, PersistSQLite)
	case config.SourceDynamo:
		return c.Store(ctx, PersistDynamo)
	default:
		httpClient := client.New(client.Options{
			BaseURL:    c.cfg.NOAABaseURL,
			Timeout:    c.cfg.HTTPTimeout,
			MaxRetries: c.cfg.MaxRetries,
		})
		return catalog.NewNOAASource(httpClient, c.cfg.DefaultUnits), nil
	}
}

// StoreSource is a store that can also seed a catalog.
type StoreSource interface {
	store.Store
	catalog.Source
}

// Store returns the named station store, opening it on first use.
func (c *Components) Store(ctx context.Context, kind string) (StoreSource, error) {
	switch kind {
	case PersistSQLite:
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		sqliteStore, err := store.NewSQLiteStore(db)
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	case PersistDynamo:
		if c.dynamo == nil {
			dynamoClient, err := awsclient.NewDynamoClient(ctx, c.cfg.DynamoEndpoint)
			if err != nil {
				return nil, err
			}
			c.dynamo = store.NewDynamoStore(dynamoClient, c.cfg.DynamoTable, c.cacheCfg)
		}
		return c.dynamo, nil
	default:
		return nil, fmt.Errorf("unknown station store %q", kind)
	}
}

// DB returns the shared SQLite handle, opening it on first use.
func (c *Components) DB() (*sql.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	db, err := store.OpenSQLite(c.cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

func (c *Components) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
