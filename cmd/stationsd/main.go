package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/app"
	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/favorites"
	"github.com/shralptide/tidestations/internal/server"
)

func main() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	components, err := app.Build(ctx, cfg, app.Options{Persist: app.PersistSQLite})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble station catalog")
	}
	defer func() {
		if err := components.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing station database")
		}
	}()

	db, err := components.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open station database")
	}
	favs, err := favorites.NewStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open favorites")
	}

	// Warm the catalog so the first request does not pay for the load
	if result, err := components.Catalog.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial station load failed, will retry on first request")
	} else {
		log.Info().Int("stations", result.Accepted).Str("origin", result.Origin).Msg("Station catalog ready")
	}

	srv := server.New(cfg, components.Catalog, favs)
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
