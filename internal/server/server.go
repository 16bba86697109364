// Package server exposes the station catalog and favorites over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/catalog"
	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/models"
)

const requestTimeout = 10 * time.Second

// StationCatalog is the catalog surface the server needs.
type StationCatalog interface {
	models.StationFinder
	Load(ctx context.Context) (catalog.LoadResult, error)
	Stations(ctx context.Context) ([]models.StationRecord, error)
	StationsByState(ctx context.Context, state string) ([]models.StationRecord, error)
	States(ctx context.Context) ([]string, error)
	ResolveFavorites(ctx context.Context, names []string) ([]models.StationRecord, error)
}

// FavoriteStore persists favorite station names in display order.
type FavoriteStore interface {
	Add(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

var _ StationCatalog = (*catalog.Catalog)(nil)

// Server bundles the router and its dependencies.
type Server struct {
	cfg       *config.Config
	catalog   StationCatalog
	favorites FavoriteStore
	engine    *gin.Engine
}

func New(cfg *config.Config, stations StationCatalog, favorites FavoriteStore) *Server {
	if cfg.IsLocal() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())
	engine.Use(corsMiddleware())

	s := &Server{
		cfg:       cfg,
		catalog:   stations,
		favorites: favorites,
		engine:    engine,
	}
	s.registerRoutes()
	return s
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting station server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("Shutting down station server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/stations", s.handleListStations)
	s.engine.GET("/stations/nearest", s.handleNearest)
	s.engine.GET("/stations/:name", s.handleGetStation)
	s.engine.POST("/stations/reload", s.handleReload)
	s.engine.GET("/states", s.handleStates)

	s.engine.GET("/favorites", s.handleListFavorites)
	s.engine.PUT("/favorites/:name", s.handleAddFavorite)
	s.engine.DELETE("/favorites/:name", s.handleRemoveFavorite)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Handled request")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
