package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/api"
	"github.com/shralptide/tidestations/internal/catalog"
	"github.com/shralptide/tidestations/internal/favorites"
	"github.com/shralptide/tidestations/internal/models"
)

func queryParams(c *gin.Context) map[string]string {
	params := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

func internalError(c *gin.Context, err error, msg string) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, api.NewErrorResponse(msg))
}

// GET /stations[?state=XX]
func (s *Server) handleListStations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var (
		stations []models.StationRecord
		err      error
	)
	if state, ok := c.GetQuery("state"); ok {
		stations, err = s.catalog.StationsByState(ctx, state)
	} else {
		stations, err = s.catalog.Stations(ctx)
	}
	if err != nil {
		internalError(c, err, "Error listing stations")
		return
	}

	c.JSON(http.StatusOK, api.NewStationsResponse(stations))
}

// GET /stations/:name
func (s *Server) handleGetStation(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	name := c.Param("name")
	station, err := s.catalog.FindStation(ctx, name)
	if errors.Is(err, catalog.ErrStationNotFound) {
		c.JSON(http.StatusNotFound, api.NewErrorResponse("Station not found"))
		return
	}
	if err != nil {
		internalError(c, err, "Error finding station")
		return
	}

	c.JSON(http.StatusOK, api.NewStationsResponse([]models.StationRecord{*station}))
}

// GET /stations/nearest?lat=&lon=[&limit=]
func (s *Server) handleNearest(c *gin.Context) {
	params := queryParams(c)

	lat, lon, err := api.ParseCoordinates(params)
	if err != nil {
		var invalidCoordErr api.InvalidCoordinatesError
		if errors.As(err, &invalidCoordErr) {
			c.JSON(http.StatusBadRequest, api.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, api.NewErrorResponse("Invalid parameters"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	stations, err := s.catalog.FindNearestStations(ctx, lat, lon, api.ParseLimit(params))
	if err != nil {
		internalError(c, err, "Error finding stations")
		return
	}

	c.JSON(http.StatusOK, api.NewStationsResponse(stations))
}

// POST /stations/reload
func (s *Server) handleReload(c *gin.Context) {
	result, err := s.catalog.Load(c.Request.Context())
	if err != nil {
		internalError(c, err, "Error reloading stations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"origin":   result.Origin,
		"accepted": result.Accepted,
		"rejected": result.Rejected,
	})
}

// GET /states
func (s *Server) handleStates(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	states, err := s.catalog.States(ctx)
	if err != nil {
		internalError(c, err, "Error listing states")
		return
	}

	c.JSON(http.StatusOK, api.NewStatesResponse(states))
}

// GET /favorites
func (s *Server) handleListFavorites(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	names, err := s.favorites.List(ctx)
	if err != nil {
		internalError(c, err, "Error listing favorites")
		return
	}

	stations, err := s.catalog.ResolveFavorites(ctx, names)
	if err != nil {
		internalError(c, err, "Error resolving favorites")
		return
	}

	c.JSON(http.StatusOK, api.NewStationsResponse(stations))
}

// PUT /favorites/:name
func (s *Server) handleAddFavorite(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	station, err := s.catalog.FindStation(ctx, c.Param("name"))
	if errors.Is(err, catalog.ErrStationNotFound) {
		c.JSON(http.StatusNotFound, api.NewErrorResponse("Station not found"))
		return
	}
	if err != nil {
		internalError(c, err, "Error finding station")
		return
	}

	// Store the catalog's spelling of the name
	if err := s.favorites.Add(ctx, station.Name()); err != nil {
		internalError(c, err, "Error saving favorite")
		return
	}

	c.JSON(http.StatusOK, api.NewStationsResponse([]models.StationRecord{*station}))
}

// DELETE /favorites/:name
func (s *Server) handleRemoveFavorite(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	err := s.favorites.Remove(ctx, c.Param("name"))
	switch {
	case errors.Is(err, favorites.ErrNotFavorite), errors.Is(err, favorites.ErrEmptyName):
		c.JSON(http.StatusNotFound, api.NewErrorResponse("Station is not a favorite"))
		return
	case err != nil:
		internalError(c, err, "Error removing favorite")
		return
	}

	c.Status(http.StatusNoContent)
}
