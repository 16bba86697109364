package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/api"
	"github.com/shralptide/tidestations/internal/catalog"
	"github.com/shralptide/tidestations/internal/models"
)

// StationLister is the catalog surface the Lambda handler needs.
type StationLister interface {
	models.StationFinder
	StationsByState(ctx context.Context, state string) ([]models.StationRecord, error)
}

var _ StationLister = (*catalog.Catalog)(nil)

type StationsHandler struct {
	stations StationLister
}

func NewStationsHandler(stations StationLister) *StationsHandler {
	return &StationsHandler{
		stations: stations,
	}
}

// HandleRequest answers a name lookup (?name=), a state listing (?state=) or
// a nearest-stations query (?lat=&lon=&limit=).
func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	if name, ok := params["name"]; ok {
		return h.findByName(ctx, name)
	}

	if state, ok := params["state"]; ok {
		stations, err := h.stations.StationsByState(ctx, state)
		if err != nil {
			log.Error().Err(err).Str("state", state).Msg("Error listing stations by state")
			return api.Error("Error finding stations", http.StatusInternalServerError)
		}
		return api.Success(api.NewStationsResponse(stations))
	}

	lat, lon, err := api.ParseCoordinates(params)
	if err != nil {
		var invalidCoordErr api.InvalidCoordinatesError
		if errors.As(err, &invalidCoordErr) {
			return api.Error(err.Error(), http.StatusBadRequest)
		}
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}

	stations, err := h.stations.FindNearestStations(ctx, lat, lon, api.ParseLimit(params))
	if err != nil {
		log.Error().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Error finding nearest stations")
		return api.Error("Error finding stations", http.StatusInternalServerError)
	}

	return api.Success(api.NewStationsResponse(stations))
}

func (h *StationsHandler) findByName(ctx context.Context, name string) (events.APIGatewayProxyResponse, error) {
	station, err := h.stations.FindStation(ctx, name)
	if errors.Is(err, catalog.ErrStationNotFound) || (err == nil && station == nil) {
		return api.Error("Station not found", http.StatusNotFound)
	}
	if err != nil {
		log.Error().Err(err).Str("station", name).Msg("Error finding station")
		return api.Error("Error finding station", http.StatusInternalServerError)
	}
	return api.Success(api.NewStationsResponse([]models.StationRecord{*station}))
}
