package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/models"
	"github.com/shralptide/tidestations/pkg/http/client"
)

const noaaStationsPath = "/mdapi/prod/webapi/tidepredstations.json"

// NOAASource reads the NOAA CO-OPS tide prediction station list. The list
// carries no height units or distance, so every tuple gets the configured
// units and an absent distance.
type NOAASource struct {
	httpClient client.Interface
	units      string
}

var _ Source = (*NOAASource)(nil)

func NewNOAASource(httpClient client.Interface, units string) *NOAASource {
	if units == "" {
		units = "feet"
	}
	return &NOAASource{
		httpClient: httpClient,
		units:      units,
	}
}

type noaaStationList struct {
	Stations []struct {
		ID    string   `json:"stationId"`
		Name  string   `json:"name"`
		State string   `json:"state"`
		Lat   *float64 `json:"lat"`
		Lon   *float64 `json:"lon"`
	} `json:"stationList"`
}

func (s *NOAASource) Fetch(ctx context.Context) ([]models.StationTuple, error) {
	log.Debug().Msg("Fetching station list from NOAA API")

	resp, err := s.httpClient.Get(ctx, noaaStationsPath)
	if err != nil {
		return nil, NewSourceError("noaa", fmt.Errorf("fetching stations: %w", err))
	}
	if resp == nil {
		return nil, NewSourceError("noaa", fmt.Errorf("no response from NOAA API"))
	}
	if !resp.OK() {
		return nil, NewSourceError("noaa", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var list noaaStationList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, NewSourceError("noaa", fmt.Errorf("decoding response: %w", err))
	}

	tuples := make([]models.StationTuple, len(list.Stations))
	for i, st := range list.Stations {
		tuples[i] = models.StationTuple{
			Name:      st.Name,
			Units:     s.units,
			State:     st.State,
			Latitude:  st.Lat,
			Longitude: st.Lon,
		}
	}

	log.Debug().Int("station_count", len(tuples)).Msg("Fetched NOAA station list")
	return tuples, nil
}
