package api

import (
	"errors"
	"strconv"

	"github.com/shralptide/tidestations/internal/catalog"
)

const (
	DefaultLimit = 5
	MaxLimit     = 100
)

var ErrMissingCoordinates = errors.New("lat and lon are required")

type InvalidCoordinatesError struct{}

func (e InvalidCoordinatesError) Error() string {
	return "Invalid coordinates"
}

// ParseCoordinates reads lat and lon from query parameters.
func ParseCoordinates(params map[string]string) (float64, float64, error) {
	latStr, hasLat := params["lat"]
	lonStr, hasLon := params["lon"]

	if !hasLat || !hasLon {
		return 0, 0, ErrMissingCoordinates
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, err
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, err
	}

	if catalog.ValidateCoordinates(lat, lon) != nil {
		return 0, 0, InvalidCoordinatesError{}
	}

	return lat, lon, nil
}

// ParseLimit reads an optional result limit, falling back to DefaultLimit
// for missing or unusable values and capping at MaxLimit.
func ParseLimit(params map[string]string) int {
	limitStr, ok := params["limit"]
	if !ok {
		return DefaultLimit
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
