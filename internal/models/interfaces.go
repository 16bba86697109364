package models

import "context"

// StationFinder is what prediction and display code use to look up station
// metadata. Implementations only hand out fully built records.
type StationFinder interface {
	FindStation(ctx context.Context, name string) (*StationRecord, error)
	FindNearestStations(ctx context.Context, lat, lon float64, limit int) ([]StationRecord, error)
}
