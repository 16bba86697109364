// Package store persists station tuples so a catalog can reload without
// going back to the upstream source.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shralptide/tidestations/internal/models"
)

// ErrDuplicateName is returned when one save holds two stations with the
// same name. Both stores key rows by name.
var ErrDuplicateName = errors.New("duplicate station name")

// Store saves built records and hands them back as raw tuples. Callers
// rebuild and revalidate records from the tuples.
type Store interface {
	SaveStations(ctx context.Context, stations []models.StationRecord) error
	Fetch(ctx context.Context) ([]models.StationTuple, error)
}

func checkUniqueNames(stations []models.StationRecord) error {
	seen := make(map[string]struct{}, len(stations))
	for _, r := range stations {
		if _, ok := seen[r.Name()]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, r.Name())
		}
		seen[r.Name()] = struct{}{}
	}
	return nil
}
