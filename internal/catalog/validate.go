package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/shralptide/tidestations/internal/models"
)

// Validator enforces the contract records must meet before the catalog
// hands them to consumers: a non-empty name, coordinates within range, a
// non-negative distance and units from a known vocabulary.
type Validator struct {
	units map[string]struct{}
}

func NewValidator(allowedUnits []string) *Validator {
	units := make(map[string]struct{}, len(allowedUnits))
	for _, u := range allowedUnits {
		units[strings.ToLower(strings.TrimSpace(u))] = struct{}{}
	}
	return &Validator{units: units}
}

// ValidateTuple checks a raw tuple.
func (v *Validator) ValidateTuple(t models.StationTuple) error {
	if strings.TrimSpace(t.Name) == "" {
		return NewValidationError("", "name", t.Name, models.ErrNameRequired)
	}

	if _, ok := v.units[strings.ToLower(strings.TrimSpace(t.Units))]; !ok {
		return NewValidationError(t.Name, "units", t.Units, ErrUnknownUnits)
	}

	if err := checkRange(t.Name, "latitude", t.Latitude, -90, 90); err != nil {
		return err
	}
	if err := checkRange(t.Name, "longitude", t.Longitude, -180, 180); err != nil {
		return err
	}
	return checkRange(t.Name, "distance", t.Distance, 0, math.MaxFloat64)
}

// ValidateRecord checks a built record.
func (v *Validator) ValidateRecord(r models.StationRecord) error {
	return v.ValidateTuple(r.Tuple())
}

// ValidateCoordinates checks a query point.
func ValidateCoordinates(lat, lon float64) error {
	if err := checkRange("", "latitude", &lat, -90, 90); err != nil {
		return err
	}
	return checkRange("", "longitude", &lon, -180, 180)
}

func checkRange(station, field string, value *float64, min, max float64) error {
	if value == nil {
		return nil
	}

	v := *value
	formatted := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NewValidationError(station, field, formatted, ErrNotFinite)
	}
	if v < min || v > max {
		return NewValidationError(station, field, formatted, ErrOutOfRange)
	}
	return nil
}
