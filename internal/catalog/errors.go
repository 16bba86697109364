package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrStationNotFound = errors.New("station not found")
	ErrUnknownUnits    = errors.New("unknown units")
	ErrOutOfRange      = errors.New("value out of range")
	ErrNotFinite       = errors.New("value is not finite")
	ErrDuplicateName   = errors.New("duplicate station name")
)

// ValidationError describes why a station entry was rejected at the catalog
// boundary.
type ValidationError struct {
	Station string
	Field   string
	Value   string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Station != "" {
		return fmt.Sprintf("invalid station %q: %s %q: %v", e.Station, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(station, field, value string, err error) *ValidationError {
	return &ValidationError{
		Station: station,
		Field:   field,
		Value:   value,
		Err:     err,
	}
}

// SourceError wraps a failure to read from a station source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func NewSourceError(source string, err error) *SourceError {
	return &SourceError{
		Source: source,
		Err:    err,
	}
}
