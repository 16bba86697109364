package models

import (
	"errors"
	"fmt"
)

// ErrNameRequired is returned when a record is built without a name.
var ErrNameRequired = errors.New("station name is required")

// StationRecord is the descriptive metadata for one tide station. It is an
// immutable value: build it with a StationRecordBuilder and copy it freely.
// Nothing here is validated; range and vocabulary checks belong to the
// catalog that produces records.
type StationRecord struct {
	name      string
	units     string
	state     string
	distance  OptionalFloat
	latitude  OptionalFloat
	longitude OptionalFloat
}

// NewStationRecord returns a record with empty text fields and absent numbers.
func NewStationRecord() StationRecord {
	return StationRecord{}
}

func (r StationRecord) Name() string             { return r.name }
func (r StationRecord) Units() string            { return r.units }
func (r StationRecord) State() string            { return r.state }
func (r StationRecord) Distance() OptionalFloat  { return r.distance }
func (r StationRecord) Latitude() OptionalFloat  { return r.latitude }
func (r StationRecord) Longitude() OptionalFloat { return r.longitude }

// HasCoordinates reports whether both latitude and longitude are present.
func (r StationRecord) HasCoordinates() bool {
	return r.latitude.IsPresent() && r.longitude.IsPresent()
}

// Equal compares records field by field.
func (r StationRecord) Equal(other StationRecord) bool {
	return r == other
}

// WithDistance returns a copy of r carrying the given distance.
func (r StationRecord) WithDistance(d OptionalFloat) StationRecord {
	r.distance = d
	return r
}

// Builder returns a builder pre-populated with r's fields.
func (r StationRecord) Builder() *StationRecordBuilder {
	return &StationRecordBuilder{record: r, hasName: true}
}

// Tuple converts the record to its raw storage shape.
func (r StationRecord) Tuple() StationTuple {
	return StationTuple{
		Name:      r.name,
		Units:     r.units,
		State:     r.state,
		Distance:  r.distance.Ptr(),
		Latitude:  r.latitude.Ptr(),
		Longitude: r.longitude.Ptr(),
	}
}

func (r StationRecord) String() string {
	return fmt.Sprintf("%s (%s) units=%s lat=%s lon=%s distance=%s",
		r.name, r.state, r.units, r.latitude, r.longitude, r.distance)
}

// StationRecordBuilder collects station fields before they are published as
// a StationRecord. A builder is owned by one goroutine.
type StationRecordBuilder struct {
	record  StationRecord
	hasName bool
}

func NewStationRecordBuilder() *StationRecordBuilder {
	return &StationRecordBuilder{}
}

// SetName sets the name. An empty name still counts as supplied.
func (b *StationRecordBuilder) SetName(name string) *StationRecordBuilder {
	b.record.name = name
	b.hasName = true
	return b
}

func (b *StationRecordBuilder) SetUnits(units string) *StationRecordBuilder {
	b.record.units = units
	return b
}

func (b *StationRecordBuilder) SetState(state string) *StationRecordBuilder {
	b.record.state = state
	return b
}

func (b *StationRecordBuilder) SetDistance(d OptionalFloat) *StationRecordBuilder {
	b.record.distance = d
	return b
}

func (b *StationRecordBuilder) SetLatitude(lat OptionalFloat) *StationRecordBuilder {
	b.record.latitude = lat
	return b
}

func (b *StationRecordBuilder) SetLongitude(lon OptionalFloat) *StationRecordBuilder {
	b.record.longitude = lon
	return b
}

func (b *StationRecordBuilder) SetDistanceValue(d float64) *StationRecordBuilder {
	return b.SetDistance(Some(d))
}

func (b *StationRecordBuilder) SetLatitudeValue(lat float64) *StationRecordBuilder {
	return b.SetLatitude(Some(lat))
}

func (b *StationRecordBuilder) SetLongitudeValue(lon float64) *StationRecordBuilder {
	return b.SetLongitude(Some(lon))
}

// Build returns the collected record. It fails only when no name was set.
func (b *StationRecordBuilder) Build() (StationRecord, error) {
	if !b.hasName {
		return StationRecord{}, ErrNameRequired
	}
	return b.record, nil
}

// StationTuple is the raw six-field shape a catalog decodes from its data
// source, and the shape records take on the wire and in storage.
type StationTuple struct {
	Name      string   `json:"name" dynamodbav:"name"`
	Units     string   `json:"units" dynamodbav:"units"`
	State     string   `json:"state" dynamodbav:"state"`
	Distance  *float64 `json:"distance" dynamodbav:"distance,omitempty"`
	Latitude  *float64 `json:"latitude" dynamodbav:"latitude,omitempty"`
	Longitude *float64 `json:"longitude" dynamodbav:"longitude,omitempty"`
}

// FromTuple builds a record from a raw tuple, storing every value verbatim.
func FromTuple(t StationTuple) (StationRecord, error) {
	return NewStationRecordBuilder().
		SetName(t.Name).
		SetUnits(t.Units).
		SetState(t.State).
		SetDistance(OptionalFromPtr(t.Distance)).
		SetLatitude(OptionalFromPtr(t.Latitude)).
		SetLongitude(OptionalFromPtr(t.Longitude)).
		Build()
}
