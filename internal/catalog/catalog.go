// Package catalog loads tide stations from a data source, validates them and
// answers lookups. Records leave the catalog only after they are fully built
// and validated.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/cache"
	"github.com/shralptide/tidestations/internal/models"
	"github.com/shralptide/tidestations/internal/store"
)

const defaultNearestLimit = 5

type Catalog struct {
	source       Source
	validator    *Validator
	defaultUnits string
	strict       bool

	memCache  *cache.StationCache
	listCache cache.StationListCacheProvider
	nearest   *cache.NearestCache
	store     store.Store

	loadMu sync.Mutex
}

var _ models.StationFinder = (*Catalog)(nil)

type Option func(*Catalog)

// WithCache replaces the default in-memory list cache.
func WithCache(c *cache.StationCache) Option {
	return func(cat *Catalog) {
		cat.memCache = c
	}
}

// WithListCache shares the decoded list through an external cache such as S3.
func WithListCache(c cache.StationListCacheProvider) Option {
	return func(cat *Catalog) {
		cat.listCache = c
	}
}

// WithNearestCache memoizes nearest-station queries.
func WithNearestCache(c *cache.NearestCache) Option {
	return func(cat *Catalog) {
		cat.nearest = c
	}
}

// WithStore persists every list loaded from the source.
func WithStore(s store.Store) Option {
	return func(cat *Catalog) {
		cat.store = s
	}
}

// WithUnits sets the unit vocabulary and the label given to entries that
// arrive without one.
func WithUnits(defaultUnits string, allowed []string) Option {
	return func(cat *Catalog) {
		if defaultUnits != "" {
			cat.defaultUnits = defaultUnits
		}
		if len(allowed) > 0 {
			cat.validator = NewValidator(allowed)
		}
	}
}

// WithStrict makes a load fail on the first invalid entry instead of
// skipping it.
func WithStrict(strict bool) Option {
	return func(cat *Catalog) {
		cat.strict = strict
	}
}

func New(source Source, opts ...Option) *Catalog {
	c := &Catalog{
		source:       source,
		validator:    NewValidator([]string{"feet", "meters"}),
		defaultUnits: "feet",
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.memCache == nil {
		c.memCache = cache.NewStationCache(nil)
	}
	return c
}

// LoadResult summarizes one load.
type LoadResult struct {
	Origin   string
	Accepted int
	Rejected int
}

// Load replaces the catalog contents. It reads the list cache first and the
// source on a miss. Invalid entries, including repeats of a name already
// accepted, are skipped and counted unless the catalog is strict.
func (c *Catalog) Load(ctx context.Context) (LoadResult, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	return c.load(ctx)
}

func (c *Catalog) load(ctx context.Context) (LoadResult, error) {
	result := LoadResult{Origin: "source"}

	var tuples []models.StationTuple
	if c.listCache != nil {
		cached, err := c.listCache.GetStations(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Error getting stations from list cache")
		} else if cached != nil {
			log.Debug().Msg("List cache HIT for station list")
			tuples = cached
			result.Origin = "list-cache"
		}
	}

	if tuples == nil {
		log.Debug().Msg("Cache MISS for station list, fetching from source")
		fetched, err := c.source.Fetch(ctx)
		if err != nil {
			return result, fmt.Errorf("fetching stations: %w", err)
		}
		tuples = fetched
	}

	records := make([]models.StationRecord, 0, len(tuples))
	accepted := make([]models.StationTuple, 0, len(tuples))
	seen := make(map[string]struct{}, len(tuples))
	for _, t := range tuples {
		if strings.TrimSpace(t.Units) == "" {
			t.Units = c.defaultUnits
		}

		err := c.validator.ValidateTuple(t)
		if _, dup := seen[t.Name]; err == nil && dup {
			// Names key the stores, so the first entry wins
			err = NewValidationError(t.Name, "name", t.Name, ErrDuplicateName)
		}
		if err != nil {
			if c.strict {
				return result, err
			}
			log.Warn().Err(err).Msg("Skipping invalid station")
			result.Rejected++
			continue
		}

		r, err := models.FromTuple(t)
		if err != nil {
			return result, fmt.Errorf("building station %q: %w", t.Name, err)
		}
		seen[t.Name] = struct{}{}
		records = append(records, r)
		accepted = append(accepted, t)
	}
	result.Accepted = len(records)

	// Publish only the complete list
	c.memCache.SetStations(records)
	if c.nearest != nil {
		c.nearest.Clear()
	}

	if result.Origin == "source" {
		c.persist(ctx, records, accepted)
	}

	log.Info().
		Str("origin", result.Origin).
		Int("accepted", result.Accepted).
		Int("rejected", result.Rejected).
		Msg("Loaded station catalog")

	return result, nil
}

func (c *Catalog) persist(ctx context.Context, records []models.StationRecord, tuples []models.StationTuple) {
	if c.listCache != nil {
		if err := c.listCache.SaveStations(ctx, tuples); err != nil {
			log.Error().Err(err).Msg("Failed to save stations to list cache")
		}
	}
	if c.store != nil {
		if err := c.store.SaveStations(ctx, records); err != nil {
			log.Error().Err(err).Msg("Failed to save stations to store")
		}
	}
}

// Stations returns every station, loading the catalog if needed. The
// returned slice must not be modified.
func (c *Catalog) Stations(ctx context.Context) ([]models.StationRecord, error) {
	if stations := c.memCache.GetStations(); stations != nil {
		return stations, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// Another caller may have loaded while we waited
	if stations := c.memCache.GetStations(); stations != nil {
		return stations, nil
	}

	if _, err := c.load(ctx); err != nil {
		return nil, err
	}
	stations := c.memCache.GetStations()
	if stations == nil {
		return []models.StationRecord{}, nil
	}
	return stations, nil
}

// FindStation looks a station up by name, exactly first and then ignoring
// case.
func (c *Catalog) FindStation(ctx context.Context, name string) (*models.StationRecord, error) {
	stations, err := c.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	for _, station := range stations {
		if station.Name() == name {
			found := station
			return &found, nil
		}
	}
	for _, station := range stations {
		if strings.EqualFold(station.Name(), name) {
			found := station
			return &found, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrStationNotFound, name)
}

// FindNearestStations returns up to limit stations ordered by distance from
// the query point, each carrying that distance in kilometers. Stations
// without coordinates are never returned.
func (c *Catalog) FindNearestStations(ctx context.Context, lat, lon float64, limit int) ([]models.StationRecord, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultNearestLimit
	}

	if c.nearest != nil {
		if cached, ok := c.nearest.Get(lat, lon, limit); ok {
			return cached, nil
		}
	}

	stations, err := c.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	type stationDistance struct {
		station  models.StationRecord
		distance float64
	}

	candidates := make([]stationDistance, 0, len(stations))
	for _, station := range stations {
		sLat, latOK := station.Latitude().Get()
		sLon, lonOK := station.Longitude().Get()
		if !latOK || !lonOK {
			continue
		}
		candidates = append(candidates, stationDistance{
			station:  station,
			distance: haversineKm(lat, lon, sLat, sLon),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	n := limit
	if n > len(candidates) {
		n = len(candidates)
	}

	result := make([]models.StationRecord, n)
	for i := 0; i < n; i++ {
		result[i] = candidates[i].station.WithDistance(models.Some(candidates[i].distance))
	}

	if c.nearest != nil {
		c.nearest.Add(lat, lon, limit, result)
	}
	return result, nil
}

// StationsByState lists the stations in a state, ignoring case, sorted by
// name.
func (c *Catalog) StationsByState(ctx context.Context, state string) ([]models.StationRecord, error) {
	stations, err := c.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	result := []models.StationRecord{}
	for _, station := range stations {
		if strings.EqualFold(station.State(), state) {
			result = append(result, station)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result, nil
}

// States returns the distinct non-empty states, sorted.
func (c *Catalog) States(ctx context.Context) ([]string, error) {
	stations, err := c.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	seen := make(map[string]struct{})
	states := []string{}
	for _, station := range stations {
		state := station.State()
		if state == "" {
			continue
		}
		if _, ok := seen[state]; ok {
			continue
		}
		seen[state] = struct{}{}
		states = append(states, state)
	}

	sort.Strings(states)
	return states, nil
}

// ResolveFavorites maps favorite names to stations in the same order.
// Favorites that are no longer in the catalog are skipped.
func (c *Catalog) ResolveFavorites(ctx context.Context, names []string) ([]models.StationRecord, error) {
	result := make([]models.StationRecord, 0, len(names))
	for _, name := range names {
		station, err := c.FindStation(ctx, name)
		if errors.Is(err, ErrStationNotFound) {
			log.Debug().Str("station", name).Msg("Favorite station no longer in catalog")
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, *station)
	}
	return result, nil
}
