package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shralptide/tidestations/internal/catalog"
	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/favorites"
	"github.com/shralptide/tidestations/internal/models"
	"github.com/shralptide/tidestations/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(f float64) *float64 {
	return &f
}

func testTuples() []models.StationTuple {
	return []models.StationTuple{
		{Name: "Boston", Units: "feet", State: "MA", Distance: float64Ptr(0), Latitude: float64Ptr(42.3601), Longitude: float64Ptr(-71.0589)},
		{Name: "Reference Station", Units: "meters"},
		{Name: "Seattle", Units: "feet", State: "WA", Latitude: float64Ptr(47.6026), Longitude: float64Ptr(-122.3393)},
		{Name: "Tacoma", Units: "feet", State: "WA", Latitude: float64Ptr(47.2690), Longitude: float64Ptr(-122.4138)},
		{Name: "Bad Latitude", Units: "feet", Latitude: float64Ptr(91), Longitude: float64Ptr(0)},
	}
}

type testResponse struct {
	ResponseType string                   `json:"responseType"`
	Error        string                   `json:"error"`
	Stations     []map[string]interface{} `json:"stations"`
	States       []string                 `json:"states"`
}

func newTestServer(t *testing.T, source catalog.Source) *Server {
	t.Helper()

	db, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	favs, err := favorites.NewStore(db)
	require.NoError(t, err)

	cfg := config.New(config.WithEnvironment("test"))
	return New(cfg, catalog.New(source), favs)
}

func staticSource() catalog.Source {
	return catalog.SourceFunc(func(ctx context.Context) ([]models.StationTuple, error) {
		return testTuples(), nil
	})
}

func do(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	var body testResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func stationNames(body testResponse) []string {
	names := make([]string, len(body.Stations))
	for i, s := range body.Stations {
		names[i], _ = s["name"].(string)
	}
	return names
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, staticSource())

	rec, _ := do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStationRoutes(t *testing.T) {
	s := newTestServer(t, staticSource())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantNames  []string
		wantError  string
	}{
		{
			name:       "list all skips invalid entries",
			path:       "/stations",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Boston", "Reference Station", "Seattle", "Tacoma"},
		},
		{
			name:       "list by state",
			path:       "/stations?state=wa",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Seattle", "Tacoma"},
		},
		{
			name:       "get by name",
			path:       "/stations/Boston",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Boston"},
		},
		{
			name:       "get by escaped name",
			path:       "/stations/Reference%20Station",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Reference Station"},
		},
		{
			name:       "unknown station",
			path:       "/stations/Atlantis",
			wantStatus: http.StatusNotFound,
			wantError:  "Station not found",
		},
		{
			name:       "nearest",
			path:       "/stations/nearest?lat=47.6&lon=-122.34&limit=2",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Seattle", "Tacoma"},
		},
		{
			name:       "nearest with invalid latitude",
			path:       "/stations/nearest?lat=91&lon=0",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid coordinates",
		},
		{
			name:       "nearest without coordinates",
			path:       "/stations/nearest",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid parameters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, s, http.MethodGet, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantError != "" {
				assert.Equal(t, "error", body.ResponseType)
				assert.Equal(t, tt.wantError, body.Error)
				return
			}
			assert.Equal(t, "stations", body.ResponseType)
			assert.Equal(t, tt.wantNames, stationNames(body))
		})
	}
}

func TestNearestIncludesDistance(t *testing.T) {
	s := newTestServer(t, staticSource())

	_, body := do(t, s, http.MethodGet, "/stations/nearest?lat=47.6&lon=-122.34&limit=1")
	require.Len(t, body.Stations, 1)

	distance, ok := body.Stations[0]["distance"].(float64)
	require.True(t, ok)
	assert.Less(t, distance, 1.0)
}

func TestStates(t *testing.T) {
	s := newTestServer(t, staticSource())

	rec, body := do(t, s, http.MethodGet, "/states")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "states", body.ResponseType)
	assert.Equal(t, []string{"MA", "WA"}, body.States)
}

func TestReload(t *testing.T) {
	s := newTestServer(t, staticSource())

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stations/reload", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"origin":"source","accepted":4,"rejected":1}`, rec.Body.String())
}

func TestSourceFailure(t *testing.T) {
	s := newTestServer(t, catalog.SourceFunc(func(ctx context.Context) ([]models.StationTuple, error) {
		return nil, assert.AnError
	}))

	rec, body := do(t, s, http.MethodGet, "/stations")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error listing stations", body.Error)
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t, staticSource())

	rec, body := do(t, s, http.MethodGet, "/favorites")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.Stations)

	rec, _ = do(t, s, http.MethodPut, "/favorites/tacoma")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, s, http.MethodPut, "/favorites/Boston")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, s, http.MethodPut, "/favorites/Atlantis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Station not found", body.Error)

	_, body = do(t, s, http.MethodGet, "/favorites")
	assert.Equal(t, []string{"Tacoma", "Boston"}, stationNames(body))

	rec, _ = do(t, s, http.MethodDelete, "/favorites/Tacoma")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body = do(t, s, http.MethodDelete, "/favorites/Tacoma")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Station is not a favorite", body.Error)

	_, body = do(t, s, http.MethodGet, "/favorites")
	assert.Equal(t, []string{"Boston"}, stationNames(body))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, staticSource())

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/stations", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
