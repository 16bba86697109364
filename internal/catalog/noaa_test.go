package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shralptide/tidestations/pkg/http/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noaaStationsFixture = `{
  "count": 3,
  "stationList": [
    {"stationId": "8443970", "name": "Boston", "state": "MA", "lat": 42.3539, "lon": -71.0503},
    {"stationId": "9447130", "name": "Seattle", "state": "WA", "lat": 47.6026, "lon": -122.3393},
    {"stationId": "TEST001", "name": "Unplaced", "state": "", "lat": null, "lon": null}
  ]
}`

func TestNOAASourceFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, noaaStationsPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(noaaStationsFixture))
	}))
	defer server.Close()

	source := NewNOAASource(client.New(client.Options{BaseURL: server.URL, Timeout: 5 * time.Second}), "meters")

	tuples, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, tuples, 3)

	assert.Equal(t, "Boston", tuples[0].Name)
	assert.Equal(t, "meters", tuples[0].Units)
	assert.Equal(t, "MA", tuples[0].State)
	require.NotNil(t, tuples[0].Latitude)
	assert.InDelta(t, 42.3539, *tuples[0].Latitude, 1e-9)
	assert.Nil(t, tuples[0].Distance)

	assert.Nil(t, tuples[2].Latitude)
	assert.Nil(t, tuples[2].Longitude)
}

func TestNOAASourceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		getFunc func(ctx context.Context, path string) (*client.Response, error)
	}{
		{
			name: "transport error",
			getFunc: func(ctx context.Context, path string) (*client.Response, error) {
				return nil, errors.New("connection refused")
			},
		},
		{
			name: "not found",
			getFunc: func(ctx context.Context, path string) (*client.Response, error) {
				return &client.Response{StatusCode: http.StatusNotFound}, nil
			},
		},
		{
			name: "malformed body",
			getFunc: func(ctx context.Context, path string) (*client.Response, error) {
				return &client.Response{StatusCode: http.StatusOK, Body: []byte("<html>")}, nil
			},
		},
		{
			name: "nil response",
			getFunc: func(ctx context.Context, path string) (*client.Response, error) {
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			httpClient := client.New(client.Options{})
			httpClient.GetFunc = tt.getFunc

			_, err := NewNOAASource(httpClient, "").Fetch(context.Background())
			require.Error(t, err)

			var sourceErr *SourceError
			require.True(t, errors.As(err, &sourceErr))
			assert.Equal(t, "noaa", sourceErr.Source)
		})
	}
}

func TestNOAASourceDefaultUnits(t *testing.T) {
	t.Parallel()

	httpClient := client.New(client.Options{})
	httpClient.GetFunc = func(ctx context.Context, path string) (*client.Response, error) {
		return &client.Response{StatusCode: http.StatusOK, Body: []byte(noaaStationsFixture)}, nil
	}

	tuples, err := NewNOAASource(httpClient, "").Fetch(context.Background())
	require.NoError(t, err)
	for _, tuple := range tuples {
		assert.Equal(t, "feet", tuple.Units)
	}
}
