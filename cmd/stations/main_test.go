package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"reflect"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shralptide/tidestations/internal/catalog"
	"github.com/shralptide/tidestations/internal/handler"
	"github.com/shralptide/tidestations/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(f float64) *float64 {
	return &f
}

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.SourceFunc(func(ctx context.Context) ([]models.StationTuple, error) {
		return []models.StationTuple{
			{Name: "Boston", Units: "feet", State: "MA", Latitude: float64Ptr(42.3601), Longitude: float64Ptr(-71.0589)},
			{Name: "Seattle", Units: "feet", State: "WA", Latitude: float64Ptr(47.6026), Longitude: float64Ptr(-122.3393)},
			{Name: "Reference Station", Units: "meters"},
		}, nil
	}))
}

func TestMain(m *testing.M) {
	if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
		return
	}
	if err := os.Setenv("ENV", "test"); err != nil {
		return
	}

	os.Exit(m.Run())
}

func TestLambdaStartSignature(t *testing.T) {
	originalStart := lambdaStart
	defer func() { lambdaStart = originalStart }()

	var started bool
	lambdaStart = func(h interface{}) {
		started = true

		handlerType := reflect.TypeOf(h)
		require.Equal(t, reflect.Func, handlerType.Kind())

		contextInterface := reflect.TypeOf((*context.Context)(nil)).Elem()
		errorInterface := reflect.TypeOf((*error)(nil)).Elem()

		assert.Equal(t, 2, handlerType.NumIn())
		assert.Equal(t, 2, handlerType.NumOut())
		assert.True(t, handlerType.In(0).Implements(contextInterface))
		assert.Equal(t, reflect.TypeOf(events.APIGatewayProxyRequest{}), handlerType.In(1))
		assert.Equal(t, reflect.TypeOf(events.APIGatewayProxyResponse{}), handlerType.Out(0))
		assert.True(t, handlerType.Out(1).Implements(errorInterface))
	}

	lambdaStart(handleRequest)
	assert.True(t, started)
}

func TestHandleRequest(t *testing.T) {
	stationsHandler = handler.NewStationsHandler(testCatalog())

	tests := []struct {
		name           string
		params         map[string]string
		expectedStatus int
		expectedNames  []string
		expectedError  string
	}{
		{
			name:           "lookup by name",
			params:         map[string]string{"name": "boston"},
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Boston"},
		},
		{
			name:           "nearest stations",
			params:         map[string]string{"lat": "47.6", "lon": "-122.3", "limit": "1"},
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Seattle"},
		},
		{
			name:           "stations by state",
			params:         map[string]string{"state": "MA"},
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Boston"},
		},
		{
			name:           "unknown station",
			params:         map[string]string{"name": "Atlantis"},
			expectedStatus: http.StatusNotFound,
			expectedError:  "Station not found",
		},
		{
			name:           "invalid latitude",
			params:         map[string]string{"lat": "91", "lon": "0"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid coordinates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{
				QueryStringParameters: tt.params,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, response.StatusCode)

			var body struct {
				ResponseType string `json:"responseType"`
				Error        string `json:"error"`
				Stations     []struct {
					Name string `json:"name"`
				} `json:"stations"`
			}
			require.NoError(t, json.Unmarshal([]byte(response.Body), &body))

			if tt.expectedError != "" {
				assert.Equal(t, "error", body.ResponseType)
				assert.Equal(t, tt.expectedError, body.Error)
				return
			}

			names := make([]string, len(body.Stations))
			for i, s := range body.Stations {
				names[i] = s.Name
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}
}
