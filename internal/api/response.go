// Package api holds the JSON shapes shared by the Lambda and HTTP front ends.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shralptide/tidestations/internal/display"
	"github.com/shralptide/tidestations/internal/models"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

// StationView is the wire form of a station. Absent numbers encode as null.
type StationView struct {
	Name      string               `json:"name"`
	Units     string               `json:"units"`
	State     string               `json:"state"`
	Distance  models.OptionalFloat `json:"distance"`
	Latitude  models.OptionalFloat `json:"latitude"`
	Longitude models.OptionalFloat `json:"longitude"`
	Summary   string               `json:"summary"`
}

func NewStationView(r models.StationRecord) StationView {
	return StationView{
		Name:      r.Name(),
		Units:     r.Units(),
		State:     r.State(),
		Distance:  r.Distance(),
		Latitude:  r.Latitude(),
		Longitude: r.Longitude(),
		Summary:   display.Summary(r),
	}
}

type StationsResponse struct {
	APIResponse
	Stations []StationView `json:"stations"`
}

type StatesResponse struct {
	APIResponse
	States []string `json:"states"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewStationsResponse(stations []models.StationRecord) *StationsResponse {
	views := make([]StationView, len(stations))
	for i, s := range stations {
		views[i] = NewStationView(s)
	}
	return &StationsResponse{
		APIResponse: APIResponse{ResponseType: "stations"},
		Stations:    views,
	}
}

func NewStatesResponse(states []string) *StatesResponse {
	return &StatesResponse{
		APIResponse: APIResponse{ResponseType: "states"},
		States:      states,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

var defaultHeaders = map[string]string{
	"Content-Type":                "application/json",
	"Access-Control-Allow-Origin": "*",
}

func headers() map[string]string {
	h := make(map[string]string, len(defaultHeaders))
	for k, v := range defaultHeaders {
		h[k] = v
	}
	return h
}

// Success wraps body in a 200 API Gateway response.
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers(),
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers(),
		Body:       string(body),
	}, nil
}
