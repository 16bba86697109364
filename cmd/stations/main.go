package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/app"
	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/handler"
)

var (
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
)

func setup() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		components, err := app.Build(context.Background(), cfg, app.Options{Persist: app.PersistDynamo})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to assemble station catalog")
		}

		stationsHandler = handler.NewStationsHandler(components.Catalog)
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	setup()
	lambdaStart(handleRequest)
}
