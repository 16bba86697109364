// Package awsclient builds the AWS service clients used by the station
// stores and caches.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// loadConfig returns the default AWS configuration, or a static-credential
// configuration for a local emulator when endpoint is set.
func loadConfig(ctx context.Context, endpoint string) (aws.Config, error) {
	if endpoint == "" {
		return config.LoadDefaultConfig(ctx)
	}

	log.Debug().Str("endpoint", endpoint).Msg("Using local AWS endpoint")
	return config.LoadDefaultConfig(ctx,
		config.WithRegion("local"),
		config.WithClientLogMode(aws.LogRetries),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
	)
}

// NewDynamoClient creates a DynamoDB client. A non-empty endpoint points it at
// DynamoDB Local.
func NewDynamoClient(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	cfg, err := loadConfig(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	if endpoint == "" {
		return dynamodb.NewFromConfig(cfg), nil
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// NewS3Client creates an S3 client. A non-empty endpoint selects path-style
// addressing, which local emulators expect.
func NewS3Client(ctx context.Context, endpoint string) (*s3.Client, error) {
	cfg, err := loadConfig(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	if endpoint == "" {
		return s3.NewFromConfig(cfg), nil
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}
