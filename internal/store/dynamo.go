package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/models"
)

// DynamoDBClient defines the DynamoDB operations the store needs
type DynamoDBClient interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// stationItem is the DynamoDB item layout, keyed by name. Absent numbers are
// omitted from the item.
type stationItem struct {
	Name        string   `dynamodbav:"name"`
	Units       string   `dynamodbav:"units"`
	State       string   `dynamodbav:"state"`
	Distance    *float64 `dynamodbav:"distance,omitempty"`
	Latitude    *float64 `dynamodbav:"latitude,omitempty"`
	Longitude   *float64 `dynamodbav:"longitude,omitempty"`
	LastUpdated int64    `dynamodbav:"lastUpdated"`
}

func newStationItem(r models.StationRecord, now int64) stationItem {
	t := r.Tuple()
	return stationItem{
		Name:        t.Name,
		Units:       t.Units,
		State:       t.State,
		Distance:    t.Distance,
		Latitude:    t.Latitude,
		Longitude:   t.Longitude,
		LastUpdated: now,
	}
}

func (i stationItem) tuple() models.StationTuple {
	return models.StationTuple{
		Name:      i.Name,
		Units:     i.Units,
		State:     i.State,
		Distance:  i.Distance,
		Latitude:  i.Latitude,
		Longitude: i.Longitude,
	}
}

// DynamoStore keeps stations in a DynamoDB table with "name" as hash key.
type DynamoStore struct {
	client    DynamoDBClient
	tableName string
	config    *config.CacheConfig
	backoff   time.Duration
}

var _ Store = (*DynamoStore)(nil)

func NewDynamoStore(client DynamoDBClient, tableName string, cacheConfig *config.CacheConfig) *DynamoStore {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		config:    cacheConfig,
		backoff:   100 * time.Millisecond,
	}
}

// SaveStations writes the records in batches, resubmitting unprocessed items
// until the retry budget is spent. DynamoDB rejects a batch that repeats a
// key, so repeated names fail up front.
func (s *DynamoStore) SaveStations(ctx context.Context, stations []models.StationRecord) error {
	if err := checkUniqueNames(stations); err != nil {
		return err
	}

	batchSize := s.config.BatchSize
	if batchSize <= 0 {
		batchSize = 25
	}
	now := time.Now().Unix()

	for i := 0; i < len(stations); i += batchSize {
		end := i + batchSize
		if end > len(stations) {
			end = len(stations)
		}

		var writeRequests []types.WriteRequest
		for _, r := range stations[i:end] {
			item, err := attributevalue.MarshalMap(newStationItem(r, now))
			if err != nil {
				return fmt.Errorf("marshaling station %q: %w", r.Name(), err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := s.writeBatch(ctx, writeRequests); err != nil {
			return err
		}
	}

	log.Debug().Int("station_count", len(stations)).Str("table", s.tableName).Msg("Saved stations to DynamoDB")
	return nil
}

func (s *DynamoStore) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	attempts := s.config.MaxBatchRetries
	if attempts < 1 {
		attempts = 1
	}

	pending := requests
	var lastErr error

	for retry := 0; retry < attempts && len(pending) > 0; retry++ {
		if retry > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<(retry-1)) * s.backoff):
			}
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.tableName: pending,
			},
		})
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		pending = out.UnprocessedItems[s.tableName]
	}

	if lastErr != nil {
		return fmt.Errorf("batch writing stations after %d attempts: %w", attempts, lastErr)
	}
	if len(pending) > 0 {
		return fmt.Errorf("batch writing stations: %d items unprocessed after %d attempts", len(pending), attempts)
	}
	return nil
}

// Fetch scans the whole table.
func (s *DynamoStore) Fetch(ctx context.Context) ([]models.StationTuple, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})

	var tuples []models.StationTuple
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning stations: %w", err)
		}

		var items []stationItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshaling stations: %w", err)
		}
		for _, item := range items {
			tuples = append(tuples, item.tuple())
		}
	}

	return tuples, nil
}
