package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"ecosnap_server/config"
	"ecosnap_server/logger"
	"ecosnap_server/store"
)

// LoadAWSConfig loads the shared AWS configuration. Transient failures
// (throttling, 5xx, timeouts) are retried up to STORE_MAX_ATTEMPTS with
// jittered exponential backoff; condition failures are never retried.
func LoadAWSConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = cfg.StoreMaxAttempts
			})
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// InitializeDynamoDBClient initializes the DynamoDB client, pointing it at
// endpoint when one is given (DynamoDB Local).
func InitializeDynamoDBClient(awsCfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

func InitializeS3Client(awsCfg aws.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg)
}

// OpenTable opens the configured store backend. The returned close function
// releases the backend's resources.
func OpenTable(awsCfg aws.Config, cfg config.Config, log *logger.Logger) (store.Table, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendBadger:
		table, err := store.NewBadgerTable(store.BadgerOptions{
			Path:            cfg.BadgerPath,
			ConflictRetries: cfg.BadgerConflictRetries,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("📦 Using embedded badger store", "path", cfg.BadgerPath)
		return table, table.Close, nil
	case config.BackendDynamoDB:
		client := InitializeDynamoDBClient(awsCfg, cfg.DynamoDBEndpoint)
		log.Info("📦 Using DynamoDB store", "table", cfg.TableName, "region", cfg.AWSRegion)
		return store.NewDynamoTable(client, cfg.TableName, log), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
