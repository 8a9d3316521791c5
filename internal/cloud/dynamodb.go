package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDBClient stores calculations in a DynamoDB table.
type DynamoDBClient struct {
	svc   dynamoAPI
	table string
}

// NewDynamoDBClient creates a new DynamoDB client instance
func NewDynamoDBClient(ctx context.Context, region, table string) (*DynamoDBClient, error) {
	// Load AWS configuration from environment/credentials
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &DynamoDBClient{
		svc:   dynamodb.NewFromConfig(cfg),
		table: table,
	}, nil
}

// CalculationItem is the DynamoDB layout of a recorded calculation.
type CalculationItem struct {
	CalculationID string `dynamodbav:"calculationId"`
	Kind          string `dynamodbav:"kind"`
	Timestamp     int64  `dynamodbav:"timestamp"`
	Input         string `dynamodbav:"input"`
	Result        string `dynamodbav:"result"`
}

// Append implements audit.Sink.
func (c *DynamoDBClient) Append(ctx context.Context, calc domain.Calculation) error {
	item, err := attributevalue.MarshalMap(CalculationItem{
		CalculationID: uuid.NewString(),
		Kind:          calc.Kind,
		Timestamp:     calc.CreatedAt.Unix(),
		Input:         string(calc.Input),
		Result:        string(calc.Result),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal calculation: %w", err)
	}

	_, err = c.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}
	return nil
}
