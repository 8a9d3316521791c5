package cloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient publishes calculation notifications to a topic.
type SNSClient struct {
	svc      snsAPI
	topicArn string
}

// NewSNSClient creates a new SNS client instance
func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

// Publish sends one message to the topic.
func (c *SNSClient) Publish(ctx context.Context, subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	result, err := c.svc.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Debug().Str("messageId", aws.ToString(result.MessageId)).Msg("sns notification sent")
	return nil
}

// Append implements audit.Sink by publishing a short summary of calc.
func (c *SNSClient) Append(ctx context.Context, calc domain.Calculation) error {
	return c.Publish(ctx, notificationSubject(calc.Kind), notificationMessage(calc))
}

func notificationSubject(kind string) string {
	switch kind {
	case domain.KindLoadProfile:
		return "Drive savings: load profile calculation"
	default:
		return "Drive savings: flat-rate calculation"
	}
}

// summaryFields are the headline figures of each result kind, in display order.
var summaryFields = map[string][]string{
	domain.KindFlatRate:    {"totalAnnualSavings", "totalInvestment", "paybackYears", "annualROI"},
	domain.KindLoadProfile: {"ahorroKwh", "ahorroUsd", "roiAnios", "profileValid"},
}

func notificationMessage(calc domain.Calculation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Calculation recorded\n\nKind: %s\nTime: %s\n", calc.Kind, calc.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	var result map[string]json.RawMessage
	if err := json.Unmarshal(calc.Result, &result); err == nil {
		for _, field := range summaryFields[calc.Kind] {
			if v, ok := result[field]; ok {
				fmt.Fprintf(&b, "%s: %s\n", field, strings.Trim(string(v), `"`))
			}
		}
	}
	return b.String()
}
