package cloud

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

type fakeS3 struct {
	put  *s3.PutObjectInput
	body []byte
	err  error
	keys []string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestUploadReport(t *testing.T) {
	fake := &fakeS3{}
	c := &S3Client{svc: fake, bucket: "reports", presign: func(ctx context.Context, bucket, key string) (string, error) {
		return "https://" + bucket + "/" + key + "?signed", nil
	}}

	url, err := c.UploadReport(context.Background(), "reports/a.html", []byte("<h1>x</h1>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "https://reports/reports/a.html?signed", url)
	assert.Equal(t, "reports", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "text/html", aws.ToString(fake.put.ContentType))
	assert.Equal(t, "<h1>x</h1>", string(fake.body))
}

func TestUploadReportErrors(t *testing.T) {
	c := &S3Client{svc: &fakeS3{err: errors.New("denied")}, bucket: "b", presign: func(context.Context, string, string) (string, error) {
		return "", nil
	}}
	_, err := c.UploadReport(context.Background(), "k", nil, "text/html")
	assert.ErrorContains(t, err, "failed to upload to S3: denied")

	c = &S3Client{svc: &fakeS3{}, bucket: "b", presign: func(context.Context, string, string) (string, error) {
		return "", errors.New("no creds")
	}}
	_, err = c.UploadReport(context.Background(), "k", nil, "text/html")
	assert.ErrorContains(t, err, "failed to generate presigned URL: no creds")
}

func TestListReports(t *testing.T) {
	c := &S3Client{svc: &fakeS3{keys: []string{"reports/a.html", "reports/b.html"}}, bucket: "b"}
	keys, err := c.ListReports(context.Background(), "reports/")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/a.html", "reports/b.html"}, keys)
}

type fakeSNS struct {
	in  *sns.PublishInput
	err error
}

func (f *fakeSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestSNSAppendPublishesSummary(t *testing.T) {
	fake := &fakeSNS{}
	c := &SNSClient{svc: fake, topicArn: "arn:topic"}
	calc := domain.Calculation{
		Kind:      domain.KindFlatRate,
		Result:    []byte(`{"totalAnnualSavings":1200.5,"annualROI":"Infinity","kwPerMotor":37.3}`),
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, c.Append(context.Background(), calc))
	assert.Equal(t, "arn:topic", aws.ToString(fake.in.TopicArn))
	assert.Equal(t, "Drive savings: flat-rate calculation", aws.ToString(fake.in.Subject))
	msg := aws.ToString(fake.in.Message)
	assert.Contains(t, msg, "totalAnnualSavings: 1200.5\n")
	assert.Contains(t, msg, "annualROI: Infinity\n")
	assert.NotContains(t, msg, "kwPerMotor")
}

func TestSNSPublishError(t *testing.T) {
	c := &SNSClient{svc: &fakeSNS{err: errors.New("throttled")}}
	err := c.Append(context.Background(), domain.Calculation{Kind: domain.KindLoadProfile})
	assert.ErrorContains(t, err, "failed to publish to SNS: throttled")
}

type fakeDynamo struct {
	in *dynamodb.PutItemInput
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.in = in
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoDBAppend(t *testing.T) {
	fake := &fakeDynamo{}
	c := &DynamoDBClient{svc: fake, table: "Calculations"}
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, c.Append(context.Background(), domain.Calculation{
		Kind: domain.KindLoadProfile, Input: []byte(`{"hp":100}`), Result: []byte(`{}`), CreatedAt: ts,
	}))
	assert.Equal(t, "Calculations", aws.ToString(fake.in.TableName))

	var item CalculationItem
	require.NoError(t, attributevalue.UnmarshalMap(fake.in.Item, &item))
	assert.NotEmpty(t, item.CalculationID)
	assert.Equal(t, domain.KindLoadProfile, item.Kind)
	assert.Equal(t, ts.Unix(), item.Timestamp)
	assert.Equal(t, `{"hp":100}`, item.Input)
}
