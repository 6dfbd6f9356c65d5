package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const fifoSuffix = ".fifo"

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// fifoKeys returns the message group and deduplication ids for FIFO targets.
// All runs of one flow share a group so they stay ordered.
func fifoKeys(target string, evt Event) (group, dedup *string) {
	if !strings.HasSuffix(target, fifoSuffix) {
		return nil, nil
	}
	name := evt.Name
	if name == "" {
		name = evt.Source
	}
	return aws.String(name), aws.String(evt.RunID)
}

// sqsPublisher sends events to an SQS queue.
type sqsPublisher struct {
	id       string
	queueURL string
	client   sqsAPI
}

func newSQSPublisher(ctx context.Context, cfg Config, _ Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.Region)
	if err != nil {
		return nil, err
	}
	return &sqsPublisher{id: cfg.ID, queueURL: cfg.SQS.QueueURL, client: sqs.NewFromConfig(awsCfg)}, nil
}

func (s *sqsPublisher) ID() string   { return s.id }
func (s *sqsPublisher) Type() string { return TypeSQS }

func (s *sqsPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := make(map[string]sqstypes.MessageAttributeValue)
	for k, v := range evt.Attributes() {
		attrs[k] = sqstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}
	group, dedup := fifoKeys(s.queueURL, evt)

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               aws.String(s.queueURL),
		MessageBody:            aws.String(string(body)),
		MessageAttributes:      attrs,
		MessageGroupId:         group,
		MessageDeduplicationId: dedup,
	})
	if err != nil {
		return fmt.Errorf("send run %s to sqs: %w", evt.RunID, err)
	}
	return nil
}

// snsPublisher sends events to an SNS topic. The subject names the run
// outcome so e-mail subscriptions read well.
type snsPublisher struct {
	id       string
	topicARN string
	client   snsAPI
}

func newSNSPublisher(ctx context.Context, cfg Config, _ Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region)
	if err != nil {
		return nil, err
	}
	return &snsPublisher{id: cfg.ID, topicARN: cfg.SNS.TopicARN, client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return TypeSNS }

func (s *snsPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := make(map[string]snstypes.MessageAttributeValue)
	for k, v := range evt.Attributes() {
		attrs[k] = snstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}
	group, dedup := fifoKeys(s.topicARN, evt)

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:               aws.String(s.topicARN),
		Message:                aws.String(string(body)),
		Subject:                aws.String(subject(evt)),
		MessageAttributes:      attrs,
		MessageGroupId:         group,
		MessageDeduplicationId: dedup,
	})
	if err != nil {
		return fmt.Errorf("publish run %s to sns: %w", evt.RunID, err)
	}
	return nil
}

// subject renders "<name>: <status>" plus the failed step, capped at the
// 100 character SNS limit.
func subject(evt Event) string {
	s := fmt.Sprintf("%s: %s", evt.Name, evt.Status)
	if evt.FailedStep != "" {
		s += " at " + evt.FailedStep
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
