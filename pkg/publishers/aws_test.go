package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-2")}, nil
}

func TestSQSPublisherCarriesStepAttributes(t *testing.T) {
	client := &fakeSQS{}
	pub := &sqsPublisher{id: "queue", queueURL: "https://sqs.eu-west-1.amazonaws.com/1/runs", client: client}

	if err := pub.Publish(context.Background(), NewEvent("authprobe", failedRun())); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	in := client.input
	if got := aws.ToString(in.MessageAttributes["failed_step"].StringValue); got != "Log in registered user / Check token" {
		t.Fatalf("failed_step attribute = %q", got)
	}
	if got := aws.ToString(in.MessageAttributes["run_status"].StringValue); got != "failed" {
		t.Fatalf("run_status attribute = %q", got)
	}
	if in.MessageGroupId != nil || in.MessageDeduplicationId != nil {
		t.Fatalf("standard queue must not set FIFO keys")
	}
	var evt Event
	if err := json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &evt); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if evt.RunID != "run-9" {
		t.Fatalf("RunID = %q", evt.RunID)
	}
}

func TestSQSPublisherFIFOQueue(t *testing.T) {
	client := &fakeSQS{}
	pub := &sqsPublisher{id: "queue", queueURL: "https://sqs.eu-west-1.amazonaws.com/1/runs.fifo", client: client}

	if err := pub.Publish(context.Background(), NewEvent("authprobe", failedRun())); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if aws.ToString(client.input.MessageGroupId) != "Register and log in a new user" {
		t.Fatalf("MessageGroupId = %q", aws.ToString(client.input.MessageGroupId))
	}
	if aws.ToString(client.input.MessageDeduplicationId) != "run-9" {
		t.Fatalf("MessageDeduplicationId = %q", aws.ToString(client.input.MessageDeduplicationId))
	}
}

func TestSQSPublisherWrapsSendError(t *testing.T) {
	sendErr := errors.New("access denied")
	pub := &sqsPublisher{id: "queue", queueURL: "q", client: &fakeSQS{err: sendErr}}

	if err := pub.Publish(context.Background(), Event{RunID: "run-1"}); !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestSNSPublisherSubjectAndAttributes(t *testing.T) {
	client := &fakeSNS{}
	pub := &snsPublisher{id: "topic", topicARN: "arn:aws:sns:eu-west-1:1:runs", client: client}

	if err := pub.Publish(context.Background(), NewEvent("authprobe", failedRun())); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	in := client.input
	subj := aws.ToString(in.Subject)
	if !strings.HasPrefix(subj, "Register and log in a new user: failed at Log in registered user") {
		t.Fatalf("Subject = %q", subj)
	}
	if len(subj) > 100 {
		t.Fatalf("Subject exceeds 100 characters: %d", len(subj))
	}
	if got := aws.ToString(in.MessageAttributes["failure"].StringValue); got != "login returned an empty token" {
		t.Fatalf("failure attribute = %q", got)
	}
	if in.MessageGroupId != nil {
		t.Fatalf("standard topic must not set MessageGroupId")
	}
}

func TestSNSPublisherFIFOTopic(t *testing.T) {
	client := &fakeSNS{}
	pub := &snsPublisher{id: "topic", topicARN: "arn:aws:sns:eu-west-1:1:runs.fifo", client: client}

	if err := pub.Publish(context.Background(), Event{Source: "authprobe", RunID: "run-2"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if aws.ToString(client.input.MessageGroupId) != "authprobe" {
		t.Fatalf("MessageGroupId = %q", aws.ToString(client.input.MessageGroupId))
	}
	if aws.ToString(client.input.MessageDeduplicationId) != "run-2" {
		t.Fatalf("MessageDeduplicationId = %q", aws.ToString(client.input.MessageDeduplicationId))
	}
}

func TestAWSPublishersRequireConfig(t *testing.T) {
	if _, err := newSQSPublisher(context.Background(), Config{ID: "q"}, nil); err == nil {
		t.Fatalf("expected error for missing sqs block")
	}
	if _, err := newSNSPublisher(context.Background(), Config{ID: "t"}, nil); err == nil {
		t.Fatalf("expected error for missing sns block")
	}
}
