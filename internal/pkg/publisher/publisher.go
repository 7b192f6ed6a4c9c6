// Package publisher emits best-effort notifications when budget is consumed.
// Publish never returns an error to the caller; failures are logged and the
// already committed ledger write stands.
package publisher

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/env"
)

// Publisher sends a serialized event payload to an external consumer.
type Publisher interface {
	Publish(payload string)
}

// NopPublisher drops every payload. Used when no queue is configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) Publish(string) {}

// SQSPublisher sends payloads to the configured AWS SQS queue.
type SQSPublisher struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSPublisher builds a publisher from the default AWS credential chain
// and the AWS_SQS_URL environment variable.
func NewSQSPublisher() *SQSPublisher {
	p := &SQSPublisher{queueURL: env.GetEnv("AWS_SQS_URL", "")}

	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		fiberlog.Errorf("publisher: could not load AWS config: %v", err)
		return p
	}
	p.client = sqs.NewFromConfig(cfg)
	return p
}

func (p *SQSPublisher) Publish(payload string) {
	if p.client == nil || p.queueURL == "" {
		fiberlog.Warnf("publisher: SQS not configured, dropping message: %s", payload)
		return
	}

	_, err := p.client.SendMessage(context.Background(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(payload),
	})
	if err != nil {
		fiberlog.Errorf("publisher: unable to send message to SQS: %v", err)
	}
}
