package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/tunde/vend-settlement/pkg/models"
)

// SQSAPI defines the subset of the SQS client the emitter uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSEmitter implements the Emitter interface using AWS SQS.
type SQSEmitter struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSEmitter creates a new SQSEmitter.
func NewSQSEmitter(client SQSAPI, queueURL string) *SQSEmitter {
	return &SQSEmitter{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Emitter = (*SQSEmitter)(nil)

// Enqueue sends the notification to the delivery queue.
func (e *SQSEmitter) Enqueue(ctx context.Context, notification models.Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification for SQS: %w", err)
	}

	_, err = e.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(e.QueueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send notification to SQS: %w", err)
	}

	return nil
}
