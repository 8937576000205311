package aws

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// QueueMessage is one received message and the handle that deletes it.
type QueueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueue long-polls a single queue.
type SQSQueue struct {
	api         sqsAPI
	queueURL    string
	waitSeconds int32
	visibility  int32
}

func NewSQSQueue(cfg sdkaws.Config, queueURL string) (*SQSQueue, error) {
	return newSQSQueue(sqs.NewFromConfig(cfg), queueURL)
}

func newSQSQueue(api sqsAPI, queueURL string) (*SQSQueue, error) {
	if queueURL == "" {
		return nil, errors.New("sqs: empty queue url")
	}
	return &SQSQueue{api: api, queueURL: queueURL, waitSeconds: 20, visibility: 30}, nil
}

func (q *SQSQueue) URL() string { return q.queueURL }

// Receive waits up to 20s for at most 10 messages. Messages without a body or
// receipt handle are dropped from the result.
func (q *SQSQueue) Receive(ctx context.Context) ([]QueueMessage, error) {
	out, err := q.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            sdkaws.String(q.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     q.waitSeconds,
		VisibilityTimeout:   q.visibility,
	})
	if err != nil {
		return nil, fmt.Errorf("sqs receive from %s: %w", q.queueURL, err)
	}
	msgs := make([]QueueMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		body, handle := sdkaws.ToString(m.Body), sdkaws.ToString(m.ReceiptHandle)
		if body == "" || handle == "" {
			continue
		}
		msgs = append(msgs, QueueMessage{ID: sdkaws.ToString(m.MessageId), Body: body, ReceiptHandle: handle})
	}
	return msgs, nil
}

// Delete acknowledges a message so it is not redelivered.
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      sdkaws.String(q.queueURL),
		ReceiptHandle: sdkaws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("sqs delete: %w", err)
	}
	return nil
}
