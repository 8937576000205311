package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/stayshop/pkg/aws"
	"github.com/yashrajoria/stayshop/pkg/events"
	"github.com/yashrajoria/stayshop/services/notification-service/services"
)

// Queue is the subset of *awspkg.SQSQueue the consumer uses.
type Queue interface {
	Receive(ctx context.Context) ([]awspkg.QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// SQSConsumer reads events fanned out from the SNS topic to an SQS queue.
type SQSConsumer struct {
	queue      Queue
	service    services.EventProcessor
	logger     *zap.Logger
	retryDelay time.Duration
}

func NewSQSConsumer(queue Queue, svc services.EventProcessor, logger *zap.Logger) *SQSConsumer {
	return &SQSConsumer{queue: queue, service: svc, logger: logger, retryDelay: 5 * time.Second}
}

// Start polls until ctx is cancelled.
func (c *SQSConsumer) Start(ctx context.Context) {
	c.logger.Info("SQS consumer started")
	for {
		if ctx.Err() != nil {
			c.logger.Info("SQS consumer shutting down")
			return
		}
		msgs, err := c.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("SQS consumer shutting down")
				return
			}
			c.logger.Error("SQS receive error", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}
		for _, msg := range msgs {
			c.processMessage(ctx, msg)
		}
	}
}

// snsNotification is the wrapper SNS puts around a message delivered to SQS
// without raw message delivery.
type snsNotification struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// unwrap returns the event body, whether or not SNS wrapped it.
func unwrap(body string) []byte {
	var n snsNotification
	if err := json.Unmarshal([]byte(body), &n); err == nil && n.Type == "Notification" && n.Message != "" {
		return []byte(n.Message)
	}
	return []byte(body)
}

// processMessage deletes messages that were handled or can never be handled.
// A processing error leaves the message for redelivery after the visibility
// timeout.
func (c *SQSConsumer) processMessage(ctx context.Context, msg awspkg.QueueMessage) {
	var evt events.Event
	if err := json.Unmarshal(unwrap(msg.Body), &evt); err != nil || evt.Type == "" {
		c.logger.Error("failed to unmarshal event envelope",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		c.delete(ctx, msg)
		return
	}

	if err := c.service.ProcessEvent(ctx, &evt); err != nil {
		c.logger.Error("failed to process event",
			zap.String("event_type", evt.Type),
			zap.String("key", evt.Key),
			zap.Error(err),
		)
		return
	}
	c.delete(ctx, msg)
}

func (c *SQSConsumer) delete(ctx context.Context, msg awspkg.QueueMessage) {
	if err := c.queue.Delete(ctx, msg.ReceiptHandle); err != nil && ctx.Err() == nil {
		c.logger.Error("failed to delete SQS message", zap.String("message_id", msg.ID), zap.Error(err))
	}
}
