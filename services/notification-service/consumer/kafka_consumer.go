package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yashrajoria/stayshop/pkg/events"
	"github.com/yashrajoria/stayshop/services/notification-service/services"
)

// MessageReader is the subset of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConsumer struct {
	reader  MessageReader
	service services.EventProcessor
	logger  *zap.Logger
}

// NewKafkaReader joins groupID on every topic.
func NewKafkaReader(brokers, topics []string, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     2 * time.Second,
	})
}

func NewKafkaConsumer(reader MessageReader, svc services.EventProcessor, logger *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{reader: reader, service: svc, logger: logger}
}

// Start consumes until ctx is cancelled. Offsets are committed after each
// message is handled, including malformed ones that can never succeed.
func (c *KafkaConsumer) Start(ctx context.Context) {
	c.logger.Info("Kafka consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Kafka consumer shutting down")
				return
			}
			c.logger.Error("Kafka fetch error", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		c.processMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit offset",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) {
	var evt events.Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		c.logger.Error("failed to unmarshal event envelope",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return
	}

	if err := c.service.ProcessEvent(ctx, &evt); err != nil {
		c.logger.Error("failed to process event",
			zap.String("event_type", evt.Type),
			zap.String("key", evt.Key),
			zap.Error(err),
		)
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
