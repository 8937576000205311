// Package events publishes checkout events to SNS or Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/stayshop/pkg/aws"
)

// Event is the envelope every service emits.
type Event struct {
	Type      string          `json:"event_type"`
	Key       string          `json:"key"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher emits events. Publishing is best effort for callers: a failure is
// logged and never undoes a committed checkout.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

func envelope(source, eventType, key string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return json.Marshal(Event{
		Type:      eventType,
		Key:       key,
		Source:    source,
		Payload:   body,
		Timestamp: time.Now().UTC(),
	})
}

// NopPublisher drops events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                         { return nil }

// SNSPublisher sends envelopes to one topic with an event_type attribute.
type SNSPublisher struct {
	client   awspkg.SNSPublisher
	topicArn string
	source   string
	logger   *zap.Logger
}

func NewSNSPublisher(client awspkg.SNSPublisher, topicArn, source string, logger *zap.Logger) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn, source: source, logger: logger}
}

func (p *SNSPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	msg, err := envelope(p.source, eventType, key, payload)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.topicArn, msg, map[string]string{"event_type": eventType}); err != nil {
		return err
	}
	p.logger.Debug("event published", zap.String("event_type", eventType), zap.String("key", key))
	return nil
}

func (p *SNSPublisher) Close() error { return nil }

// KafkaPublisher writes envelopes keyed by the event key.
type KafkaPublisher struct {
	writer *kafka.Writer
	source string
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic, source string, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	logger.Info("kafka publisher initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &KafkaPublisher{writer: w, source: source, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	msg, err := envelope(p.source, eventType, key, payload)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   msg,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	})
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", eventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// Options selects and configures a backend.
type Options struct {
	Backend  string // sns | kafka | none
	Source   string
	TopicArn string
	Brokers  string
	Topic    string
}

// New builds the publisher named by opts.Backend. loadSNS is only called for
// the sns backend so services without AWS credentials still start.
func New(opts Options, loadSNS func() (awspkg.SNSPublisher, error), logger *zap.Logger) (Publisher, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "none":
		return NopPublisher{}, nil
	case "sns":
		if opts.TopicArn == "" {
			return nil, errors.New("sns backend requires a topic arn")
		}
		client, err := loadSNS()
		if err != nil {
			return nil, err
		}
		return NewSNSPublisher(client, opts.TopicArn, opts.Source, logger), nil
	case "kafka":
		var brokers []string
		for _, b := range strings.Split(opts.Brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		if len(brokers) == 0 || opts.Topic == "" {
			return nil, errors.New("kafka backend requires brokers and a topic")
		}
		return NewKafkaPublisher(brokers, opts.Topic, opts.Source, logger), nil
	}
	return nil, fmt.Errorf("unknown events backend %q", opts.Backend)
}
