package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/yashrajoria/stayshop/pkg/events"
	"github.com/yashrajoria/stayshop/services/notification-service/models"
	"github.com/yashrajoria/stayshop/services/notification-service/repository"
	"github.com/yashrajoria/stayshop/services/notification-service/sender"
)

// EventProcessor turns a consumed event into a notification.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, evt *events.Event) error
}

type NotificationService interface {
	EventProcessor
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
	GetLog(ctx context.Context, id uint) (*models.NotificationLog, error)
	Stats(ctx context.Context) ([]models.StatusCount, error)
}

type eventConfig struct {
	subject string
	body    string
}

// Event types produced by the booking and shop services.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventOrderCreated         = "order.created"
	EventOrderStatusChanged   = "order.status_changed"
)

var eventConfigs = map[string]eventConfig{
	EventBookingCreated: {
		subject: "Your booking is confirmed",
		body: `Hello {{.customer_name}},

Your stay at {{.room_name}} is booked.
Check-in: {{.check_in}}
Check-out: {{.check_out}}
Nights: {{.nights}}
Total: {{.total_price}}
{{with .payment_ref}}Payment reference: {{.}}
{{end}}`,
	},
	EventBookingStatusChanged: {
		subject: "Your booking was updated",
		body: `Hello {{.customer_name}},

Booking #{{.booking_id}} is now {{.status}}.
`,
	},
	EventOrderCreated: {
		subject: "Order confirmed",
		body: `Hello {{.customer_name}},

Thanks for your order of {{.quantity}} x {{.product_name}}.
Total: {{.total_price}}
`,
	},
	EventOrderStatusChanged: {
		subject: "Your order was updated",
		body: `Hello {{.customer_name}},

Order #{{.order_id}} is now {{.status}}.
`,
	},
}

const maxAttempts = 3

type notificationService struct {
	repo        repository.NotificationRepository
	emailSender sender.EmailSender
	templates   map[string]*template.Template
	backoff     time.Duration
	logger      *zap.Logger
}

// NewNotificationService parses every event template up front. backoff is the
// base delay between send attempts.
func NewNotificationService(
	repo repository.NotificationRepository,
	emailSender sender.EmailSender,
	backoff time.Duration,
	logger *zap.Logger,
) (NotificationService, error) {
	tmpls := make(map[string]*template.Template)
	for eventType, cfg := range eventConfigs {
		tmpl, err := template.New(eventType).Option("missingkey=zero").Parse(cfg.body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template for %s: %w", eventType, err)
		}
		tmpls[eventType] = tmpl
	}
	return &notificationService{
		repo:        repo,
		emailSender: emailSender,
		templates:   tmpls,
		backoff:     backoff,
		logger:      logger,
	}, nil
}

// ProcessEvent renders and sends the email for evt, then records the outcome.
// Event types without a template are skipped. Delivery failures are recorded,
// not returned.
func (s *notificationService) ProcessEvent(ctx context.Context, evt *events.Event) error {
	cfg, ok := eventConfigs[evt.Type]
	if !ok {
		s.logger.Debug("ignoring event", zap.String("event_type", evt.Type))
		return nil
	}

	// Numbers stay json.Number so ids render as written, not as floats.
	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader(evt.Payload))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("decode %s payload: %w", evt.Type, err)
	}

	to, _ := data["customer_email"].(string)
	if to == "" {
		s.logger.Warn("missing recipient, skipping event",
			zap.String("event_type", evt.Type),
			zap.String("key", evt.Key),
		)
		return nil
	}

	var body bytes.Buffer
	if err := s.templates[evt.Type].Execute(&body, data); err != nil {
		return fmt.Errorf("render %s: %w", evt.Type, err)
	}

	email := sender.Email{To: to, Subject: cfg.subject, Body: body.String()}
	delivery, attempts, err := s.deliver(ctx, email, evt.Type)
	s.record(ctx, evt, email, delivery, attempts, err)
	return nil
}

// deliver tries up to maxAttempts times, waiting attempt*backoff between
// tries. It stops early when ctx is done.
func (s *notificationService) deliver(ctx context.Context, email sender.Email, eventType string) (sender.Delivery, int, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return sender.Delivery{}, attempt - 1, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * s.backoff):
			}
		}

		d, err := s.emailSender.Send(ctx, email)
		if err == nil {
			return d, attempt, nil
		}
		lastErr = err
		s.logger.Warn("send attempt failed",
			zap.String("event_type", eventType),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return sender.Delivery{}, maxAttempts, lastErr
}

func (s *notificationService) record(ctx context.Context, evt *events.Event, email sender.Email, d sender.Delivery, attempts int, sendErr error) {
	entry := &models.NotificationLog{
		Recipient: email.To,
		EventType: evt.Type,
		EventKey:  evt.Key,
		Source:    evt.Source,
		Channel:   models.ChannelEmail,
		Subject:   email.Subject,
		Status:    models.StatusSent,
		Attempts:  attempts,
		MessageID: d.MessageID,
	}
	if sendErr != nil {
		entry.Status = models.StatusFailed
		entry.Error = sendErr.Error()
	}

	s.logger.Info("notification processed",
		zap.String("event_type", evt.Type),
		zap.String("status", entry.Status),
		zap.Int("attempts", attempts),
	)

	// the log is written even when ctx was cancelled mid-retry
	if err := s.repo.SaveLog(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to save notification log", zap.Error(err))
	}
}

func (s *notificationService) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	return s.repo.GetLogs(ctx, filter)
}

func (s *notificationService) GetLog(ctx context.Context, id uint) (*models.NotificationLog, error) {
	return s.repo.GetLogByID(ctx, id)
}

func (s *notificationService) Stats(ctx context.Context) ([]models.StatusCount, error) {
	return s.repo.CountByStatus(ctx)
}
