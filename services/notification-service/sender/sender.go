// Package sender delivers rendered notifications to customers.
package sender

import (
	"context"
	"time"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

// Delivery identifies a message the transport accepted.
type Delivery struct {
	MessageID string
	SentAt    time.Time
}

type EmailSender interface {
	Send(ctx context.Context, email Email) (Delivery, error)
}
