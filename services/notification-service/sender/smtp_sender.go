package sender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"
)

// SMTPConfig holds relay settings. Username may be empty for relays without
// authentication.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP_HOST not set")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("SMTP_FROM not set")
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail, now: time.Now}, nil
}

// Send delivers a plain-text message. The generated Message-ID header is
// returned as the delivery ID.
func (s *SMTPSender) Send(ctx context.Context, email Email) (Delivery, error) {
	if err := ctx.Err(); err != nil {
		return Delivery{}, err
	}
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	now := s.now()
	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.Host)
	msg := s.compose(email, id, now)
	if err := s.send(net.JoinHostPort(s.cfg.Host, s.cfg.Port), auth, s.cfg.From, []string{email.To}, msg); err != nil {
		return Delivery{}, fmt.Errorf("smtp send to %s: %w", email.To, err)
	}
	return Delivery{MessageID: id, SentAt: now}, nil
}

func (s *SMTPSender) compose(email Email, messageID string, at time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	header("From", s.cfg.From)
	header("To", email.To)
	header("Subject", email.Subject)
	header("Date", at.Format(time.RFC1123Z))
	header("Message-ID", messageID)
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(email.Body)
	return b.Bytes()
}
