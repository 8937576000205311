package main

import (
	"time"

	"github.com/yashrajoria/stayshop/services/common/config"
	"github.com/yashrajoria/stayshop/services/notification-service/sender"
)

// Config holds all configuration for the notification service.
type Config struct {
	*config.Base

	Topics   []string
	GroupID  string
	QueueURL string
	SMTP     sender.SMTPConfig
	Backoff  time.Duration
}

func LoadConfig() (*Config, error) {
	base, err := config.LoadBase("notification-service", "8083")
	if err != nil {
		return nil, err
	}

	return &Config{
		Base:    base,
		Topics:   splitList(config.GetEnv("NOTIFY_TOPICS", "booking-service.events,shop-service.events")),
		GroupID:  config.GetEnv("KAFKA_GROUP_ID", "notification-service"),
		QueueURL: config.GetEnv("SQS_QUEUE_URL", ""),
		SMTP: sender.SMTPConfig{
			Host:     config.GetEnv("SMTP_HOST", ""),
			Port:     config.GetEnv("SMTP_PORT", "587"),
			Username: config.GetEnv("SMTP_USER", ""),
			Password: config.GetEnv("SMTP_PASS", ""),
			From:     config.GetEnv("SMTP_FROM", ""),
		},
		Backoff: config.GetDuration("NOTIFY_RETRY_BACKOFF", time.Second),
	}, nil
}
