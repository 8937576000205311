package main

import (
	"os"

	"github.com/yashrajoria/stayshop/services/common/config"
)

// Config holds all configuration for the booking service.
type Config struct {
	*config.Base

	UploadDir         string
	ReviewImageBucket string
	StripeSecretKey   string
}

// LoadConfig reads the shared settings plus the booking-only keys.
func LoadConfig() (*Config, error) {
	base, err := config.LoadBase("booking-service", "8081")
	if err != nil {
		return nil, err
	}
	return &Config{
		Base:              base,
		UploadDir:         config.GetEnv("UPLOAD_DIR", "static/uploads"),
		ReviewImageBucket: os.Getenv("REVIEW_IMAGE_BUCKET"),
		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
	}, nil
}
