package main

import "github.com/yashrajoria/stayshop/services/common/config"

// Config holds all configuration for the shop service.
type Config struct {
	*config.Base
}

func LoadConfig() (*Config, error) {
	base, err := config.LoadBase("shop-service", "8082")
	if err != nil {
		return nil, err
	}
	return &Config{Base: base}, nil
}
