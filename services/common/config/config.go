// Package config loads the environment settings shared by every service.
package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	awspkg "github.com/yashrajoria/stayshop/pkg/aws"
	"github.com/yashrajoria/stayshop/pkg/database"
)

// Base holds the settings every service reads.
type Base struct {
	Service string
	Port    string
	Env     string

	DB database.Config

	RedisURL      string
	SessionTTL    time.Duration
	SessionSecure bool

	AdminUsername string
	AdminPassword string

	EventsBackend string
	SNSTopicARN   string
	KafkaBrokers  string
	KafkaTopic    string

	AllowedOrigins string
	Currency       string
}

// SecretsLoader fetches a JSON secret as a flat map.
type SecretsLoader func(ctx context.Context, name string) (map[string]string, error)

// LoadBase reads .env (if present) and the environment. When
// AWS_USE_SECRETS=true the database credentials are overridden from the
// <service>/DB_CREDENTIALS secret.
func LoadBase(service, defaultPort string) (*Base, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var secrets SecretsLoader
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		secrets = func(ctx context.Context, name string) (map[string]string, error) {
			awsCfg, err := awspkg.LoadAWSConfig(ctx)
			if err != nil {
				return nil, err
			}
			return awspkg.NewSecretsClient(awsCfg).GetSecretMap(ctx, name)
		}
	}
	return loadBase(service, defaultPort, secrets)
}

func loadBase(service, defaultPort string, secrets SecretsLoader) (*Base, error) {
	cfg := &Base{
		Service: service,
		Port:    GetEnv("PORT", defaultPort),
		Env:     GetEnv("APP_ENV", "development"),
		DB: database.Config{
			Driver:           GetEnv("DB_DRIVER", "sqlite"),
			SQLitePath:       GetEnv("SQLITE_PATH", service+".db"),
			PostgresUser:     os.Getenv("POSTGRES_USER"),
			PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
			PostgresDB:       os.Getenv("POSTGRES_DB"),
			PostgresHost:     GetEnv("POSTGRES_HOST", "localhost"),
			PostgresPort:     GetEnv("POSTGRES_PORT", "5432"),
			PostgresSSLMode:  GetEnv("POSTGRES_SSLMODE", "disable"),
			PostgresTimeZone: GetEnv("POSTGRES_TIMEZONE", "Asia/Bangkok"),
		},
		RedisURL:       os.Getenv("REDIS_URL"),
		SessionTTL:     GetDuration("SESSION_TTL", 7*24*time.Hour),
		SessionSecure:  GetBool("SESSION_COOKIE_SECURE", false),
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		EventsBackend:  GetEnv("EVENTS_BACKEND", "none"),
		SNSTopicARN:    os.Getenv("SNS_TOPIC_ARN"),
		KafkaBrokers:   GetEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:     GetEnv("KAFKA_TOPIC", service+".events"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		Currency:       GetEnv("CURRENCY", "THB"),
	}

	if secrets != nil {
		m, err := secrets(context.Background(), service+"/DB_CREDENTIALS")
		if err != nil {
			log.Printf("Secrets Manager override skipped: %v", err)
		} else {
			override(&cfg.DB.PostgresUser, m["POSTGRES_USER"])
			override(&cfg.DB.PostgresPassword, m["POSTGRES_PASSWORD"])
			override(&cfg.DB.PostgresDB, m["POSTGRES_DB"])
			override(&cfg.DB.PostgresHost, m["POSTGRES_HOST"])
			override(&cfg.DB.PostgresPort, m["POSTGRES_PORT"])
		}
	}

	if strings.EqualFold(cfg.DB.Driver, "postgres") &&
		(cfg.DB.PostgresUser == "" || cfg.DB.PostgresPassword == "" || cfg.DB.PostgresDB == "") {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// GetEnv returns the variable or fallback when unset or empty.
func GetEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GetBool parses a boolean variable, falling back on parse errors.
func GetBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

// GetDuration accepts Go durations ("36h") or plain seconds.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
