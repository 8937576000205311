package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBase_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("KAFKA_TOPIC", "")

	cfg, err := loadBase("booking-service", "8081", nil)
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "booking-service.db", cfg.DB.SQLitePath)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "booking-service.events", cfg.KafkaTopic)
}

func TestLoadBase_PostgresNeedsCredentials(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_DB", "")

	_, err := loadBase("booking-service", "8081", nil)
	assert.Error(t, err)
}

func TestLoadBase_SecretsOverride(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "env-user")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_DB", "stay")

	var asked string
	secrets := func(_ context.Context, name string) (map[string]string, error) {
		asked = name
		return map[string]string{"POSTGRES_PASSWORD": "from-secret", "POSTGRES_HOST": "db.internal"}, nil
	}
	cfg, err := loadBase("booking-service", "8081", secrets)
	require.NoError(t, err)
	assert.Equal(t, "booking-service/DB_CREDENTIALS", asked)
	assert.Equal(t, "env-user", cfg.DB.PostgresUser)
	assert.Equal(t, "from-secret", cfg.DB.PostgresPassword)
	assert.Equal(t, "db.internal", cfg.DB.PostgresHost)

	failing := func(context.Context, string) (map[string]string, error) { return nil, errors.New("denied") }
	_, err = loadBase("booking-service", "8081", failing)
	assert.Error(t, err, "password still missing after failed override")
}

func TestGetDuration(t *testing.T) {
	t.Setenv("X_TTL", "90m")
	assert.Equal(t, 90*time.Minute, GetDuration("X_TTL", time.Second))
	t.Setenv("X_TTL", "120")
	assert.Equal(t, 2*time.Minute, GetDuration("X_TTL", time.Second))
	t.Setenv("X_TTL", "soon")
	assert.Equal(t, time.Second, GetDuration("X_TTL", time.Second))
}

func TestGetBool(t *testing.T) {
	t.Setenv("X_FLAG", "true")
	assert.True(t, GetBool("X_FLAG", false))
	t.Setenv("X_FLAG", "maybe")
	assert.False(t, GetBool("X_FLAG", false))
}
