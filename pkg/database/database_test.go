package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yashrajoria/stayshop/pkg/database"
)

type widget struct {
	ID   uint
	Name string
}

func TestOpen_SQLite(t *testing.T) {
	db, err := database.Open(database.Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, db.AutoMigrate(&widget{}))
	require.NoError(t, db.Create(&widget{Name: "lamp"}).Error)

	var got widget
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "lamp", got.Name)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open(database.Config{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestConfig_DSN(t *testing.T) {
	cfg := database.Config{
		PostgresHost: "db", PostgresUser: "u", PostgresPassword: "p", PostgresDB: "stay",
		PostgresPort: "5432", PostgresSSLMode: "disable", PostgresTimeZone: "UTC",
	}
	assert.Equal(t, "host=db user=u password=p dbname=stay port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, database.Close(nil))
}
