package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadInfersPostgresFromDatabaseURL(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@db.example.com/qota")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db.example.com/qota", cfg.Database.URL)
}

func TestLoadDefaultsToSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 60, cfg.Cache.MetricsTTLSeconds)
}

func TestLoadExplicitDriverWins(t *testing.T) {
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("DATABASE_URL", "postgres://ignored")

	cfg := Load()
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestLoadSplitsAllowedOrigins(t *testing.T) {
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}
