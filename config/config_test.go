package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmorozova/platefeed/backend/config"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-0123456789")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_NAME", "platefeed")
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "disable", cfg.DBSSLMode)
		assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	})

	t.Run("missing jwt secret fails fast", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("JWT_SECRET", "")

		_, err := config.LoadConfig()
		assert.Error(t, err)
	})

	t.Run("short jwt secret rejected", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("JWT_SECRET", "short")

		_, err := config.LoadConfig()
		assert.Error(t, err)
	})

	t.Run("invalid ssl mode rejected", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DB_SSL_MODE", "bogus")

		_, err := config.LoadConfig()
		assert.Error(t, err)
	})

	t.Run("cors origins parsed from comma list", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example.com, http://b.example.com")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.AllowedOrigins)
	})
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "postgres",
		DBPassword: "secret",
		DBName:     "platefeed",
		DBSSLMode:  "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=postgres password=secret dbname=platefeed sslmode=disable",
		cfg.DSN())
}
