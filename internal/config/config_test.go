package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_ENV", "development")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "user_token", cfg.JWT.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.JWT.SessionDuration())
	assert.False(t, cfg.JWT.SecureCookie)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_ProductionUsesSecureCookie(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("JWT_SESSION_HOURS", "2")

	cfg := Load()

	assert.True(t, cfg.JWT.SecureCookie)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 2*time.Hour, cfg.JWT.SessionDuration())
}

func TestLoad_StorageDriverSelection(t *testing.T) {
	t.Run("no endpoint keeps images in memory", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")
		t.Setenv("STORAGE_ENDPOINT", "")

		cfg := Load()

		assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
		assert.Empty(t, cfg.Storage.Endpoint)
	})

	t.Run("endpoint selects minio", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")
		t.Setenv("STORAGE_ENDPOINT", "minio:9000")

		cfg := Load()

		assert.Equal(t, StorageDriverMinio, cfg.Storage.Driver)
		assert.Equal(t, "minio:9000", cfg.Storage.Endpoint)
	})

	t.Run("explicit driver wins", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "Memory")
		t.Setenv("STORAGE_ENDPOINT", "minio:9000")

		cfg := Load()

		assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	})
}
