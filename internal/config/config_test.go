package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/cyprine-heroes/internal/config"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_PASSWORD", "pw")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 30, cfg.JWTExpirationMinutes)
	assert.Equal(t, 30*time.Second, cfg.DBConnectTimeout)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_EXPIRATION_MINUTES", "60")
	t.Setenv("DB_CONNECT_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.test , ,https://b.test")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 60, cfg.JWTExpirationMinutes)
	assert.Equal(t, 30*time.Second, cfg.DBConnectTimeout, "invalid ints fall back")
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": "", "ADMIN_PASSWORD": "pw"}, wantErr: "JWT_SECRET"},
		{name: "missing password", env: map[string]string{"JWT_SECRET": "s", "ADMIN_PASSWORD": ""}, wantErr: "ADMIN_PASSWORD"},
		{name: "non positive expiry", env: map[string]string{"JWT_SECRET": "s", "ADMIN_PASSWORD": "pw", "JWT_EXPIRATION_MINUTES": "0"}, wantErr: "JWT_EXPIRATION_MINUTES"},
		{name: "bad log level", env: map[string]string{"JWT_SECRET": "s", "ADMIN_PASSWORD": "pw", "LOG_LEVEL": "loud"}, wantErr: "invalid log level"},
		{name: "bad log format", env: map[string]string{"JWT_SECRET": "s", "ADMIN_PASSWORD": "pw", "LOG_FORMAT": "xml"}, wantErr: "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoggerConfig_IsProduction(t *testing.T) {
	assert.True(t, config.LoggerConfig{Level: "info", Format: "json"}.IsProduction())
	assert.False(t, config.LoggerConfig{Level: "debug", Format: "json"}.IsProduction())
	assert.False(t, config.LoggerConfig{Level: "info", Format: "console"}.IsProduction())
}
