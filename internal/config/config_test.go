package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PASETO_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionDuration)
	assert.Equal(t, 10*time.Minute, cfg.Auth.CodeDuration)
	assert.Equal(t, "no-reply@pagina-prueba.com", cfg.Email.FromAddress)
	assert.Equal(t, "https://www.google.com/recaptcha/api/siteverify", cfg.Captcha.VerifyURL)
}

func TestLoad_RejectsBadKeyLength(t *testing.T) {
	t.Setenv("PASETO_KEY", "too-short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PASETO_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TWO_FACTOR_CODE_DURATION", "300")
	t.Setenv("TRUSTED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 5*time.Minute, cfg.Auth.CodeDuration)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.TrustedOrigins)
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db.example.com", Port: "5432",
		User: "snapplace", Password: "secret",
		DBName: "snapplace", SSLMode: "require",
		ChannelBinding: "require",
	}

	got := cfg.ConnectionString()
	assert.Contains(t, got, "host=db.example.com")
	assert.Contains(t, got, "sslmode=require")
	assert.Contains(t, got, "channel_binding=require")
}
