package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry.Std())
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshExpiry.Std())
	assert.Equal(t, "log", cfg.MailProvider)
	assert.Equal(t, 5, cfg.WorkerConcurrency)
	assert.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_EXPIRY", "15m")
	t.Setenv("JWT_REFRESH_EXPIRY", "30d")
	t.Setenv("MAIL_PROVIDER", "resend")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry.Std())
	assert.Equal(t, 30*24*time.Hour, cfg.JWTRefreshExpiry.Std())
	assert.Equal(t, "resend", cfg.MailProvider)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
	t.Run("shared secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "same")
		t.Setenv("JWT_REFRESH_SECRET", "same")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
	t.Run("bad expiry", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("JWT_REFRESH_EXPIRY", "sevend")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestDurationDecode(t *testing.T) {
	cases := map[string]time.Duration{
		"1h":   time.Hour,
		"90s":  90 * time.Second,
		"7d":   7 * 24 * time.Hour,
		"1.5d": 36 * time.Hour,
	}
	for in, want := range cases {
		var d Duration
		require.NoError(t, d.Decode(in), in)
		assert.Equal(t, want, d.Std(), in)
	}
	var d Duration
	assert.Error(t, d.Decode("soon"))
}

func TestIsProductionNilSafe(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.IsProduction())
}
