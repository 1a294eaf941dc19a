package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GATEWAY_TIMEOUT", "")
	t.Setenv("GATEWAY_BASE_URL", "https://pay.example.com/api/v1/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "https://pay.example.com/api/v1", cfg.Gateway.BaseURL)
	assert.Equal(t, "INR", cfg.Gateway.Currency)
}

func TestLoad_DurationsAndLists(t *testing.T) {
	t.Setenv("GATEWAY_TIMEOUT", "12")
	t.Setenv("SWEEP_INTERVAL", "90s")
	t.Setenv("GATEWAY_OAUTH_SCOPES", "payments.read, payments.write")
	t.Setenv("SMTP_PORT", "465")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Sweep.Interval)
	assert.Equal(t, []string{"payments.read", "payments.write"}, cfg.Gateway.OAuthScopes)
	assert.Equal(t, 465, cfg.SMTP.Port)
}
