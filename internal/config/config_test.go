package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PAYMENT_MODE", "redirect")
	t.Setenv("PAYMENT_REDIRECTURL", "https://pay.example.com")
	t.Setenv("KIOSK_IDLESECONDS", "45")
	t.Setenv("SERVER_ALLOWEDORIGINS", "http://a.example.com, http://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "redirect", cfg.Payment.Mode)
	assert.Equal(t, 45, cfg.Kiosk.IdleSeconds)
	assert.Equal(t, 30, cfg.Kiosk.CountdownSeconds)
	assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "Sites", cfg.MongoDB.SitesCollection)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			MongoDB: MongoDBConfig{URI: "mongodb://localhost"},
			JWT:     JWTConfig{Secret: "x"},
			Payment: PaymentConfig{Mode: "direct"},
			Kiosk:   KioskConfig{IdleSeconds: 30, CountdownSeconds: 30},
		}
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.JWT.Secret = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.Payment.Mode = "carrier-pigeon"
	assert.Error(t, c.Validate())

	c = valid()
	c.Payment.Mode = "redirect"
	assert.Error(t, c.Validate())

	c = valid()
	c.Kiosk.CountdownSeconds = 0
	assert.Error(t, c.Validate())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SEED_FLAG", "true")
	assert.True(t, GetEnvAsBool("SEED_FLAG", false))
	assert.False(t, GetEnvAsBool("SEED_MISSING", false))
	assert.Equal(t, "fallback", GetEnv("SEED_MISSING", "fallback"))
}

func TestEnvironmentHelpers(t *testing.T) {
	t.Setenv("SEED_FLAG", "true")
	t.Setenv("SEED_BAD", "maybe")
	t.Setenv("SEED_TIMEOUT", "90s")

	assert.Equal(t, "fallback", GetEnv("SEED_UNSET", "fallback"))
	assert.True(t, GetEnvAsBool("SEED_FLAG", false))
	assert.True(t, GetEnvAsBool("SEED_BAD", true))
	assert.Equal(t, 90*time.Second, GetEnvAsDuration("SEED_TIMEOUT", time.Minute))
	assert.Equal(t, time.Minute, GetEnvAsDuration("SEED_UNSET", time.Minute))
}
