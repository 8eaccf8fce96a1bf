package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/coworkhub?sslmode=disable")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("INTENT_SIGNING_SECRET", "intent-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "auth_token", cfg.JWT.CookieName)
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, "COP", cfg.Payment.Currency)
	assert.Equal(t, 3, cfg.Payment.Installments)
	assert.Equal(t, "America/Bogota", cfg.Location().String())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MERCADOPAGO_TIMEOUT", "5")
	t.Setenv("JWT_EXPIRY", "12h")
	t.Setenv("FRONTEND_URL", "https://app.coworkhub.co/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.co, https://b.co ,")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "https://app.coworkhub.co", cfg.URLs.Frontend)
	assert.Equal(t, []string{"https://a.co", "https://b.co"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Environment: "development", Timezone: "America/Bogota"},
			Database: DatabaseConfig{URL: "postgres://localhost/db"},
			JWT:      JWTConfig{Secret: "a"},
			Payment:  PaymentConfig{IntentSecret: "b", Sandbox: true},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Database.URL = ""
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg = valid()
	cfg.Payment.IntentSecret = ""
	assert.ErrorContains(t, cfg.Validate(), "INTENT_SIGNING_SECRET")

	cfg = valid()
	cfg.Payment.IntentSecret = cfg.JWT.Secret
	assert.ErrorContains(t, cfg.Validate(), "must differ")

	cfg = valid()
	cfg.Server.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "TIMEZONE")

	cfg = valid()
	cfg.Server.Environment = "production"
	assert.ErrorContains(t, cfg.Validate(), "MERCADOPAGO_ACCESS_TOKEN")

	cfg.Payment.AccessToken = "APP_USR-token"
	assert.ErrorContains(t, cfg.Validate(), "MERCADOPAGO_SANDBOX")

	cfg.Payment.Sandbox = false
	assert.NoError(t, cfg.Validate())
}
