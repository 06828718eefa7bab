package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DRAFT_TTL_HOURS", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("PAYMENT_GATEWAY", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.DraftTTL)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, "razorpay", cfg.PaymentGateway)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "pw", cfg.DBPassword)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DRAFT_TTL_HOURS", "6")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.Equal(t, 6*time.Hour, cfg.DraftTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestValidate_JWTSecret(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.NoError(t, cfg.Validate())

	t.Setenv("ENVIRONMENT", "production")
	cfg = Load()
	assert.Empty(t, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrJWTSecretRequired)

	cfg.JWTSecret = DevJWTSecret
	assert.ErrorIs(t, cfg.Validate(), ErrJWTSecretRequired)

	t.Setenv("JWT_SECRET", "s3cret")
	assert.NoError(t, Load().Validate())
}

func TestLoad_InvalidTTLFallsBack(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DRAFT_TTL_HOURS", "-3")

	assert.Equal(t, 72*time.Hour, Load().DraftTTL)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: 5433, DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://u:p@db/n"
	assert.Equal(t, "postgres://u:p@db/n", cfg.DSN())
}
