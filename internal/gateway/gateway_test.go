package gateway

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing-service/internal/config"
	"invoicing-service/internal/models"
)

func TestNewRazorpayGateway_MissingCredentials(t *testing.T) {
	_, err := NewRazorpayGateway("", "secret")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewRazorpayGateway("key", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestNewStripeGateway_MissingCredentials(t *testing.T) {
	_, err := NewStripeGateway("")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestNewFromConfig(t *testing.T) {
	gw, err := NewFromConfig(&config.Config{PaymentGateway: "razorpay", RazorpayKeyID: "rzp_test", RazorpayKeySecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, models.GatewayRazorpay, gw.GetType())

	gw, err = NewFromConfig(&config.Config{PaymentGateway: "stripe", StripeSecretKey: "sk_test"})
	require.NoError(t, err)
	assert.Equal(t, models.GatewayStripe, gw.GetType())

	_, err = NewFromConfig(&config.Config{PaymentGateway: "paypal"})
	assert.Error(t, err)

	_, err = NewFromConfig(&config.Config{PaymentGateway: "razorpay"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(49900), minorUnits(decimal.NewFromInt(499)))
	assert.Equal(t, int64(999000), minorUnits(decimal.NewFromInt(9990)))
	assert.Equal(t, int64(1), minorUnits(decimal.RequireFromString("0.005")))
}
