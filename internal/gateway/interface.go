package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"invoicing-service/internal/models"
)

var (
	// ErrMissingCredentials means the gateway has no API keys configured
	ErrMissingCredentials = errors.New("payment gateway credentials are not configured")

	// ErrPaymentOrderFailed is the single failure signal for order creation
	ErrPaymentOrderFailed = errors.New("failed to create payment order")
)

// CreateOrderRequest describes a subscription order
type CreateOrderRequest struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Notes    map[string]string
}

// OrderResult is the handle returned by the gateway
type OrderResult struct {
	GatewayOrderID string                 `json:"gatewayOrderId"`
	Status         string                 `json:"status"`
	ClientSecret   string                 `json:"clientSecret,omitempty"`
	CheckoutKey    string                 `json:"checkoutKey,omitempty"`
	Raw            map[string]interface{} `json:"-"`
}

// OrderGateway creates payment orders at a third-party gateway
type OrderGateway interface {
	GetType() models.GatewayType
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResult, error)
}

// minorUnits converts an amount to the smallest currency unit (paise, cents)
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func orderFailed(gateway models.GatewayType, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPaymentOrderFailed, gateway, err)
}
