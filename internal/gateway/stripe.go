package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"invoicing-service/internal/models"
)

// StripeGateway creates Stripe PaymentIntents
type StripeGateway struct {
	secretKey string
}

// NewStripeGateway creates a new Stripe gateway instance
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("%w: stripe secret key is required (STRIPE_SECRET_KEY)", ErrMissingCredentials)
	}
	return &StripeGateway{secretKey: secretKey}, nil
}

// GetType returns the gateway type
func (g *StripeGateway) GetType() models.GatewayType {
	return models.GatewayStripe
}

// CreateOrder creates a PaymentIntent for the order amount
func (g *StripeGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResult, error) {
	stripe.Key = g.secretKey

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(minorUnits(req.Amount)),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(fmt.Sprintf("Subscription %s", req.Receipt)),
	}
	params.Context = ctx
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("receipt", req.Receipt)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, orderFailed(models.GatewayStripe, err)
	}

	return &OrderResult{
		GatewayOrderID: pi.ID,
		Status:         string(pi.Status),
		ClientSecret:   pi.ClientSecret,
	}, nil
}
