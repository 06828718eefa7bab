package gateway

import (
	"fmt"

	"invoicing-service/internal/config"
	"invoicing-service/internal/models"
)

// NewFromConfig builds the configured payment gateway
func NewFromConfig(cfg *config.Config) (OrderGateway, error) {
	switch models.GatewayType(cfg.PaymentGateway) {
	case models.GatewayRazorpay, "":
		gw, err := NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case models.GatewayStripe:
		gw, err := NewStripeGateway(cfg.StripeSecretKey)
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unsupported gateway type: %s", cfg.PaymentGateway)
	}
}
