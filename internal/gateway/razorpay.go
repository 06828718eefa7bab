package gateway

import (
	"context"
	"fmt"
	"strings"

	razorpayLib "github.com/razorpay/razorpay-go"

	"invoicing-service/internal/models"
)

// RazorpayGateway creates Razorpay orders
type RazorpayGateway struct {
	client *razorpayLib.Client
	keyID  string
}

// NewRazorpayGateway creates a new Razorpay gateway instance
func NewRazorpayGateway(keyID, keySecret string) (*RazorpayGateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("%w: razorpay key ID and secret are required (RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET)", ErrMissingCredentials)
	}

	return &RazorpayGateway{
		client: razorpayLib.NewClient(keyID, keySecret),
		keyID:  keyID,
	}, nil
}

// GetType returns the gateway type
func (g *RazorpayGateway) GetType() models.GatewayType {
	return models.GatewayRazorpay
}

// CreateOrder creates a Razorpay order. Amounts are sent in paise.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResult, error) {
	orderData := map[string]interface{}{
		"amount":   minorUnits(req.Amount),
		"currency": strings.ToUpper(req.Currency),
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		orderData["notes"] = req.Notes
	}

	order, err := g.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, orderFailed(models.GatewayRazorpay, err)
	}

	orderID, _ := order["id"].(string)
	if orderID == "" {
		return nil, orderFailed(models.GatewayRazorpay, fmt.Errorf("response has no order id"))
	}
	status, _ := order["status"].(string)

	return &OrderResult{
		GatewayOrderID: orderID,
		Status:         status,
		CheckoutKey:    g.keyID,
		Raw:            order,
	}, nil
}
