package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"invoicing-service/internal/events"
	"invoicing-service/internal/gateway"
	"invoicing-service/internal/models"
	"invoicing-service/internal/repository"
)

var ErrUnknownPlan = errors.New("unknown plan or billing cycle")

// planPrices is the subscription price table in INR
var planPrices = map[models.Plan]map[models.BillingCycle]decimal.Decimal{
	models.PlanStarter: {
		models.BillingMonthly: decimal.NewFromInt(499),
		models.BillingYearly:  decimal.NewFromInt(999),
	},
	models.PlanProfessional: {
		models.BillingMonthly: decimal.NewFromInt(999),
		models.BillingYearly:  decimal.NewFromInt(9990),
	},
}

// PlanPrice returns the price of a plan for a billing cycle
func PlanPrice(plan models.Plan, cycle models.BillingCycle) (decimal.Decimal, error) {
	prices, ok := planPrices[plan]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownPlan, plan)
	}
	price, ok := prices[cycle]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownPlan, cycle)
	}
	return price, nil
}

// PaymentOrderResponse is returned to the client to open checkout
type PaymentOrderResponse struct {
	Order  *models.PaymentOrder `json:"order"`
	Result *gateway.OrderResult `json:"gateway"`
}

// SubscriptionService creates subscription payment orders
type SubscriptionService struct {
	gateway   gateway.OrderGateway
	orders    repository.PaymentOrderRepositoryInterface
	currency  string
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewSubscriptionService creates a new SubscriptionService. gw may be nil
// when no gateway is configured; orders then fail with ErrMissingCredentials.
func NewSubscriptionService(
	gw gateway.OrderGateway,
	orders repository.PaymentOrderRepositoryInterface,
	currency string,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *SubscriptionService {
	if logger == nil {
		logger = logrus.New()
	}
	if currency == "" {
		currency = "INR"
	}
	return &SubscriptionService{
		gateway:   gw,
		orders:    orders,
		currency:  currency,
		publisher: publisher,
		logger:    logger.WithField("component", "subscription-service"),
	}
}

// CreateOrder prices the plan and opens an order at the gateway
func (s *SubscriptionService) CreateOrder(ctx context.Context, ownerID string, req models.CreatePaymentOrderRequest) (*PaymentOrderResponse, error) {
	amount, err := PlanPrice(req.Plan, req.BillingCycle)
	if err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, gateway.ErrMissingCredentials
	}

	notes := map[string]string{
		"owner_id":      ownerID,
		"plan":          string(req.Plan),
		"billing_cycle": string(req.BillingCycle),
	}
	notesJSON, _ := json.Marshal(notes)

	order := &models.PaymentOrder{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Plan:         req.Plan,
		BillingCycle: req.BillingCycle,
		Amount:       amount,
		Currency:     s.currency,
		Gateway:      s.gateway.GetType(),
		Notes:        datatypes.JSON(notesJSON),
	}

	result, err := s.gateway.CreateOrder(ctx, &gateway.CreateOrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  fmt.Sprintf("sub_%s_%d", order.ID.String()[:8], time.Now().Unix()),
		Notes:    notes,
	})
	if err != nil {
		order.Status = models.PaymentOrderFailed
		order.FailureReason = err.Error()
		if saveErr := s.orders.Create(ctx, order); saveErr != nil {
			s.logger.WithError(saveErr).Warn("Failed to record failed payment order")
		}
		s.logger.WithError(err).WithField("ownerId", ownerID).Warn("Payment order creation failed")
		return nil, err
	}

	order.Status = models.PaymentOrderCreated
	order.GatewayOrderID = result.GatewayOrderID
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record payment order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ownerId":        ownerID,
		"plan":           req.Plan,
		"gatewayOrderId": result.GatewayOrderID,
	}).Info("Payment order created")
	s.publisher.PublishPaymentOrderCreated(ctx, order)
	return &PaymentOrderResponse{Order: order, Result: result}, nil
}

// ListOrders returns the owner's payment orders
func (s *SubscriptionService) ListOrders(ctx context.Context, ownerID string) ([]models.PaymentOrder, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}
