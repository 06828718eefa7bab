package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicing-service/internal/gateway"
	"invoicing-service/internal/models"
)

func TestPlanPrice(t *testing.T) {
	tests := []struct {
		plan  models.Plan
		cycle models.BillingCycle
		want  int64
	}{
		{models.PlanStarter, models.BillingMonthly, 499},
		{models.PlanStarter, models.BillingYearly, 999},
		{models.PlanProfessional, models.BillingMonthly, 999},
		{models.PlanProfessional, models.BillingYearly, 9990},
	}
	for _, tt := range tests {
		price, err := PlanPrice(tt.plan, tt.cycle)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(tt.want).Equal(price), "%s/%s", tt.plan, tt.cycle)
	}

	_, err := PlanPrice("enterprise", models.BillingMonthly)
	assert.ErrorIs(t, err, ErrUnknownPlan)
	_, err = PlanPrice(models.PlanStarter, "weekly")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func newSubscriptionFixture(gw gateway.OrderGateway) (*SubscriptionService, *MockPaymentOrderRepository) {
	orders := new(MockPaymentOrderRepository)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewSubscriptionService(gw, orders, "INR", nil, logger), orders
}

func TestSubscriptionService_CreateOrder(t *testing.T) {
	gw := new(MockGateway)
	svc, orders := newSubscriptionFixture(gw)
	gw.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req *gateway.CreateOrderRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(9990)) && req.Currency == "INR" && req.Notes["owner_id"] == testOwner
	})).Return(&gateway.OrderResult{GatewayOrderID: "order_123", Status: "created"}, nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o *models.PaymentOrder) bool {
		return o.Status == models.PaymentOrderCreated && o.GatewayOrderID == "order_123"
	})).Return(nil)

	resp, err := svc.CreateOrder(context.Background(), testOwner, models.CreatePaymentOrderRequest{
		Plan:         models.PlanProfessional,
		BillingCycle: models.BillingYearly,
	})

	require.NoError(t, err)
	assert.Equal(t, "order_123", resp.Result.GatewayOrderID)
	assert.Equal(t, models.GatewayRazorpay, resp.Order.Gateway)
	orders.AssertExpectations(t)
}

func TestSubscriptionService_CreateOrder_GatewayFailureRecorded(t *testing.T) {
	gw := new(MockGateway)
	svc, orders := newSubscriptionFixture(gw)
	gwErr := fmt.Errorf("%w: razorpay: bad request", gateway.ErrPaymentOrderFailed)
	gw.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, gwErr)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o *models.PaymentOrder) bool {
		return o.Status == models.PaymentOrderFailed && o.FailureReason != ""
	})).Return(nil)

	_, err := svc.CreateOrder(context.Background(), testOwner, models.CreatePaymentOrderRequest{
		Plan:         models.PlanStarter,
		BillingCycle: models.BillingMonthly,
	})

	assert.ErrorIs(t, err, gateway.ErrPaymentOrderFailed)
	orders.AssertExpectations(t)
}

func TestSubscriptionService_CreateOrder_NoGateway(t *testing.T) {
	svc, orders := newSubscriptionFixture(nil)

	_, err := svc.CreateOrder(context.Background(), testOwner, models.CreatePaymentOrderRequest{
		Plan:         models.PlanStarter,
		BillingCycle: models.BillingMonthly,
	})

	assert.ErrorIs(t, err, gateway.ErrMissingCredentials)
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubscriptionService_CreateOrder_UnknownPlan(t *testing.T) {
	gw := new(MockGateway)
	svc, _ := newSubscriptionFixture(gw)

	_, err := svc.CreateOrder(context.Background(), testOwner, models.CreatePaymentOrderRequest{
		Plan:         "enterprise",
		BillingCycle: models.BillingMonthly,
	})

	assert.True(t, errors.Is(err, ErrUnknownPlan))
	gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}
