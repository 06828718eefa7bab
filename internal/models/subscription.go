package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Plan is a paid subscription tier
type Plan string

const (
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
)

// BillingCycle is how often a plan is billed
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// GatewayType identifies the payment gateway that issued an order
type GatewayType string

const (
	GatewayRazorpay GatewayType = "razorpay"
	GatewayStripe   GatewayType = "stripe"
)

// PaymentOrderStatus tracks a gateway order
type PaymentOrderStatus string

const (
	PaymentOrderCreated PaymentOrderStatus = "created"
	PaymentOrderFailed  PaymentOrderStatus = "failed"
)

// PaymentOrder records a subscription order created at the gateway
type PaymentOrder struct {
	ID             uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID        string             `json:"ownerId" gorm:"type:varchar(255);not null;index:idx_payment_orders_owner"`
	Plan           Plan               `json:"plan" gorm:"type:varchar(50);not null"`
	BillingCycle   BillingCycle       `json:"billingCycle" gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal    `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency       string             `json:"currency" gorm:"type:varchar(3);not null;default:'INR'"`
	Gateway        GatewayType        `json:"gateway" gorm:"type:varchar(20);not null"`
	GatewayOrderID string             `json:"gatewayOrderId" gorm:"type:varchar(255);index"`
	Status         PaymentOrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	FailureReason  string             `json:"failureReason,omitempty" gorm:"type:text"`
	Notes          datatypes.JSON     `json:"notes,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
