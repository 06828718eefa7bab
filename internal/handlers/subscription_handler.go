package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicing-service/internal/models"
	"invoicing-service/internal/services"
)

// SubscriptionHandler opens plan payments at the configured gateway
type SubscriptionHandler struct {
	subscriptions *services.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// CreateOrder handles POST /api/v1/subscriptions/orders
// @Summary Create a subscription payment order
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param order body models.CreatePaymentOrderRequest true "Plan and billing cycle"
// @Success 201 {object} services.PaymentOrderResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Security BearerAuth
// @Router /subscriptions/orders [post]
func (h *SubscriptionHandler) CreateOrder(c *gin.Context) {
	var req models.CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.subscriptions.CreateOrder(c.Request.Context(), ownerID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create payment order")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListOrders handles GET /api/v1/subscriptions/orders
// @Summary List subscription payment orders
// @Tags subscriptions
// @Produce json
// @Success 200 {array} models.PaymentOrder
// @Security BearerAuth
// @Router /subscriptions/orders [get]
func (h *SubscriptionHandler) ListOrders(c *gin.Context) {
	orders, err := h.subscriptions.ListOrders(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err, "Failed to list payment orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}
