package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicing-service/internal/gst"
	"invoicing-service/internal/models"
)

// TaxHandler previews GST for a set of lines without touching storage
type TaxHandler struct{}

// NewTaxHandler creates a new tax handler
func NewTaxHandler() *TaxHandler {
	return &TaxHandler{}
}

// CalculateTax handles POST /api/v1/tax/calculate
// @Summary Calculate GST for line items
// @Description Same states resolve to CGST+SGST, different states to IGST. An empty state falls back to CGST+SGST.
// @Tags tax
// @Accept json
// @Produce json
// @Param request body models.CalculateTaxRequest true "Lines and states"
// @Success 200 {object} gst.Totals
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /tax/calculate [post]
func (h *TaxHandler) CalculateTax(c *gin.Context) {
	var req models.CalculateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	items := make([]gst.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, item.LineItem().TaxItem())
	}

	c.JSON(http.StatusOK, gst.Calculate(items, req.BuyerState, req.SellerState).Rounded())
}
