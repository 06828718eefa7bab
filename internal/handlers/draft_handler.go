package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invoicing-service/internal/models"
	"invoicing-service/internal/services"
)

// DraftHandler serves the invoice editor
type DraftHandler struct {
	drafts *services.DraftService
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(drafts *services.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// CreateDraft handles POST /api/v1/drafts
// @Summary Open an invoice draft
// @Tags drafts
// @Accept json
// @Produce json
// @Param draft body models.CreateDraftRequest false "Initial customer and date"
// @Success 201 {object} services.InvoiceDraft
// @Security BearerAuth
// @Router /drafts [post]
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	var req models.CreateDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	draft, err := h.drafts.Create(c.Request.Context(), ownerID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create draft")
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// GetDraft handles GET /api/v1/drafts/:id
// @Summary Get an invoice draft
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} services.InvoiceDraft
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /drafts/{id} [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	draft, err := h.drafts.Get(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to get draft")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// DiscardDraft handles DELETE /api/v1/drafts/:id
// @Summary Discard an invoice draft
// @Tags drafts
// @Param id path string true "Draft ID"
// @Success 204
// @Security BearerAuth
// @Router /drafts/{id} [delete]
func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.drafts.Discard(c.Request.Context(), ownerID(c), id); err != nil {
		respondError(c, err, "Failed to discard draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddItem handles POST /api/v1/drafts/:id/items
// @Summary Add a line item
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param item body models.LineItemRequest true "Line item"
// @Success 200 {object} services.InvoiceDraft
// @Security BearerAuth
// @Router /drafts/{id}/items [post]
func (h *DraftHandler) AddItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.drafts.AddItem(c.Request.Context(), ownerID(c), id, req)
	if err != nil {
		respondError(c, err, "Failed to add item")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// UpdateItem handles PATCH /api/v1/drafts/:id/items/:index
// @Summary Change fields of a line item
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param index path int true "Zero based line index"
// @Param item body models.UpdateLineItemRequest true "Fields to change"
// @Success 200 {object} services.InvoiceDraft
// @Security BearerAuth
// @Router /drafts/{id}/items/{index} [patch]
func (h *DraftHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	var req models.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.drafts.UpdateItem(c.Request.Context(), ownerID(c), id, index, req)
	if err != nil {
		respondError(c, err, "Failed to update item")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// RemoveItem handles DELETE /api/v1/drafts/:id/items/:index
// @Summary Remove a line item
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Param index path int true "Zero based line index"
// @Success 200 {object} services.InvoiceDraft
// @Security BearerAuth
// @Router /drafts/{id}/items/{index} [delete]
func (h *DraftHandler) RemoveItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}

	draft, err := h.drafts.RemoveItem(c.Request.Context(), ownerID(c), id, index)
	if err != nil {
		respondError(c, err, "Failed to remove item")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SelectProduct handles PUT /api/v1/drafts/:id/items/:index/product
// @Summary Fill a line from a catalog product
// @Description An index equal to the number of lines appends a new line.
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param index path int true "Zero based line index"
// @Param product body models.SelectProductRequest true "Product"
// @Success 200 {object} services.InvoiceDraft
// @Security BearerAuth
// @Router /drafts/{id}/items/{index}/product [put]
func (h *DraftHandler) SelectProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	var req models.SelectProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.drafts.SelectProduct(c.Request.Context(), ownerID(c), id, index, req.ProductID)
	if err != nil {
		respondError(c, err, "Failed to select product")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SetCustomer handles PUT /api/v1/drafts/:id/customer
// @Summary Select the buyer
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param customer body models.SetCustomerRequest true "Customer"
// @Success 200 {object} services.InvoiceDraft
// @Security BearerAuth
// @Router /drafts/{id}/customer [put]
func (h *DraftHandler) SetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.drafts.SetCustomer(c.Request.Context(), ownerID(c), id, req.CustomerID)
	if err != nil {
		respondError(c, err, "Failed to set customer")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// RefreshCompany handles POST /api/v1/drafts/:id/company
// @Summary Reload the seller from the company profile
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} services.InvoiceDraft
// @Security BearerAuth
// @Router /drafts/{id}/company [post]
func (h *DraftHandler) RefreshCompany(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	draft, err := h.drafts.RefreshCompany(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to refresh company")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// UpdateDetails handles PATCH /api/v1/drafts/:id
// @Summary Change draft dates, notes or status
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param details body models.UpdateDraftDetailsRequest true "Fields to change"
// @Success 200 {object} services.InvoiceDraft
// @Security BearerAuth
// @Router /drafts/{id} [patch]
func (h *DraftHandler) UpdateDetails(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateDraftDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.drafts.UpdateDetails(c.Request.Context(), ownerID(c), id, req)
	if err != nil {
		respondError(c, err, "Failed to update draft")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// AllocateNumber handles POST /api/v1/drafts/:id/number
// @Summary Allocate the invoice number
// @Description Idempotent while the company and financial year are unchanged.
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} services.InvoiceDraft
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /drafts/{id}/number [post]
func (h *DraftHandler) AllocateNumber(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	draft, err := h.drafts.AllocateNumber(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to allocate invoice number")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SubmitDraft handles POST /api/v1/drafts/:id/submit
// @Summary Save the draft as an invoice
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 201 {object} models.Invoice
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /drafts/{id}/submit [post]
func (h *DraftHandler) SubmitDraft(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.drafts.Submit(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to save invoice")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid line index",
			"message": "index must be a non-negative integer",
		})
		return 0, false
	}
	return index, true
}
