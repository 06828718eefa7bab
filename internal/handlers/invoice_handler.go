package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"invoicing-service/internal/models"
	"invoicing-service/internal/services"
)

// InvoiceHandler serves saved invoices and their credit notes
type InvoiceHandler struct {
	invoices    *services.InvoiceService
	creditNotes *services.CreditNoteService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices *services.InvoiceService, creditNotes *services.CreditNoteService) *InvoiceHandler {
	return &InvoiceHandler{
		invoices:    invoices,
		creditNotes: creditNotes,
	}
}

// ListInvoices handles GET /api/v1/invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Invoice number or customer name"
// @Param status query string false "draft, pending, paid or cancelled"
// @Param financialYear query string false "e.g. 2024-2025"
// @Param customerId query string false "Customer ID"
// @Success 200 {object} models.ListResponse
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filter models.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.invoices.List(c.Request.Context(), ownerID(c), filter)
	if err != nil {
		respondError(c, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetInvoice handles GET /api/v1/invoices/:id
// @Summary Get invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoices.Get(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to get invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateStatus handles PUT /api/v1/invoices/:id/status
// @Summary Change invoice status
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param status body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.Invoice
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := h.invoices.UpdateStatus(c.Request.Context(), ownerID(c), id, req.Status)
	if err != nil {
		respondError(c, err, "Failed to update invoice status")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /api/v1/invoices/:id
// @Summary Delete a draft or cancelled invoice
// @Tags invoices
// @Param id path string true "Invoice ID"
// @Success 204
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), ownerID(c), id); err != nil {
		respondError(c, err, "Failed to delete invoice")
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadPDF handles GET /api/v1/invoices/:id/pdf
// @Summary Download the invoice as PDF
// @Tags invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	invoice, data, err := h.invoices.RenderPDF(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to render invoice")
		return
	}
	sendAttachment(c, pdfFilename(invoice), "application/pdf", data)
}

// ExportInvoices handles GET /api/v1/invoices/export
// @Summary Export the invoice register as xlsx
// @Tags invoices
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param financialYear query string false "e.g. 2024-2025; all years when empty"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /invoices/export [get]
func (h *InvoiceHandler) ExportInvoices(c *gin.Context) {
	fy := c.Query("financialYear")

	buf, err := h.invoices.ExportRegister(c.Request.Context(), ownerID(c), fy)
	if err != nil {
		respondError(c, err, "Failed to export invoices")
		return
	}

	name := "invoices.xlsx"
	if fy != "" {
		name = fmt.Sprintf("invoices_%s.xlsx", fy)
	}
	sendAttachment(c, name, xlsxContentType, buf.Bytes())
}

// ==================== Credit notes ====================

// CreateCreditNote handles POST /api/v1/credit-notes
// @Summary Issue a credit note against an invoice
// @Tags credit-notes
// @Accept json
// @Produce json
// @Param note body models.CreateCreditNoteRequest true "Credit note"
// @Success 201 {object} models.CreditNote
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /credit-notes [post]
func (h *InvoiceHandler) CreateCreditNote(c *gin.Context) {
	var req models.CreateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	note, err := h.creditNotes.Create(c.Request.Context(), ownerID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create credit note")
		return
	}
	c.JSON(http.StatusCreated, note)
}

// ListCreditNotes handles GET /api/v1/credit-notes
// @Summary List credit notes
// @Tags credit-notes
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.ListResponse
// @Security BearerAuth
// @Router /credit-notes [get]
func (h *InvoiceHandler) ListCreditNotes(c *gin.Context) {
	var filter models.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.creditNotes.List(c.Request.Context(), ownerID(c), filter)
	if err != nil {
		respondError(c, err, "Failed to list credit notes")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCreditNote handles GET /api/v1/credit-notes/:id
// @Summary Get credit note
// @Tags credit-notes
// @Produce json
// @Param id path string true "Credit note ID"
// @Success 200 {object} models.CreditNote
// @Security BearerAuth
// @Router /credit-notes/{id} [get]
func (h *InvoiceHandler) GetCreditNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	note, err := h.creditNotes.Get(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to get credit note")
		return
	}
	c.JSON(http.StatusOK, note)
}

// pdfFilename turns "INV/2024-2025/0001" into "INV-2024-2025-0001.pdf"
func pdfFilename(invoice *models.Invoice) string {
	if invoice.InvoiceNumber == "" {
		return fmt.Sprintf("invoice-%s.pdf", invoice.ID.String()[:8])
	}
	return strings.ReplaceAll(invoice.InvoiceNumber, "/", "-") + ".pdf"
}
