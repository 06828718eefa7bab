package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoicing-service/internal/gateway"
	"invoicing-service/internal/gst"
	"invoicing-service/internal/middleware"
	"invoicing-service/internal/numbering"
	"invoicing-service/internal/repository"
	"invoicing-service/internal/services"
	"invoicing-service/internal/validation"
)

// errorStatus maps domain errors onto HTTP statuses. Anything not listed is
// a 500.
var errorStatus = []struct {
	err    error
	status int
	label  string
}{
	{repository.ErrNotFound, http.StatusNotFound, "Not found"},
	{services.ErrDraftNotFound, http.StatusNotFound, "Draft not found"},

	{repository.ErrInvalidTransition, http.StatusConflict, "Invalid status transition"},
	{repository.ErrNotDeletable, http.StatusConflict, "Invoice cannot be deleted"},
	{services.ErrDraftBusy, http.StatusConflict, "Draft is busy"},
	{numbering.ErrAllocationInProgress, http.StatusConflict, "Number allocation in progress"},
	{services.ErrInvoiceNotCreditable, http.StatusConflict, "Invoice cannot be credited"},
	{services.ErrCreditExceedsInvoice, http.StatusConflict, "Credit exceeds invoice"},
	{services.ErrAlreadySubmitted, http.StatusConflict, "Invoice already submitted"},
	{repository.ErrDuplicate, http.StatusConflict, "Already exists"},

	{numbering.ErrCompanyMissing, http.StatusUnprocessableEntity, "Company profile required"},
	{numbering.ErrFinancialYearMissing, http.StatusUnprocessableEntity, "Financial year required"},
	{services.ErrDraftEmpty, http.StatusUnprocessableEntity, "Invoice has no items"},
	{services.ErrCustomerRequired, http.StatusUnprocessableEntity, "Customer required"},

	{services.ErrInvalidDate, http.StatusBadRequest, "Invalid date"},
	{services.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{services.ErrItemIndex, http.StatusBadRequest, "Invalid line item"},
	{services.ErrUnknownInvoiceItem, http.StatusBadRequest, "Invalid line item"},
	{services.ErrGSTINStateMismatch, http.StatusBadRequest, "GSTIN does not match state"},
	{services.ErrUnknownPlan, http.StatusBadRequest, "Unknown plan"},
	{services.ErrInvalidImportFile, http.StatusBadRequest, "Invalid import file"},
	{gst.ErrInvalidFinancialYear, http.StatusBadRequest, "Invalid financial year"},

	{numbering.ErrSequenceUnavailable, http.StatusServiceUnavailable, "Numbering unavailable"},
	{gateway.ErrMissingCredentials, http.StatusServiceUnavailable, "Payment gateway not configured"},
	{gateway.ErrPaymentOrderFailed, http.StatusBadGateway, "Payment gateway error"},
}

// respondError writes the error in the service's {"error","message"} shape
func respondError(c *gin.Context, err error, fallback string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{
				"error":   e.label,
				"message": err.Error(),
			})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   fallback,
		"message": err.Error(),
	})
}

// respondBindError reports a request that failed binding or validation
func respondBindError(c *gin.Context, err error) {
	body := gin.H{
		"error":   "Invalid request",
		"message": err.Error(),
	}
	if fields := validation.ProcessValidationErrors(err); fields != nil {
		body["details"] = fields
	}
	c.JSON(http.StatusBadRequest, body)
}

// parseID reads a uuid path parameter, writing a 400 when it is malformed
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid ID",
			"message": err.Error(),
		})
		return uuid.Nil, false
	}
	return id, true
}

func ownerID(c *gin.Context) string {
	return middleware.GetOwnerID(c)
}
