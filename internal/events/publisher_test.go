package events

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"invoicing-service/internal/models"
)

func TestNilPublisherDropsEvents(t *testing.T) {
	var p *Publisher

	assert.NotPanics(t, func() {
		p.PublishInvoiceCreated(context.Background(), &models.Invoice{OwnerID: "u1"})
		p.PublishInvoiceStatusChanged(context.Background(), &models.Invoice{}, models.InvoiceStatusDraft)
		p.PublishNumberAllocated(context.Background(), "u1", "d1", "INV/2024-2025/0001")
		p.PublishCreditNoteCreated(context.Background(), &models.CreditNote{})
		p.PublishPaymentOrderCreated(context.Background(), &models.PaymentOrder{})
		p.Close()
	})
}

func TestSubjectsFallUnderStream(t *testing.T) {
	for _, subject := range []string{InvoiceCreated, InvoiceStatusChanged, InvoiceNumberAllocated, CreditNoteCreated, PaymentOrderCreated} {
		assert.True(t, strings.HasPrefix(subject, "invoice."), subject)
	}
}
