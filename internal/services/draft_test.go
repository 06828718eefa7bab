package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicing-service/internal/models"
	"invoicing-service/internal/numbering"
)

func TestInvoiceDraft_SurvivesJSONRoundTrip(t *testing.T) {
	seq := new(MockInvoiceRepository)
	company := createTestCompany("Karnataka")
	seq.On("NextInvoiceNumber", mock.Anything, company.ID, "2024-2025", "INV").Return("INV/2024-2025/0009", nil).Once()

	draft := NewInvoiceDraft(testOwner, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC))
	draft.attach(seq)
	draft.SetCompany(company)
	draft.AddItem(models.LineItem{ProductName: "Lamp", Quantity: 2, UnitPrice: 250, GSTRate: 12})
	_, err := draft.AllocateNumber(context.Background())
	require.NoError(t, err)

	data, err := json.Marshal(draft)
	require.NoError(t, err)
	var restored InvoiceDraft
	require.NoError(t, json.Unmarshal(data, &restored))
	restored.attach(seq)

	number, err := restored.AllocateNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV/2024-2025/0009", number)
	assert.True(t, draft.Totals.Total.Equal(restored.Totals.Total))
	seq.AssertNumberOfCalls(t, "NextInvoiceNumber", 1)
}

func TestInvoiceDraft_CompanyChangeResetsNumber(t *testing.T) {
	seq := new(MockInvoiceRepository)
	first := createTestCompany("Karnataka")
	second := createTestCompany("Karnataka")
	seq.On("NextInvoiceNumber", mock.Anything, first.ID, "2024-2025", "INV").Return("INV/2024-2025/0001", nil)

	draft := NewInvoiceDraft(testOwner, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	draft.attach(seq)
	draft.SetCompany(first)
	_, err := draft.AllocateNumber(context.Background())
	require.NoError(t, err)

	draft.SetCompany(first)
	assert.Equal(t, "INV/2024-2025/0001", draft.InvoiceNumber)

	draft.SetCompany(second)
	assert.Empty(t, draft.InvoiceNumber)
	assert.Equal(t, numbering.Unallocated, draft.Numbering.State)
}

func TestInvoiceDraft_ToInvoiceRoundsLines(t *testing.T) {
	draft := NewInvoiceDraft(testOwner, time.Date(2024, time.April, 1, 10, 0, 0, 0, time.UTC))
	customerID := uuid.New()
	draft.CustomerID = &customerID
	draft.SellerState = "Delhi"
	draft.BuyerState = "Delhi"
	draft.AddItem(models.LineItem{ProductName: "Tea", Quantity: 1, UnitPrice: 10.05, GSTRate: 5})

	invoice := draft.ToInvoice()

	assert.Equal(t, "2024-2025", invoice.FinancialYear)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), invoice.InvoiceDate)
	require.Len(t, invoice.Items, 1)
	item := invoice.Items[0]
	assert.True(t, item.CGST.Equal(item.SGST))
	assert.True(t, invoice.Total.Equal(invoice.Subtotal.Add(invoice.CGST).Add(invoice.SGST).Add(invoice.IGST)))
	assert.Equal(t, customerID, invoice.CustomerID)
}
