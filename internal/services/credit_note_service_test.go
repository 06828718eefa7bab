package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicing-service/internal/gst"
	"invoicing-service/internal/models"
	"invoicing-service/internal/numbering"
	"invoicing-service/internal/repository"
)

func newCreditNoteFixture() (*CreditNoteService, *MockCreditNoteRepository, *MockInvoiceRepository, *MockCompanyRepository) {
	notes := new(MockCreditNoteRepository)
	invoices := new(MockInvoiceRepository)
	companies := new(MockCompanyRepository)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	svc := NewCreditNoteService(notes, invoices, companies, nil, logger)
	svc.now = func() time.Time { return time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC) }
	return svc, notes, invoices, companies
}

func createTestInvoice(status models.InvoiceStatus) *models.Invoice {
	return &models.Invoice{
		ID:            uuid.New(),
		OwnerID:       testOwner,
		CustomerID:    uuid.New(),
		InvoiceNumber: "INV/2024-2025/0001",
		Status:        status,
		SellerState:   "Karnataka",
		BuyerState:    "Maharashtra",
		Items: []models.InvoiceItem{
			{ID: uuid.New(), Position: 1, ProductName: "Desk", Quantity: 2, UnitPrice: 5000, GSTRate: 18},
			{ID: uuid.New(), Position: 2, ProductName: "Lamp", Quantity: 4, UnitPrice: 250, GSTRate: 12},
		},
	}
}

func TestCreditNoteService_Create(t *testing.T) {
	svc, notes, invoices, companies := newCreditNoteFixture()
	invoice := createTestInvoice(models.InvoiceStatusPaid)
	company := createTestCompany("Karnataka")
	invoices.On("GetByID", mock.Anything, testOwner, invoice.ID).Return(invoice, nil)
	companies.On("GetByOwner", mock.Anything, testOwner).Return(company, nil)

	var check repository.CreditCheck
	notes.On("Create", mock.Anything, mock.AnythingOfType("*models.CreditNote"), "CN", mock.Anything).
		Run(func(args mock.Arguments) {
			check = args.Get(3).(repository.CreditCheck)
			args.Get(1).(*models.CreditNote).CreditNoteNumber = "CN/2024-2025/0001"
		}).Return(nil)

	note, err := svc.Create(context.Background(), testOwner, models.CreateCreditNoteRequest{
		InvoiceID: invoice.ID,
		Reason:    "Damaged in transit",
		Items:     []models.CreditNoteLineRequest{{InvoiceItemID: invoice.Items[0].ID, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, "CN/2024-2025/0001", note.CreditNoteNumber)
	assert.Equal(t, "2024-2025", note.FinancialYear)
	assert.Equal(t, gst.InterState, note.SupplyType)
	assert.Equal(t, "5000", note.Subtotal.String())
	assert.Equal(t, "900", note.IGST.String())
	assert.Equal(t, "5900", note.Total.String())
	require.Len(t, note.Items, 1)
	assert.Equal(t, invoice.Items[0].ID, note.Items[0].InvoiceItemID)

	// The transactional re-check sees notes issued concurrently
	require.NotNil(t, check)
	assert.NoError(t, check(map[uuid.UUID]decimal.Decimal{invoice.Items[0].ID: d("1")}))
	assert.ErrorIs(t, check(map[uuid.UUID]decimal.Decimal{invoice.Items[0].ID: d("1.5")}), ErrCreditExceedsInvoice)
}

func TestCreditNoteService_Create_Rejects(t *testing.T) {
	draftInvoice := createTestInvoice(models.InvoiceStatusDraft)
	pending := createTestInvoice(models.InvoiceStatusPending)

	tests := []struct {
		name    string
		invoice *models.Invoice
		items   func(inv *models.Invoice) []models.CreditNoteLineRequest
		wantErr error
	}{
		{
			name:    "draft invoice",
			invoice: draftInvoice,
			items: func(inv *models.Invoice) []models.CreditNoteLineRequest {
				return []models.CreditNoteLineRequest{{InvoiceItemID: inv.Items[0].ID, Quantity: 1}}
			},
			wantErr: ErrInvoiceNotCreditable,
		},
		{
			name:    "unknown line",
			invoice: pending,
			items: func(inv *models.Invoice) []models.CreditNoteLineRequest {
				return []models.CreditNoteLineRequest{{InvoiceItemID: uuid.New(), Quantity: 1}}
			},
			wantErr: ErrUnknownInvoiceItem,
		},
		{
			name:    "more than invoiced across lines",
			invoice: pending,
			items: func(inv *models.Invoice) []models.CreditNoteLineRequest {
				return []models.CreditNoteLineRequest{
					{InvoiceItemID: inv.Items[1].ID, Quantity: 3},
					{InvoiceItemID: inv.Items[1].ID, Quantity: 2},
				}
			},
			wantErr: ErrCreditExceedsInvoice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, notes, invoices, companies := newCreditNoteFixture()
			invoices.On("GetByID", mock.Anything, testOwner, tt.invoice.ID).Return(tt.invoice, nil)
			companies.On("GetByOwner", mock.Anything, testOwner).Return(createTestCompany("Karnataka"), nil)

			_, err := svc.Create(context.Background(), testOwner, models.CreateCreditNoteRequest{
				InvoiceID: tt.invoice.ID,
				Reason:    "Return",
				Items:     tt.items(tt.invoice),
			})

			assert.ErrorIs(t, err, tt.wantErr)
			notes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreditNoteService_Create_CompanyMissing(t *testing.T) {
	svc, _, invoices, companies := newCreditNoteFixture()
	invoice := createTestInvoice(models.InvoiceStatusPending)
	invoices.On("GetByID", mock.Anything, testOwner, invoice.ID).Return(invoice, nil)
	companies.On("GetByOwner", mock.Anything, testOwner).Return(nil, repository.ErrNotFound)

	_, err := svc.Create(context.Background(), testOwner, models.CreateCreditNoteRequest{
		InvoiceID: invoice.ID,
		Reason:    "Return",
		Items:     []models.CreditNoteLineRequest{{InvoiceItemID: invoice.Items[0].ID, Quantity: 1}},
	})

	assert.ErrorIs(t, err, numbering.ErrCompanyMissing)
}

func TestCreditNoteService_Create_FractionalRemainder(t *testing.T) {
	svc, notes, invoices, companies := newCreditNoteFixture()
	invoice := createTestInvoice(models.InvoiceStatusPaid)
	invoice.Items[0].Quantity = 0.3
	invoices.On("GetByID", mock.Anything, testOwner, invoice.ID).Return(invoice, nil)
	companies.On("GetByOwner", mock.Anything, testOwner).Return(createTestCompany("Karnataka"), nil)

	var check repository.CreditCheck
	notes.On("Create", mock.Anything, mock.AnythingOfType("*models.CreditNote"), "CN", mock.Anything).
		Run(func(args mock.Arguments) {
			check = args.Get(3).(repository.CreditCheck)
		}).Return(nil)

	_, err := svc.Create(context.Background(), testOwner, models.CreateCreditNoteRequest{
		InvoiceID: invoice.ID,
		Reason:    "Partial return",
		Items: []models.CreditNoteLineRequest{
			{InvoiceItemID: invoice.Items[0].ID, Quantity: 0.1},
			{InvoiceItemID: invoice.Items[0].ID, Quantity: 0.2},
		},
	})
	require.NoError(t, err)

	// 0.1 already credited leaves exactly 0.2
	require.NotNil(t, check)
	_, err = svc.Create(context.Background(), testOwner, models.CreateCreditNoteRequest{
		InvoiceID: invoice.ID,
		Reason:    "Partial return",
		Items:     []models.CreditNoteLineRequest{{InvoiceItemID: invoice.Items[0].ID, Quantity: 0.2}},
	})
	require.NoError(t, err)
	assert.NoError(t, check(map[uuid.UUID]decimal.Decimal{invoice.Items[0].ID: d("0.1")}))
	assert.ErrorIs(t, check(map[uuid.UUID]decimal.Decimal{invoice.Items[0].ID: d("0.101")}), ErrCreditExceedsInvoice)
}
