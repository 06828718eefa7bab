package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"invoicing-service/internal/events"
	"invoicing-service/internal/gst"
	"invoicing-service/internal/models"
	"invoicing-service/internal/numbering"
	"invoicing-service/internal/repository"
)

var (
	ErrInvoiceNotCreditable = errors.New("only pending or paid invoices can be credited")
	ErrUnknownInvoiceItem   = errors.New("credit note line does not belong to the invoice")
	ErrCreditExceedsInvoice = errors.New("credited quantity exceeds invoiced quantity")
)

// CreditNoteService issues credit notes against invoices
type CreditNoteService struct {
	notes     repository.CreditNoteRepositoryInterface
	invoices  repository.InvoiceRepositoryInterface
	companies repository.CompanyRepositoryInterface
	publisher *events.Publisher
	logger    *logrus.Entry
	now       func() time.Time
}

// NewCreditNoteService creates a new CreditNoteService. publisher may be nil.
func NewCreditNoteService(
	notes repository.CreditNoteRepositoryInterface,
	invoices repository.InvoiceRepositoryInterface,
	companies repository.CompanyRepositoryInterface,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *CreditNoteService {
	if logger == nil {
		logger = logrus.New()
	}
	return &CreditNoteService{
		notes:     notes,
		invoices:  invoices,
		companies: companies,
		publisher: publisher,
		logger:    logger.WithField("component", "credit-note-service"),
		now:       time.Now,
	}
}

// Create issues a credit note. Tax is recomputed with the buyer and seller
// states recorded on the invoice, not the current profiles.
func (s *CreditNoteService) Create(ctx context.Context, ownerID string, req models.CreateCreditNoteRequest) (*models.CreditNote, error) {
	noteDate := s.now()
	if req.CreditNoteDate != "" {
		d, err := parseDate(req.CreditNoteDate)
		if err != nil {
			return nil, err
		}
		noteDate = d
	}
	noteDate = truncateDate(noteDate)

	invoice, err := s.invoices.GetByID(ctx, ownerID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusPending && invoice.Status != models.InvoiceStatusPaid {
		return nil, ErrInvoiceNotCreditable
	}

	company, err := s.companies.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, numbering.ErrCompanyMissing
		}
		return nil, err
	}

	invoiceItems := make(map[uuid.UUID]models.InvoiceItem, len(invoice.Items))
	for _, item := range invoice.Items {
		invoiceItems[item.ID] = item
	}

	// Quantities are summed as decimals to match the decimal(12,3) columns
	requested := make(map[uuid.UUID]decimal.Decimal)
	taxItems := make([]gst.Item, 0, len(req.Items))
	lines := make([]models.InvoiceItem, 0, len(req.Items))
	for _, line := range req.Items {
		source, ok := invoiceItems[line.InvoiceItemID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownInvoiceItem, line.InvoiceItemID)
		}
		requested[line.InvoiceItemID] = requested[line.InvoiceItemID].Add(decimal.NewFromFloat(line.Quantity))
		if requested[line.InvoiceItemID].GreaterThan(decimal.NewFromFloat(source.Quantity)) {
			return nil, fmt.Errorf("%w: %s", ErrCreditExceedsInvoice, source.ProductName)
		}
		source.Quantity = line.Quantity
		lines = append(lines, source)
		taxItems = append(taxItems, source.LineItem().TaxItem())
	}

	totals := gst.Calculate(taxItems, invoice.BuyerState, invoice.SellerState).Rounded()

	note := &models.CreditNote{
		OwnerID:        ownerID,
		CompanyID:      company.ID,
		InvoiceID:      invoice.ID,
		CustomerID:     invoice.CustomerID,
		CreditNoteDate: noteDate,
		FinancialYear:  gst.FinancialYear(noteDate),
		Reason:         req.Reason,
		Status:         models.CreditNoteStatusIssued,
		Items:          make([]models.CreditNoteItem, 0, len(lines)),
	}
	note.ApplyTotals(totals)
	for i, source := range lines {
		l := totals.Lines[i]
		note.Items = append(note.Items, models.CreditNoteItem{
			InvoiceItemID: source.ID,
			ProductName:   source.ProductName,
			HSNCode:       source.HSNCode,
			Quantity:      source.Quantity,
			UnitPrice:     source.UnitPrice,
			GSTRate:       source.GSTRate,
			Unit:          source.Unit,
			TaxableAmount: l.Taxable,
			CGST:          l.CGST,
			SGST:          l.SGST,
			IGST:          l.IGST,
			LineTotal:     l.Total,
		})
	}

	// Re-checked inside the transaction against credit notes issued since
	check := func(credited map[uuid.UUID]decimal.Decimal) error {
		for itemID, qty := range requested {
			if credited[itemID].Add(qty).GreaterThan(decimal.NewFromFloat(invoiceItems[itemID].Quantity)) {
				return fmt.Errorf("%w: %s", ErrCreditExceedsInvoice, invoiceItems[itemID].ProductName)
			}
		}
		return nil
	}

	prefix := company.NumberPrefix(models.DocumentKindCreditNote)
	if err := s.notes.Create(ctx, note, prefix, check); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"creditNoteId": note.ID,
		"number":       note.CreditNoteNumber,
		"invoiceId":    invoice.ID,
	}).Info("Credit note issued")
	s.publisher.PublishCreditNoteCreated(ctx, note)
	return note, nil
}

// Get returns one credit note with its items
func (s *CreditNoteService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.CreditNote, error) {
	return s.notes.GetByID(ctx, ownerID, id)
}

// List returns a page of the owner's credit notes
func (s *CreditNoteService) List(ctx context.Context, ownerID string, filter models.ListFilter) (*models.ListResponse, error) {
	filter.Normalize()
	notes, total, err := s.notes.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	return &models.ListResponse{Data: notes, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
