package services

import (
	"bytes"
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"invoicing-service/internal/events"
	"invoicing-service/internal/gst"
	"invoicing-service/internal/models"
	"invoicing-service/internal/numbering"
	"invoicing-service/internal/repository"
)

// InvoiceService manages issued invoices
type InvoiceService struct {
	invoices  repository.InvoiceRepositoryInterface
	companies repository.CompanyRepositoryInterface
	pdf       *PDFRenderer
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewInvoiceService creates a new InvoiceService. publisher may be nil.
func NewInvoiceService(
	invoices repository.InvoiceRepositoryInterface,
	companies repository.CompanyRepositoryInterface,
	pdf *PDFRenderer,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *InvoiceService {
	if logger == nil {
		logger = logrus.New()
	}
	return &InvoiceService{
		invoices:  invoices,
		companies: companies,
		pdf:       pdf,
		publisher: publisher,
		logger:    logger.WithField("component", "invoice-service"),
	}
}

// List returns a page of the owner's invoices
func (s *InvoiceService) List(ctx context.Context, ownerID string, filter models.InvoiceFilter) (*models.ListResponse, error) {
	filter.Normalize()
	invoices, total, err := s.invoices.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	return &models.ListResponse{Data: invoices, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Get returns one invoice with its items
func (s *InvoiceService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Invoice, error) {
	return s.invoices.GetByID(ctx, ownerID, id)
}

// UpdateStatus moves an invoice through draft → pending → paid, or cancels it
func (s *InvoiceService) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, to models.InvoiceStatus) (*models.Invoice, error) {
	invoice, from, err := s.invoices.UpdateStatus(ctx, ownerID, id, to)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"invoiceId": id,
		"from":      from,
		"to":        to,
	}).Info("Invoice status changed")
	s.publisher.PublishInvoiceStatusChanged(ctx, invoice, from)
	return invoice, nil
}

// Delete removes a draft or cancelled invoice
func (s *InvoiceService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.invoices.Delete(ctx, ownerID, id)
}

// RenderPDF renders the invoice with the owner's company letterhead
func (s *InvoiceService) RenderPDF(ctx context.Context, ownerID string, id uuid.UUID) (*models.Invoice, []byte, error) {
	invoice, err := s.invoices.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	company, err := s.companies.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, numbering.ErrCompanyMissing
		}
		return nil, nil, err
	}

	data, err := s.pdf.RenderInvoice(invoice, company)
	if err != nil {
		return nil, nil, err
	}
	return invoice, data, nil
}

// ExportRegister builds the invoice register workbook for a financial year
func (s *InvoiceService) ExportRegister(ctx context.Context, ownerID, financialYear string) (*bytes.Buffer, error) {
	if financialYear != "" {
		if _, _, err := gst.FinancialYearBounds(financialYear, nil); err != nil {
			return nil, err
		}
	}
	invoices, err := s.invoices.ListForExport(ctx, ownerID, financialYear)
	if err != nil {
		return nil, err
	}
	return InvoiceRegister(invoices)
}
