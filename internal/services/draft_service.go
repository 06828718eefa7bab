package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"invoicing-service/internal/events"
	"invoicing-service/internal/models"
	"invoicing-service/internal/numbering"
	"invoicing-service/internal/repository"
)

var (
	ErrDraftEmpty       = errors.New("invoice must have at least one line item")
	ErrCustomerRequired = errors.New("invoice must have a customer")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidStatus    = errors.New("invalid draft status")
	ErrAlreadySubmitted = errors.New("an invoice with this number already exists")
)

// DraftService edits invoice drafts and turns them into invoices
type DraftService struct {
	store     DraftStore
	locker    DraftLocker
	companies repository.CompanyRepositoryInterface
	customers repository.CustomerRepositoryInterface
	products  repository.ProductRepositoryInterface
	invoices  repository.InvoiceRepositoryInterface
	publisher *events.Publisher
	logger    *logrus.Entry
	now       func() time.Time
}

// NewDraftService creates a new DraftService. publisher may be nil.
func NewDraftService(
	store DraftStore,
	locker DraftLocker,
	companies repository.CompanyRepositoryInterface,
	customers repository.CustomerRepositoryInterface,
	products repository.ProductRepositoryInterface,
	invoices repository.InvoiceRepositoryInterface,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *DraftService {
	if logger == nil {
		logger = logrus.New()
	}
	return &DraftService{
		store:     store,
		locker:    locker,
		companies: companies,
		customers: customers,
		products:  products,
		invoices:  invoices,
		publisher: publisher,
		logger:    logger.WithField("component", "draft-service"),
		now:       time.Now,
	}
}

// Create opens a new draft bound to the owner's company, if any
func (s *DraftService) Create(ctx context.Context, ownerID string, req models.CreateDraftRequest) (*InvoiceDraft, error) {
	invoiceDate := s.now()
	if req.InvoiceDate != "" {
		d, err := parseDate(req.InvoiceDate)
		if err != nil {
			return nil, err
		}
		invoiceDate = d
	}

	draft := NewInvoiceDraft(ownerID, invoiceDate)
	draft.attach(s.invoices)

	company, err := s.companies.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		draft.SetCompany(company)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if req.CustomerID != nil {
		customer, err := s.customers.GetByID(ctx, ownerID, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		draft.SetCustomer(customer)
	}

	if err := s.store.Save(ctx, draft); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"draftId": draft.ID, "ownerId": ownerID}).Info("Draft created")
	return draft, nil
}

// Get loads one of the owner's drafts
func (s *DraftService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*InvoiceDraft, error) {
	return s.load(ctx, ownerID, id)
}

// Discard deletes one of the owner's drafts
func (s *DraftService) Discard(ctx context.Context, ownerID string, id uuid.UUID) error {
	if _, err := s.load(ctx, ownerID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// AddItem appends a line to the draft
func (s *DraftService) AddItem(ctx context.Context, ownerID string, id uuid.UUID, req models.LineItemRequest) (*InvoiceDraft, error) {
	return s.mutate(ctx, ownerID, id, func(d *InvoiceDraft) error {
		d.AddItem(req.LineItem())
		return nil
	})
}

// UpdateItem changes fields of one line
func (s *DraftService) UpdateItem(ctx context.Context, ownerID string, id uuid.UUID, index int, req models.UpdateLineItemRequest) (*InvoiceDraft, error) {
	return s.mutate(ctx, ownerID, id, func(d *InvoiceDraft) error {
		return d.UpdateItem(index, req)
	})
}

// RemoveItem deletes one line
func (s *DraftService) RemoveItem(ctx context.Context, ownerID string, id uuid.UUID, index int) (*InvoiceDraft, error) {
	return s.mutate(ctx, ownerID, id, func(d *InvoiceDraft) error {
		return d.RemoveItem(index)
	})
}

// SelectProduct fills a line from the owner's catalog
func (s *DraftService) SelectProduct(ctx context.Context, ownerID string, id uuid.UUID, index int, productID uuid.UUID) (*InvoiceDraft, error) {
	product, err := s.products.GetByID(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, id, func(d *InvoiceDraft) error {
		return d.SelectProduct(index, product)
	})
}

// SetCustomer selects the draft's buyer
func (s *DraftService) SetCustomer(ctx context.Context, ownerID string, id uuid.UUID, customerID uuid.UUID) (*InvoiceDraft, error) {
	customer, err := s.customers.GetByID(ctx, ownerID, customerID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, id, func(d *InvoiceDraft) error {
		d.SetCustomer(customer)
		return nil
	})
}

// RefreshCompany re-reads the owner's company profile into the draft
func (s *DraftService) RefreshCompany(ctx context.Context, ownerID string, id uuid.UUID) (*InvoiceDraft, error) {
	company, err := s.companies.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, numbering.ErrCompanyMissing
		}
		return nil, err
	}
	return s.mutate(ctx, ownerID, id, func(d *InvoiceDraft) error {
		d.SetCompany(company)
		return nil
	})
}

// UpdateDetails changes the draft header
func (s *DraftService) UpdateDetails(ctx context.Context, ownerID string, id uuid.UUID, req models.UpdateDraftDetailsRequest) (*InvoiceDraft, error) {
	var invoiceDate, dueDate *time.Time
	if req.InvoiceDate != nil {
		d, err := parseDate(*req.InvoiceDate)
		if err != nil {
			return nil, err
		}
		invoiceDate = &d
	}
	if req.DueDate != nil && *req.DueDate != "" {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = &d
	}
	if req.Status != nil {
		switch *req.Status {
		case models.InvoiceStatusDraft, models.InvoiceStatusPending, models.InvoiceStatusPaid:
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *req.Status)
		}
	}

	return s.mutate(ctx, ownerID, id, func(d *InvoiceDraft) error {
		if invoiceDate != nil {
			d.SetInvoiceDate(*invoiceDate)
		}
		if req.DueDate != nil {
			d.DueDate = dueDate
		}
		if req.TermsAndConditions != nil {
			d.TermsAndConditions = *req.TermsAndConditions
		}
		if req.Notes != nil {
			d.Notes = *req.Notes
		}
		if req.Status != nil {
			d.Status = *req.Status
		}
		d.Recompute()
		return nil
	})
}

// AllocateNumber reserves the draft's invoice number. Repeated calls in the
// same financial year return the same number without touching the sequence.
func (s *DraftService) AllocateNumber(ctx context.Context, ownerID string, id uuid.UUID) (*InvoiceDraft, error) {
	var allocated string
	draft, err := s.mutateAlways(ctx, ownerID, id, func(d *InvoiceDraft) error {
		wasAllocated := d.Numbering.State == numbering.Allocated
		if err := s.ensureCompany(ctx, d); err != nil {
			return err
		}
		number, err := d.AllocateNumber(ctx)
		if err != nil {
			return err
		}
		if !wasAllocated {
			allocated = number
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if allocated != "" {
		s.logger.WithFields(logrus.Fields{"draftId": id, "number": allocated}).Info("Invoice number allocated")
		s.publisher.PublishNumberAllocated(ctx, ownerID, id.String(), allocated)
	}
	return draft, nil
}

// Submit turns the draft into a persisted invoice and deletes the draft
func (s *DraftService) Submit(ctx context.Context, ownerID string, id uuid.UUID) (*models.Invoice, error) {
	release, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	draft, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if len(draft.Items) == 0 {
		return nil, ErrDraftEmpty
	}
	if draft.CustomerID == nil {
		return nil, ErrCustomerRequired
	}

	if err := s.ensureCompany(ctx, draft); err != nil {
		return nil, err
	}
	draft.Recompute()
	if _, err := draft.AllocateNumber(ctx); err != nil {
		_ = s.store.Save(ctx, draft)
		return nil, err
	}
	// Keep the allocated number if the insert fails, so a retry reuses it
	if err := s.store.Save(ctx, draft); err != nil {
		return nil, err
	}

	invoice := draft.ToInvoice()
	if err := s.invoices.Create(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// An earlier submit stored the invoice but could not drop the draft
			if delErr := s.store.Delete(ctx, id); delErr != nil {
				s.logger.WithError(delErr).WithField("draftId", id).Warn("Failed to delete submitted draft")
			}
			return nil, fmt.Errorf("%w: %s", ErrAlreadySubmitted, invoice.InvoiceNumber)
		}
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.WithError(err).WithField("draftId", id).Warn("Failed to delete submitted draft")
	}

	s.logger.WithFields(logrus.Fields{
		"invoiceId": invoice.ID,
		"number":    invoice.InvoiceNumber,
		"total":     invoice.Total.StringFixed(2),
	}).Info("Invoice created")
	s.publisher.PublishInvoiceCreated(ctx, invoice)
	return invoice, nil
}

// ensureCompany binds the owner's company if the draft has none yet
func (s *DraftService) ensureCompany(ctx context.Context, d *InvoiceDraft) error {
	if d.CompanyID != uuid.Nil {
		return nil
	}
	company, err := s.companies.GetByOwner(ctx, d.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return numbering.ErrCompanyMissing
		}
		return err
	}
	d.SetCompany(company)
	return nil
}

func (s *DraftService) load(ctx context.Context, ownerID string, id uuid.UUID) (*InvoiceDraft, error) {
	draft, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.OwnerID != ownerID {
		return nil, ErrDraftNotFound
	}
	draft.attach(s.invoices)
	return draft, nil
}

// mutate runs fn under the draft lock and saves the draft if fn succeeds
func (s *DraftService) mutate(ctx context.Context, ownerID string, id uuid.UUID, fn func(*InvoiceDraft) error) (*InvoiceDraft, error) {
	return s.withDraft(ctx, ownerID, id, false, fn)
}

// mutateAlways saves the draft even when fn fails, for state that must
// survive an error such as an interrupted number allocation
func (s *DraftService) mutateAlways(ctx context.Context, ownerID string, id uuid.UUID, fn func(*InvoiceDraft) error) (*InvoiceDraft, error) {
	return s.withDraft(ctx, ownerID, id, true, fn)
}

func (s *DraftService) withDraft(ctx context.Context, ownerID string, id uuid.UUID, saveOnError bool, fn func(*InvoiceDraft) error) (*InvoiceDraft, error) {
	release, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	draft, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(draft); err != nil {
		if saveOnError {
			if saveErr := s.store.Save(ctx, draft); saveErr != nil {
				s.logger.WithError(saveErr).WithField("draftId", id).Warn("Failed to save draft after error")
			}
		}
		return nil, err
	}

	if err := s.store.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
