package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoicing-service/internal/models"
	"invoicing-service/internal/numbering"
)

// nextSequenceSQL increments the counter row for a scope in one statement.
// Concurrent callers serialize on the row lock taken by ON CONFLICT.
const nextSequenceSQL = `
INSERT INTO invoice_sequences (company_id, financial_year, prefix, last_value, updated_at)
VALUES (?, ?, ?, 1, NOW())
ON CONFLICT (company_id, financial_year, prefix)
DO UPDATE SET last_value = invoice_sequences.last_value + 1, updated_at = NOW()
RETURNING last_value`

// InvoiceRepository handles database operations for invoices
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// NextInvoiceNumber atomically advances the sequence for
// (company, financial year, prefix) and returns the formatted number
func (r *InvoiceRepository) NextInvoiceNumber(ctx context.Context, companyID uuid.UUID, financialYear, prefix string) (string, error) {
	return nextNumber(r.db.WithContext(ctx), companyID, financialYear, prefix)
}

func nextNumber(db *gorm.DB, companyID uuid.UUID, financialYear, prefix string) (string, error) {
	var value int64
	if err := db.Raw(nextSequenceSQL, companyID, financialYear, prefix).Scan(&value).Error; err != nil {
		return "", fmt.Errorf("failed to advance invoice sequence: %w", err)
	}
	if value <= 0 {
		return "", fmt.Errorf("invoice sequence returned %d", value)
	}
	return numbering.Format(prefix, financialYear, value), nil
}

// Create persists an invoice and its items in one transaction
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return translate(tx.Create(invoice).Error)
	})
}

// GetByID retrieves an owner's invoice with its items in order
func (r *InvoiceRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&invoice).Error
	if err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

// List returns a page of the owner's invoices, newest first
func (r *InvoiceRepository) List(ctx context.Context, ownerID string, filter models.InvoiceFilter) ([]models.Invoice, int64, error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("owner_id = ?", ownerID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FinancialYear != "" {
		query = query.Where("financial_year = ?", filter.FinancialYear)
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []models.Invoice
	err := query.Order("invoice_date DESC, created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset()).
		Find(&invoices).Error
	return invoices, total, err
}

// ListForExport returns every invoice of a financial year with items.
// An empty financial year exports all invoices.
func (r *InvoiceRepository) ListForExport(ctx context.Context, ownerID, financialYear string) ([]models.Invoice, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("owner_id = ?", ownerID)
	if financialYear != "" {
		query = query.Where("financial_year = ?", financialYear)
	}

	var invoices []models.Invoice
	err := query.Order("invoice_date ASC, invoice_number ASC").Find(&invoices).Error
	return invoices, err
}

// UpdateStatus moves an invoice to a new status if the transition is
// allowed. It returns the updated invoice and its previous status.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, to models.InvoiceStatus) (*models.Invoice, models.InvoiceStatus, error) {
	var invoice models.Invoice
	var from models.InvoiceStatus

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ? AND id = ?", ownerID, id).
			First(&invoice).Error; err != nil {
			return translate(err)
		}

		from = invoice.Status
		if !models.CanTransitionInvoiceStatus(from, to) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
		}

		invoice.Status = to
		return tx.Model(&invoice).Update("status", to).Error
	})
	if err != nil {
		return nil, from, err
	}
	return &invoice, from, nil
}

// Delete removes a draft or cancelled invoice
func (r *InvoiceRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&invoice).Error; err != nil {
			return translate(err)
		}
		if invoice.Status != models.InvoiceStatusDraft && invoice.Status != models.InvoiceStatusCancelled {
			return ErrNotDeletable
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&invoice).Error
	})
}
