package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoicing-service/internal/models"
)

// CreditCheck validates a credit note against the quantities already
// credited per invoice item
type CreditCheck func(credited map[uuid.UUID]decimal.Decimal) error

// CreditNoteRepository handles database operations for credit notes
type CreditNoteRepository struct {
	db *gorm.DB
}

// NewCreditNoteRepository creates a new CreditNoteRepository
func NewCreditNoteRepository(db *gorm.DB) *CreditNoteRepository {
	return &CreditNoteRepository{db: db}
}

// Create numbers and persists a credit note. The source invoice row is
// locked so concurrent credit notes against it are checked one at a time.
func (r *CreditNoteRepository) Create(ctx context.Context, note *models.CreditNote, prefix string, check CreditCheck) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ? AND id = ?", note.OwnerID, note.InvoiceID).
			First(&invoice).Error; err != nil {
			return translate(err)
		}

		credited, err := creditedQuantities(tx, note.InvoiceID)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(credited); err != nil {
				return err
			}
		}

		number, err := nextNumber(tx, note.CompanyID, note.FinancialYear, prefix)
		if err != nil {
			return err
		}
		note.CreditNoteNumber = number

		return tx.Create(note).Error
	})
}

// creditedQuantities sums issued credit note quantities per invoice item
func creditedQuantities(tx *gorm.DB, invoiceID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		InvoiceItemID uuid.UUID
		Quantity      decimal.Decimal
	}
	err := tx.Model(&models.CreditNoteItem{}).
		Select("credit_note_items.invoice_item_id, SUM(credit_note_items.quantity) AS quantity").
		Joins("JOIN credit_notes ON credit_notes.id = credit_note_items.credit_note_id").
		Where("credit_notes.invoice_id = ? AND credit_notes.status = ?", invoiceID, models.CreditNoteStatusIssued).
		Group("credit_note_items.invoice_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	credited := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		credited[row.InvoiceItemID] = row.Quantity
	}
	return credited, nil
}

// GetByID retrieves an owner's credit note with items
func (r *CreditNoteRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.CreditNote, error) {
	var note models.CreditNote
	err := r.db.WithContext(ctx).Preload("Items").
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&note).Error
	if err != nil {
		return nil, translate(err)
	}
	return &note, nil
}

// List returns a page of the owner's credit notes, newest first
func (r *CreditNoteRepository) List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.CreditNote, int64, error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.CreditNote{}).Where("owner_id = ?", ownerID)
	if filter.Search != "" {
		query = query.Where("credit_note_number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notes []models.CreditNote
	err := query.Order("credit_note_date DESC, created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset()).
		Find(&notes).Error
	return notes, total, err
}
