package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"invoicing-service/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotDeletable      = errors.New("only draft or cancelled invoices can be deleted")
	ErrDuplicate         = errors.New("record already exists")
)

// translate maps gorm's not-found and unique-violation errors onto the
// repository sentinels. Unique violations need gorm's TranslateError.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

// CompanyRepositoryInterface is the company store used by services
type CompanyRepositoryInterface interface {
	GetByOwner(ctx context.Context, ownerID string) (*models.Company, error)
	Upsert(ctx context.Context, company *models.Company) error
}

// CustomerRepositoryInterface is the customer store used by services
type CustomerRepositoryInterface interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Customer, int64, error)
}

// ProductRepositoryInterface is the product store used by services
type ProductRepositoryInterface interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Product, int64, error)
	ListAll(ctx context.Context, ownerID string) ([]models.Product, error)
	UpsertByName(ctx context.Context, ownerID string, products []models.Product) (int64, error)
}

// InvoiceRepositoryInterface is the invoice store used by services
type InvoiceRepositoryInterface interface {
	NextInvoiceNumber(ctx context.Context, companyID uuid.UUID, financialYear, prefix string) (string, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, ownerID string, filter models.InvoiceFilter) ([]models.Invoice, int64, error)
	ListForExport(ctx context.Context, ownerID, financialYear string) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, to models.InvoiceStatus) (*models.Invoice, models.InvoiceStatus, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// CreditNoteRepositoryInterface is the credit note store used by services
type CreditNoteRepositoryInterface interface {
	Create(ctx context.Context, note *models.CreditNote, prefix string, check CreditCheck) error
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.CreditNote, error)
	List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.CreditNote, int64, error)
}

// PaymentOrderRepositoryInterface is the payment order store used by services
type PaymentOrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.PaymentOrder, error)
}

// GSTStateRepositoryInterface reads the seeded state code table
type GSTStateRepositoryInterface interface {
	List(ctx context.Context) ([]models.GSTState, error)
}

var (
	_ CompanyRepositoryInterface      = (*CompanyRepository)(nil)
	_ CustomerRepositoryInterface     = (*CustomerRepository)(nil)
	_ ProductRepositoryInterface      = (*ProductRepository)(nil)
	_ InvoiceRepositoryInterface      = (*InvoiceRepository)(nil)
	_ CreditNoteRepositoryInterface   = (*CreditNoteRepository)(nil)
	_ PaymentOrderRepositoryInterface = (*PaymentOrderRepository)(nil)
	_ GSTStateRepositoryInterface     = (*GSTStateRepository)(nil)
)
