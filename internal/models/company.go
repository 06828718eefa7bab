package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultInvoicePrefix    = "INV"
	DefaultCreditNotePrefix = "CN"
)

// Company is the seller profile of an account. Each owner has at most one.
type Company struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID string    `json:"ownerId" gorm:"type:varchar(255);not null;uniqueIndex:idx_companies_owner"`
	Name    string    `json:"name" gorm:"type:varchar(255);not null"`

	// Address
	Address string `json:"address" gorm:"type:text"`
	City    string `json:"city" gorm:"type:varchar(100)"`
	State   string `json:"state" gorm:"type:varchar(100)"` // Seller jurisdiction for GST
	Pincode string `json:"pincode" gorm:"type:varchar(6)"`

	// Tax identifiers
	GSTIN string `json:"gstin" gorm:"type:varchar(15)"`
	PAN   string `json:"pan" gorm:"type:varchar(10)"`

	// Contact
	Email string `json:"email" gorm:"type:varchar(255)"`
	Phone string `json:"phone" gorm:"type:varchar(20)"`

	// Bank details printed on invoices
	BankName      string `json:"bankName" gorm:"type:varchar(255)"`
	AccountNumber string `json:"accountNumber" gorm:"type:varchar(50)"`
	IFSCCode      string `json:"ifscCode" gorm:"type:varchar(11)"`

	// Numbering
	InvoicePrefix    string `json:"invoicePrefix" gorm:"type:varchar(20);default:'INV'"`
	CreditNotePrefix string `json:"creditNotePrefix" gorm:"type:varchar(20);default:'CN'"`

	TermsAndConditions string `json:"termsAndConditions" gorm:"type:text"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// NumberPrefix returns the configured prefix for a document kind
func (c *Company) NumberPrefix(kind DocumentKind) string {
	if kind == DocumentKindCreditNote {
		if c.CreditNotePrefix != "" {
			return c.CreditNotePrefix
		}
		return DefaultCreditNotePrefix
	}
	if c.InvoicePrefix != "" {
		return c.InvoicePrefix
	}
	return DefaultInvoicePrefix
}
