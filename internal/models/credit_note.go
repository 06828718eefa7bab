package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"invoicing-service/internal/gst"
)

// CreditNoteStatus represents the status of a credit note
type CreditNoteStatus string

const (
	CreditNoteStatusIssued    CreditNoteStatus = "issued"
	CreditNoteStatusCancelled CreditNoteStatus = "cancelled"
)

// CreditNote reduces the value of a previously issued invoice
type CreditNote struct {
	ID               uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID          string           `json:"ownerId" gorm:"type:varchar(255);not null;index:idx_credit_notes_owner"`
	CompanyID        uuid.UUID        `json:"companyId" gorm:"type:uuid;not null;uniqueIndex:idx_credit_notes_company_number,priority:1"`
	InvoiceID        uuid.UUID        `json:"invoiceId" gorm:"type:uuid;not null;index"`
	CustomerID       uuid.UUID        `json:"customerId" gorm:"type:uuid;not null"`
	CreditNoteNumber string           `json:"creditNoteNumber" gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_notes_company_number,priority:2"`
	CreditNoteDate   time.Time        `json:"creditNoteDate" gorm:"type:date;not null"`
	FinancialYear    string           `json:"financialYear" gorm:"type:varchar(9);not null"`
	Reason           string           `json:"reason" gorm:"type:text"`
	Status           CreditNoteStatus `json:"status" gorm:"type:varchar(20);not null;default:'issued'"`
	SupplyType       gst.SupplyType   `json:"supplyType" gorm:"type:varchar(20);not null"`

	Subtotal decimal.Decimal `json:"subtotal" gorm:"type:decimal(14,2);not null;default:0"`
	CGST     decimal.Decimal `json:"cgst" gorm:"type:decimal(14,2);not null;default:0"`
	SGST     decimal.Decimal `json:"sgst" gorm:"type:decimal(14,2);not null;default:0"`
	IGST     decimal.Decimal `json:"igst" gorm:"type:decimal(14,2);not null;default:0"`
	Total    decimal.Decimal `json:"total" gorm:"type:decimal(14,2);not null;default:0"`

	Items []CreditNoteItem `json:"items" gorm:"foreignKey:CreditNoteID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreditNoteItem credits a quantity of one invoice line
type CreditNoteItem struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreditNoteID  uuid.UUID `json:"creditNoteId" gorm:"type:uuid;not null;index"`
	InvoiceItemID uuid.UUID `json:"invoiceItemId" gorm:"type:uuid;not null;index"`

	ProductName string  `json:"productName" gorm:"type:varchar(255);not null"`
	HSNCode     string  `json:"hsnCode" gorm:"type:varchar(8)"`
	Quantity    float64 `json:"quantity" gorm:"type:decimal(12,3);not null"`
	UnitPrice   float64 `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
	GSTRate     float64 `json:"gstRate" gorm:"type:decimal(5,2);not null"`
	Unit        string  `json:"unit" gorm:"type:varchar(20)"`

	TaxableAmount decimal.Decimal `json:"taxableAmount" gorm:"type:decimal(14,2);not null"`
	CGST          decimal.Decimal `json:"cgst" gorm:"type:decimal(14,2);not null"`
	SGST          decimal.Decimal `json:"sgst" gorm:"type:decimal(14,2);not null"`
	IGST          decimal.Decimal `json:"igst" gorm:"type:decimal(14,2);not null"`
	LineTotal     decimal.Decimal `json:"lineTotal" gorm:"type:decimal(14,2);not null"`
}

// ApplyTotals copies rounded totals onto the credit note
func (cn *CreditNote) ApplyTotals(t gst.Totals) {
	cn.SupplyType = t.SupplyType
	cn.Subtotal = t.Subtotal
	cn.CGST = t.CGST
	cn.SGST = t.SGST
	cn.IGST = t.IGST
	cn.Total = t.Total
}
