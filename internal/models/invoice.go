package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"invoicing-service/internal/gst"
)

// DocumentKind distinguishes the numbered documents a company issues
type DocumentKind string

const (
	DocumentKindInvoice    DocumentKind = "invoice"
	DocumentKindCreditNote DocumentKind = "credit_note"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s InvoiceStatus) IsValid() bool {
	_, ok := ValidInvoiceTransitions[s]
	return ok
}

// ValidInvoiceTransitions defines valid state transitions for InvoiceStatus
// Flow: draft → pending → paid; cancelled reachable from any unpaid state
var ValidInvoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPending:   {InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:      {}, // Terminal state
	InvoiceStatusCancelled: {}, // Terminal state
}

// CanTransitionInvoiceStatus checks if a transition from one invoice status to another is valid
func CanTransitionInvoiceStatus(from, to InvoiceStatus) bool {
	validTransitions, exists := ValidInvoiceTransitions[from]
	if !exists {
		return false
	}
	for _, validTo := range validTransitions {
		if validTo == to {
			return true
		}
	}
	return false
}

// LineItem is an editable invoice line
type LineItem struct {
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	ProductName string     `json:"productName"`
	Description string     `json:"description"`
	HSNCode     string     `json:"hsnCode"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	GSTRate     float64    `json:"gstRate"`
	Unit        string     `json:"unit"`
}

// TaxItem returns the calculator input for this line
func (l LineItem) TaxItem() gst.Item {
	return gst.Item{
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		GSTRate:   l.GSTRate,
	}
}

// Invoice is an issued tax invoice
type Invoice struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID       string        `json:"ownerId" gorm:"type:varchar(255);not null;index:idx_invoices_owner"`
	CompanyID     uuid.UUID     `json:"companyId" gorm:"type:uuid;not null;uniqueIndex:idx_invoices_company_number,priority:1"`
	CustomerID    uuid.UUID     `json:"customerId" gorm:"type:uuid;not null;index"`
	InvoiceNumber string        `json:"invoiceNumber" gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_company_number,priority:2"`
	InvoiceDate   time.Time     `json:"invoiceDate" gorm:"type:date;not null"`
	DueDate       *time.Time    `json:"dueDate" gorm:"type:date"`
	FinancialYear string        `json:"financialYear" gorm:"type:varchar(9);not null;index"`
	Status        InvoiceStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`

	// GST snapshot at the time of issue
	SupplyType    gst.SupplyType `json:"supplyType" gorm:"type:varchar(20);not null"`
	SellerState   string         `json:"sellerState" gorm:"type:varchar(100)"`
	BuyerState    string         `json:"buyerState" gorm:"type:varchar(100)"`
	CustomerName  string         `json:"customerName" gorm:"type:varchar(255)"`
	CustomerGSTIN string         `json:"customerGstin" gorm:"type:varchar(15)"`

	// Amounts
	Subtotal decimal.Decimal `json:"subtotal" gorm:"type:decimal(14,2);not null;default:0"`
	CGST     decimal.Decimal `json:"cgst" gorm:"type:decimal(14,2);not null;default:0"`
	SGST     decimal.Decimal `json:"sgst" gorm:"type:decimal(14,2);not null;default:0"`
	IGST     decimal.Decimal `json:"igst" gorm:"type:decimal(14,2);not null;default:0"`
	Total    decimal.Decimal `json:"total" gorm:"type:decimal(14,2);not null;default:0"`

	TermsAndConditions string         `json:"termsAndConditions" gorm:"type:text"`
	Notes              string         `json:"notes" gorm:"type:text"`
	Metadata           datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	Items []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InvoiceItem is a persisted invoice line with its computed tax
type InvoiceItem struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	InvoiceID uuid.UUID  `json:"invoiceId" gorm:"type:uuid;not null;index"`
	Position  int        `json:"position" gorm:"not null"`
	ProductID *uuid.UUID `json:"productId,omitempty" gorm:"type:uuid"`

	ProductName string  `json:"productName" gorm:"type:varchar(255);not null"`
	Description string  `json:"description" gorm:"type:text"`
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

// NewInvoiceItem builds a persisted line from an editable line and its tax
func NewInvoiceItem(position int, item LineItem, line gst.Line) InvoiceItem {
	return InvoiceItem{
		Position:      position,
		ProductID:     item.ProductID,
		ProductName:   item.ProductName,
		Description:   item.Description,
		HSNCode:       item.HSNCode,
		Quantity:      item.Quantity,
		UnitPrice:     item.UnitPrice,
		GSTRate:       item.GSTRate,
		Unit:          item.Unit,
		TaxableAmount: line.Taxable,
		CGST:          line.CGST,
		SGST:          line.SGST,
		IGST:          line.IGST,
		LineTotal:     line.Total,
	}
}

// LineItem converts a persisted line back into an editable one
func (i InvoiceItem) LineItem() LineItem {
	return LineItem{
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Description: i.Description,
		HSNCode:     i.HSNCode,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		GSTRate:     i.GSTRate,
		Unit:        i.Unit,
	}
}

// ApplyTotals copies rounded totals onto the invoice
func (inv *Invoice) ApplyTotals(t gst.Totals) {
	inv.SupplyType = t.SupplyType
	inv.Subtotal = t.Subtotal
	inv.CGST = t.CGST
	inv.SGST = t.SGST
	inv.IGST = t.IGST
	inv.Total = t.Total
}

// InvoiceSequence is the per company, per financial year counter row
// behind invoice and credit note numbers
type InvoiceSequence struct {
	CompanyID     uuid.UUID `json:"companyId" gorm:"type:uuid;primaryKey"`
	FinancialYear string    `json:"financialYear" gorm:"type:varchar(9);primaryKey"`
	Prefix        string    `json:"prefix" gorm:"type:varchar(20);primaryKey"`
	LastValue     int64     `json:"lastValue" gorm:"not null;default:0"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
