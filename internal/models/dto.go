package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// CompanyRequest creates or updates the caller's company profile
type CompanyRequest struct {
	Name               string `json:"name" binding:"required,max=255"`
	Address            string `json:"address"`
	City               string `json:"city" binding:"max=100"`
	State              string `json:"state" binding:"required,max=100"`
	Pincode            string `json:"pincode" binding:"omitempty,pincode"`
	GSTIN              string `json:"gstin" binding:"omitempty,gstin"`
	PAN                string `json:"pan" binding:"omitempty,len=10,alphanum"`
	Email              string `json:"email" binding:"omitempty,email"`
	Phone              string `json:"phone" binding:"max=20"`
	BankName           string `json:"bankName"`
	AccountNumber      string `json:"accountNumber" binding:"max=50"`
	IFSCCode           string `json:"ifscCode" binding:"omitempty,len=11,alphanum"`
	InvoicePrefix      string `json:"invoicePrefix" binding:"max=20"`
	CreditNotePrefix   string `json:"creditNotePrefix" binding:"max=20"`
	TermsAndConditions string `json:"termsAndConditions"`
}

// Apply copies the request onto a company, defaulting empty prefixes
func (r CompanyRequest) Apply(c *Company) {
	c.Name = r.Name
	c.Address = r.Address
	c.City = r.City
	c.State = r.State
	c.Pincode = r.Pincode
	c.GSTIN = strings.ToUpper(r.GSTIN)
	c.PAN = strings.ToUpper(r.PAN)
	c.Email = r.Email
	c.Phone = r.Phone
	c.BankName = r.BankName
	c.AccountNumber = r.AccountNumber
	c.IFSCCode = strings.ToUpper(r.IFSCCode)
	c.InvoicePrefix = r.InvoicePrefix
	if c.InvoicePrefix == "" {
		c.InvoicePrefix = DefaultInvoicePrefix
	}
	c.CreditNotePrefix = r.CreditNotePrefix
	if c.CreditNotePrefix == "" {
		c.CreditNotePrefix = DefaultCreditNotePrefix
	}
	c.TermsAndConditions = r.TermsAndConditions
}

// CustomerRequest creates or updates a customer
type CustomerRequest struct {
	Name           string   `json:"name" binding:"required,max=255"`
	Email          string   `json:"email" binding:"omitempty,email"`
	Phone          string   `json:"phone" binding:"max=20"`
	BillingAddress string   `json:"billingAddress"`
	City           string   `json:"city" binding:"max=100"`
	State          string   `json:"state" binding:"max=100"`
	Pincode        string   `json:"pincode" binding:"omitempty,pincode"`
	GSTIN          string   `json:"gstin" binding:"omitempty,gstin"`
	Tags           []string `json:"tags"`
}

// Apply copies the request onto a customer
func (r CustomerRequest) Apply(c *Customer) {
	c.Name = r.Name
	c.Email = r.Email
	c.Phone = r.Phone
	c.BillingAddress = r.BillingAddress
	c.City = r.City
	c.State = r.State
	c.Pincode = r.Pincode
	c.GSTIN = strings.ToUpper(r.GSTIN)
	c.Tags = pq.StringArray(r.Tags)
}

// ProductRequest creates or updates a product
type ProductRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description string   `json:"description"`
	HSNCode     string   `json:"hsnCode" binding:"omitempty,hsn"`
	Price       float64  `json:"price" binding:"gte=0"`
	GSTRate     float64  `json:"gstRate" binding:"gte=0,lte=100"`
	Unit        string   `json:"unit" binding:"max=20"`
	Tags        []string `json:"tags"`
}

// Apply copies the request onto a product
func (r ProductRequest) Apply(p *Product) {
	p.Name = r.Name
	p.Description = r.Description
	p.HSNCode = r.HSNCode
	p.Price = r.Price
	p.GSTRate = r.GSTRate
	p.Unit = r.Unit
	if p.Unit == "" {
		p.Unit = "pcs"
	}
	p.Tags = pq.StringArray(r.Tags)
}

// LineItemRequest adds a line to a draft
type LineItemRequest struct {
	ProductID   *uuid.UUID `json:"productId"`
	ProductName string     `json:"productName" binding:"required,max=255"`
	Description string     `json:"description"`
	HSNCode     string     `json:"hsnCode" binding:"omitempty,hsn"`
	Quantity    float64    `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64    `json:"unitPrice" binding:"gte=0"`
	GSTRate     float64    `json:"gstRate" binding:"gte=0,lte=100"`
	Unit        string     `json:"unit" binding:"max=20"`
}

// LineItem converts the request into an editable line
func (r LineItemRequest) LineItem() LineItem {
	return LineItem{
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Description: r.Description,
		HSNCode:     r.HSNCode,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		GSTRate:     r.GSTRate,
		Unit:        r.Unit,
	}
}

// UpdateLineItemRequest mutates individual fields of a draft line
type UpdateLineItemRequest struct {
	ProductName *string  `json:"productName" binding:"omitempty,min=1,max=255"`
	Description *string  `json:"description"`
	HSNCode     *string  `json:"hsnCode" binding:"omitempty,hsn"`
	Quantity    *float64 `json:"quantity" binding:"omitempty,gt=0"`
	UnitPrice   *float64 `json:"unitPrice" binding:"omitempty,gte=0"`
	GSTRate     *float64 `json:"gstRate" binding:"omitempty,gte=0,lte=100"`
	Unit        *string  `json:"unit" binding:"omitempty,max=20"`
}

// Apply copies the set fields onto a line
func (r UpdateLineItemRequest) Apply(item *LineItem) {
	if r.ProductName != nil {
		item.ProductName = *r.ProductName
	}
	if r.Description != nil {
		item.Description = *r.Description
	}
	if r.HSNCode != nil {
		item.HSNCode = *r.HSNCode
	}
	if r.Quantity != nil {
		item.Quantity = *r.Quantity
	}
	if r.UnitPrice != nil {
		item.UnitPrice = *r.UnitPrice
	}
	if r.GSTRate != nil {
		item.GSTRate = *r.GSTRate
	}
	if r.Unit != nil {
		item.Unit = *r.Unit
	}
}

// CreateDraftRequest opens a new invoice draft
type CreateDraftRequest struct {
	CustomerID  *uuid.UUID `json:"customerId"`
	InvoiceDate string     `json:"invoiceDate" binding:"omitempty,datetime=2006-01-02"`
}

// SelectProductRequest fills a draft line from a catalog product
type SelectProductRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
}

// SetCustomerRequest selects the buyer of a draft
type SetCustomerRequest struct {
	CustomerID uuid.UUID `json:"customerId" binding:"required"`
}

// UpdateDraftDetailsRequest changes header fields of a draft
type UpdateDraftDetailsRequest struct {
	InvoiceDate        *string        `json:"invoiceDate" binding:"omitempty,datetime=2006-01-02"`
	DueDate            *string        `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
	TermsAndConditions *string        `json:"termsAndConditions"`
	Notes              *string        `json:"notes"`
	Status             *InvoiceStatus `json:"status" binding:"omitempty,oneof=draft pending paid"`
}

// UpdateStatusRequest moves an invoice through its lifecycle
type UpdateStatusRequest struct {
	Status InvoiceStatus `json:"status" binding:"required,oneof=draft pending paid cancelled"`
}

// CreditNoteLineRequest credits a quantity of an invoice line
type CreditNoteLineRequest struct {
	InvoiceItemID uuid.UUID `json:"invoiceItemId" binding:"required"`
	Quantity      float64   `json:"quantity" binding:"required,gt=0"`
}

// CreateCreditNoteRequest issues a credit note against an invoice
type CreateCreditNoteRequest struct {
	InvoiceID      uuid.UUID               `json:"invoiceId" binding:"required"`
	CreditNoteDate string                  `json:"creditNoteDate" binding:"omitempty,datetime=2006-01-02"`
	Reason         string                  `json:"reason" binding:"required"`
	Items          []CreditNoteLineRequest `json:"items" binding:"required,min=1,dive"`
}

// CalculateTaxRequest is a stateless tax preview
type CalculateTaxRequest struct {
	Items       []LineItemRequest `json:"items" binding:"dive"`
	BuyerState  string            `json:"buyerState"`
	SellerState string            `json:"sellerState"`
}

// CreatePaymentOrderRequest starts a subscription payment
type CreatePaymentOrderRequest struct {
	Plan         Plan         `json:"plan" binding:"required,oneof=starter professional"`
	BillingCycle BillingCycle `json:"billingCycle" binding:"required,oneof=monthly yearly"`
}

// ListFilter is the common pagination query
type ListFilter struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search"`
}

// Normalize applies pagination defaults
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
}

// Offset returns the row offset for the current page
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	ListFilter
	Status        InvoiceStatus `form:"status" binding:"omitempty,oneof=draft pending paid cancelled"`
	FinancialYear string        `form:"financialYear"`
	CustomerID    string        `form:"customerId" binding:"omitempty,uuid"`
}

// ListResponse wraps a page of results
type ListResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
