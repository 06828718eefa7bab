package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"invoicing-service/internal/gst"
	"invoicing-service/internal/models"
	"invoicing-service/internal/numbering"
)

var ErrItemIndex = errors.New("line item index out of range")

// InvoiceDraft is an invoice being edited. Totals are derived state: every
// mutation ends with Recompute, so they always match a fresh calculation
// over the current items, customer and company.
type InvoiceDraft struct {
	ID      uuid.UUID `json:"id"`
	OwnerID string    `json:"ownerId"`

	// Seller
	CompanyID   uuid.UUID `json:"companyId"`
	SellerState string    `json:"sellerState"`

	// Buyer
	CustomerID    *uuid.UUID `json:"customerId"`
	CustomerName  string     `json:"customerName"`
	CustomerGSTIN string     `json:"customerGstin"`
	BuyerState    string     `json:"buyerState"`

	InvoiceDate        time.Time            `json:"invoiceDate"`
	DueDate            *time.Time           `json:"dueDate"`
	FinancialYear      string               `json:"financialYear"`
	Status             models.InvoiceStatus `json:"status"`
	TermsAndConditions string               `json:"termsAndConditions"`
	Notes              string               `json:"notes"`
	Items              []models.LineItem    `json:"items"`

	Numbering     numbering.Snapshot `json:"numbering"`
	InvoiceNumber string             `json:"invoiceNumber"`
	Totals        gst.Totals         `json:"totals"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	allocator *numbering.Allocator
}

// NewInvoiceDraft starts an empty draft dated invoiceDate
func NewInvoiceDraft(ownerID string, invoiceDate time.Time) *InvoiceDraft {
	now := time.Now().UTC()
	d := &InvoiceDraft{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Status:    models.InvoiceStatusDraft,
		Items:     make([]models.LineItem, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.allocator = numbering.NewAllocator(nil, "")
	d.SetInvoiceDate(invoiceDate)
	return d
}

// attach binds the draft's numbering state to a sequencer after loading
func (d *InvoiceDraft) attach(seq numbering.Sequencer) {
	if d.Items == nil {
		d.Items = make([]models.LineItem, 0)
	}
	d.allocator = numbering.Restore(seq, d.Numbering)
	d.syncNumbering()
}

func (d *InvoiceDraft) syncNumbering() {
	d.Numbering = d.allocator.Snapshot()
	d.InvoiceNumber = d.allocator.Number()
}

// Recompute derives totals from the current items and parties
func (d *InvoiceDraft) Recompute() {
	items := make([]gst.Item, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, item.TaxItem())
	}
	d.Totals = gst.Calculate(items, d.BuyerState, d.SellerState)
	d.UpdatedAt = time.Now().UTC()
}

// AddItem appends a line
func (d *InvoiceDraft) AddItem(item models.LineItem) {
	d.Items = append(d.Items, item)
	d.Recompute()
}

// UpdateItem applies field changes to the line at index
func (d *InvoiceDraft) UpdateItem(index int, update models.UpdateLineItemRequest) error {
	if index < 0 || index >= len(d.Items) {
		return ErrItemIndex
	}
	update.Apply(&d.Items[index])
	d.Recompute()
	return nil
}

// RemoveItem deletes the line at index
func (d *InvoiceDraft) RemoveItem(index int) error {
	if index < 0 || index >= len(d.Items) {
		return ErrItemIndex
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	d.Recompute()
	return nil
}

// SelectProduct fills the line at index from a catalog product, keeping its
// quantity. An index equal to the number of lines appends a new line.
func (d *InvoiceDraft) SelectProduct(index int, product *models.Product) error {
	if index < 0 || index > len(d.Items) {
		return ErrItemIndex
	}
	if index == len(d.Items) {
		d.Items = append(d.Items, models.LineItem{Quantity: 1})
	}

	productID := product.ID
	item := &d.Items[index]
	item.ProductID = &productID
	item.ProductName = product.Name
	item.Description = product.Description
	item.HSNCode = product.HSNCode
	item.UnitPrice = product.Price
	item.GSTRate = product.GSTRate
	item.Unit = product.Unit
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	d.Recompute()
	return nil
}

// SetCustomer selects the buyer; the buyer state drives the GST split
func (d *InvoiceDraft) SetCustomer(customer *models.Customer) {
	id := customer.ID
	d.CustomerID = &id
	d.CustomerName = customer.Name
	d.CustomerGSTIN = customer.GSTIN
	d.BuyerState = customer.State
	d.Recompute()
}

// SetCompany binds the seller. A different company or prefix invalidates
// any allocated number.
func (d *InvoiceDraft) SetCompany(company *models.Company) {
	d.CompanyID = company.ID
	d.SellerState = company.State
	if d.TermsAndConditions == "" {
		d.TermsAndConditions = company.TermsAndConditions
	}
	d.allocator.SetCompany(company.ID, company.NumberPrefix(models.DocumentKindInvoice))
	d.syncNumbering()
	d.Recompute()
}

// SetInvoiceDate changes the date and the derived financial year. Moving to
// another financial year discards the allocated number.
func (d *InvoiceDraft) SetInvoiceDate(date time.Time) {
	d.InvoiceDate = truncateDate(date)
	d.FinancialYear = gst.FinancialYear(d.InvoiceDate)
	d.allocator.SetFinancialYear(d.FinancialYear)
	d.syncNumbering()
	d.Recompute()
}

// AllocateNumber returns the draft's invoice number, calling the sequence
// at most once for the current company and financial year
func (d *InvoiceDraft) AllocateNumber(ctx context.Context) (string, error) {
	number, err := d.allocator.Allocate(ctx)
	d.syncNumbering()
	return number, err
}

// ToInvoice builds the persisted invoice with rounded amounts
func (d *InvoiceDraft) ToInvoice() *models.Invoice {
	totals := d.Totals.Rounded()
	invoice := &models.Invoice{
		OwnerID:            d.OwnerID,
		CompanyID:          d.CompanyID,
		InvoiceNumber:      d.InvoiceNumber,
		InvoiceDate:        d.InvoiceDate,
		DueDate:            d.DueDate,
		FinancialYear:      d.FinancialYear,
		Status:             d.Status,
		SellerState:        d.SellerState,
		BuyerState:         d.BuyerState,
		CustomerName:       d.CustomerName,
		CustomerGSTIN:      d.CustomerGSTIN,
		TermsAndConditions: d.TermsAndConditions,
		Notes:              d.Notes,
		Items:              make([]models.InvoiceItem, 0, len(d.Items)),
	}
	if d.CustomerID != nil {
		invoice.CustomerID = *d.CustomerID
	}
	invoice.ApplyTotals(totals)
	for i, item := range d.Items {
		invoice.Items = append(invoice.Items, models.NewInvoiceItem(i+1, item, totals.Lines[i]))
	}
	return invoice
}

func truncateDate(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
