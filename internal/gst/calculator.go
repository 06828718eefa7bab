// Package gst computes Indian Goods and Services Tax for invoice line items.
//
// A supply inside one state is taxed as CGST + SGST (the GST amount split in
// equal halves); a supply between two states is taxed as IGST. When either
// side's state is unknown the calculator falls back to the intra-state split.
package gst

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// SupplyType classifies a transaction for GST purposes
type SupplyType string

const (
	IntraState SupplyType = "intra_state"
	InterState SupplyType = "inter_state"
)

var half = decimal.NewFromFloat(0.5)

// Item is the subset of an invoice line the calculator needs
type Item struct {
	Quantity  float64
	UnitPrice float64
	GSTRate   float64 // percent, 0-100
}

// Line is the tax result for a single item
type Line struct {
	Taxable decimal.Decimal `json:"taxable"`
	CGST    decimal.Decimal `json:"cgst"`
	SGST    decimal.Decimal `json:"sgst"`
	IGST    decimal.Decimal `json:"igst"`
	Total   decimal.Decimal `json:"total"`
}

// Breakdown is the aggregated GST split for a document
type Breakdown struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

// Tax returns cgst + sgst + igst
func (b Breakdown) Tax() decimal.Decimal {
	return b.CGST.Add(b.SGST).Add(b.IGST)
}

// Totals is the full result of a calculation
type Totals struct {
	Breakdown
	Subtotal   decimal.Decimal `json:"subtotal"`
	Total      decimal.Decimal `json:"total"`
	SupplyType SupplyType      `json:"supplyType"`
	Lines      []Line          `json:"lines"`
}

// ResolveSupplyType decides between intra-state and inter-state supply.
// Unknown states on either side resolve to IntraState.
func ResolveSupplyType(buyerState, sellerState string) SupplyType {
	buyer := normalizeState(buyerState)
	seller := normalizeState(sellerState)
	if buyer == "" || seller == "" {
		return IntraState
	}
	if buyer == seller {
		return IntraState
	}
	return InterState
}

// Calculate derives subtotal, GST breakdown and total for items. It never
// fails: non-finite quantities, prices or rates contribute zero.
func Calculate(items []Item, buyerState, sellerState string) Totals {
	supply := ResolveSupplyType(buyerState, sellerState)

	totals := Totals{
		Subtotal:   decimal.Zero,
		Breakdown:  Breakdown{CGST: decimal.Zero, SGST: decimal.Zero, IGST: decimal.Zero},
		SupplyType: supply,
		Lines:      make([]Line, 0, len(items)),
	}

	for _, item := range items {
		line := calculateLine(item, supply)
		totals.Subtotal = totals.Subtotal.Add(line.Taxable)
		totals.CGST = totals.CGST.Add(line.CGST)
		totals.SGST = totals.SGST.Add(line.SGST)
		totals.IGST = totals.IGST.Add(line.IGST)
		totals.Lines = append(totals.Lines, line)
	}

	totals.Total = totals.Subtotal.Add(totals.Tax())
	return totals
}

func calculateLine(item Item, supply SupplyType) Line {
	taxable := finite(item.UnitPrice).Mul(finite(item.Quantity))
	amount := taxable.Mul(finite(item.GSTRate)).Shift(-2)

	line := Line{
		Taxable: taxable,
		CGST:    decimal.Zero,
		SGST:    decimal.Zero,
		IGST:    decimal.Zero,
	}
	if supply == InterState {
		line.IGST = amount
	} else {
		line.CGST = amount.Mul(half)
		line.SGST = amount.Mul(half)
	}
	line.Total = taxable.Add(line.CGST).Add(line.SGST).Add(line.IGST)
	return line
}

// Rounded returns a copy with every amount rounded to paise. Lines are rounded
// first, CGST and SGST identically, and the header is the sum of the rounded
// lines so it always matches the persisted items.
func (t Totals) Rounded() Totals {
	r := Totals{
		Breakdown:  Breakdown{CGST: decimal.Zero, SGST: decimal.Zero, IGST: decimal.Zero},
		Subtotal:   decimal.Zero,
		SupplyType: t.SupplyType,
		Lines:      make([]Line, 0, len(t.Lines)),
	}

	for _, l := range t.Lines {
		rl := Line{
			Taxable: l.Taxable.Round(2),
			CGST:    l.CGST.Round(2),
			SGST:    l.SGST.Round(2),
			IGST:    l.IGST.Round(2),
		}
		rl.Total = rl.Taxable.Add(rl.CGST).Add(rl.SGST).Add(rl.IGST)
		r.Lines = append(r.Lines, rl)

		r.Subtotal = r.Subtotal.Add(rl.Taxable)
		r.CGST = r.CGST.Add(rl.CGST)
		r.SGST = r.SGST.Add(rl.SGST)
		r.IGST = r.IGST.Add(rl.IGST)
	}
	r.Total = r.Subtotal.Add(r.Tax())
	return r
}

func finite(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func normalizeState(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
