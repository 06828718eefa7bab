package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"invoicing-service/internal/gst"
	"invoicing-service/internal/models"
)

// PDFRenderer renders tax invoices
type PDFRenderer struct {
	currency string
}

// NewPDFRenderer creates a renderer printing amounts in currency
func NewPDFRenderer(currency string) *PDFRenderer {
	if currency == "" {
		currency = "INR"
	}
	return &PDFRenderer{currency: currency}
}

// RenderInvoice renders an invoice issued by company as a PDF
func (r *PDFRenderer) RenderInvoice(invoice *models.Invoice, company *models.Company) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	r.addHeader(m, invoice, company)
	r.addParties(m, invoice, company)
	r.addItems(m, invoice)
	r.addTotals(m, invoice)
	r.addFooter(m, invoice, company)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func (r *PDFRenderer) addHeader(m core.Maroto, invoice *models.Invoice, company *models.Company) {
	m.AddRow(30,
		col.New(7).Add(
			text.New(company.Name, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
			text.New(company.Address, props.Text{Size: 9, Top: 8, Align: align.Left}),
			text.New(fmt.Sprintf("%s %s %s", company.City, company.State, company.Pincode), props.Text{Size: 9, Top: 13, Align: align.Left}),
			text.New("GSTIN: "+company.GSTIN, props.Text{Size: 9, Top: 18, Align: align.Left}),
		),
		col.New(5).Add(
			text.New("TAX INVOICE", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
			text.New(invoice.InvoiceNumber, props.Text{Size: 10, Top: 8, Align: align.Right}),
			text.New("Date: "+invoice.InvoiceDate.Format("02 Jan 2006"), props.Text{Size: 9, Top: 13, Align: align.Right}),
			text.New("FY: "+invoice.FinancialYear, props.Text{Size: 9, Top: 18, Align: align.Right}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func (r *PDFRenderer) addParties(m core.Maroto, invoice *models.Invoice, company *models.Company) {
	supply := "Intra-state supply (CGST + SGST)"
	if invoice.SupplyType == gst.InterState {
		supply = "Inter-state supply (IGST)"
	}
	due := "-"
	if invoice.DueDate != nil {
		due = invoice.DueDate.Format("02 Jan 2006")
	}

	m.AddRow(22,
		col.New(6).Add(
			text.New("BILL TO:", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
			text.New(invoice.CustomerName, props.Text{Size: 9, Top: 6, Align: align.Left}),
			text.New("GSTIN: "+orDash(invoice.CustomerGSTIN), props.Text{Size: 9, Top: 11, Align: align.Left}),
			text.New("Place of supply: "+orDash(invoice.BuyerState), props.Text{Size: 9, Top: 16, Align: align.Left}),
		),
		col.New(6).Add(
			text.New(supply, props.Text{Size: 9, Align: align.Right}),
			text.New("Due: "+due, props.Text{Size: 9, Top: 6, Align: align.Right}),
			text.New("Status: "+string(invoice.Status), props.Text{Size: 9, Top: 11, Align: align.Right}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func (r *PDFRenderer) addItems(m core.Maroto, invoice *models.Invoice) {
	header := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}
	m.AddRow(8,
		col.New(4).Add(text.New("Item", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left})),
		col.New(1).Add(text.New("HSN", header)),
		col.New(1).Add(text.New("Qty", header)),
		col.New(2).Add(text.New("Rate", header)),
		col.New(1).Add(text.New("GST %", header)),
		col.New(3).Add(text.New("Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
	)

	cell := props.Text{Size: 9, Align: align.Center}
	for _, item := range invoice.Items {
		m.AddRow(7,
			col.New(4).Add(text.New(item.ProductName, props.Text{Size: 9, Align: align.Left})),
			col.New(1).Add(text.New(item.HSNCode, cell)),
			col.New(1).Add(text.New(fmt.Sprintf("%g %s", item.Quantity, item.Unit), cell)),
			col.New(2).Add(text.New(fmt.Sprintf("%.2f", item.UnitPrice), cell)),
			col.New(1).Add(text.New(fmt.Sprintf("%g", item.GSTRate), cell)),
			col.New(3).Add(text.New(item.TaxableAmount.StringFixed(2), props.Text{Size: 9, Align: align.Right})),
		)
	}
	m.AddRow(5, line.NewCol(12))
}

type totalRow struct {
	label  string
	amount decimal.Decimal
}

func (r *PDFRenderer) addTotals(m core.Maroto, invoice *models.Invoice) {
	rows := []totalRow{{"Subtotal", invoice.Subtotal}}
	if invoice.SupplyType == gst.InterState {
		rows = append(rows, totalRow{"IGST", invoice.IGST})
	} else {
		rows = append(rows, totalRow{"CGST", invoice.CGST}, totalRow{"SGST", invoice.SGST})
	}

	for _, row := range rows {
		m.AddRow(6,
			col.New(9).Add(text.New(row.label, props.Text{Size: 9, Align: align.Right})),
			col.New(3).Add(text.New(row.amount.StringFixed(2), props.Text{Size: 9, Align: align.Right})),
		)
	}
	m.AddRow(8,
		col.New(9).Add(text.New("Total ("+r.currency+")", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right})),
		col.New(3).Add(text.New(invoice.Total.StringFixed(2), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right})),
	)
}

func (r *PDFRenderer) addFooter(m core.Maroto, invoice *models.Invoice, company *models.Company) {
	m.AddRow(5, line.NewCol(12))
	if company.BankName != "" {
		m.AddRow(15,
			col.New(12).Add(
				text.New("Bank details", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}),
				text.New(fmt.Sprintf("%s  A/C %s  IFSC %s", company.BankName, company.AccountNumber, company.IFSCCode), props.Text{Size: 9, Top: 5, Align: align.Left}),
			),
		)
	}
	if invoice.TermsAndConditions != "" {
		m.AddRow(20,
			col.New(12).Add(
				text.New("Terms and conditions", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}),
				text.New(invoice.TermsAndConditions, props.Text{Size: 8, Top: 5, Align: align.Left}),
			),
		)
	}
	if invoice.Notes != "" {
		m.AddRow(12,
			col.New(12).Add(text.New(invoice.Notes, props.Text{Size: 8, Align: align.Left})),
		)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
