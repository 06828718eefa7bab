package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"invoicing-service/internal/models"
	"invoicing-service/internal/validation"
)

const (
	invoicesSheet   = "Invoices"
	gstSummarySheet = "GST Summary"
	productsSheet   = "Products"
)

// productColumns is the column layout shared by the product template,
// export and import
var productColumns = []struct {
	Name     string
	Required bool
	Example  string
}{
	{"name", true, "Wireless Mouse"},
	{"description", false, "2.4GHz, black"},
	{"hsnCode", false, "8471"},
	{"price", true, "799.00"},
	{"gstRate", true, "18"},
	{"unit", false, "pcs"},
	{"tags", false, "electronics,accessories"},
}

// ErrInvalidImportFile means the upload is not a usable product workbook
var ErrInvalidImportFile = errors.New("invalid import file")

// ImportRowError reports a rejected spreadsheet row
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RateSummary aggregates invoice lines sharing a GST rate
type RateSummary struct {
	GSTRate float64         `json:"gstRate"`
	Taxable decimal.Decimal `json:"taxable"`
	CGST    decimal.Decimal `json:"cgst"`
	SGST    decimal.Decimal `json:"sgst"`
	IGST    decimal.Decimal `json:"igst"`
	Total   decimal.Decimal `json:"total"`
}

// SummarizeByRate totals invoice lines per GST rate, skipping cancelled
// invoices, ordered by rate
func SummarizeByRate(invoices []models.Invoice) []RateSummary {
	byRate := make(map[float64]*RateSummary)
	for _, inv := range invoices {
		if inv.Status == models.InvoiceStatusCancelled {
			continue
		}
		for _, item := range inv.Items {
			s, ok := byRate[item.GSTRate]
			if !ok {
				s = &RateSummary{GSTRate: item.GSTRate}
				byRate[item.GSTRate] = s
			}
			s.Taxable = s.Taxable.Add(item.TaxableAmount)
			s.CGST = s.CGST.Add(item.CGST)
			s.SGST = s.SGST.Add(item.SGST)
			s.IGST = s.IGST.Add(item.IGST)
			s.Total = s.Total.Add(item.LineTotal)
		}
	}

	out := make([]RateSummary, 0, len(byRate))
	for _, s := range byRate {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GSTRate < out[j].GSTRate })
	return out
}

// InvoiceRegister builds an xlsx with one row per invoice and a GST summary
// sheet per tax rate
func InvoiceRegister(invoices []models.Invoice) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoicesSheet); err != nil {
		return nil, err
	}
	headerStyle, _ := f.NewStyle(headerStyleDef())

	headers := []string{"Invoice Number", "Date", "Financial Year", "Customer", "Customer GSTIN", "Place of Supply",
		"Supply Type", "Taxable", "CGST", "SGST", "IGST", "Total", "Status"}
	writeHeader(f, invoicesSheet, headers, headerStyle)

	for i, inv := range invoices {
		row := i + 2
		values := []interface{}{
			inv.InvoiceNumber,
			inv.InvoiceDate.Format(models.DateLayout),
			inv.FinancialYear,
			inv.CustomerName,
			inv.CustomerGSTIN,
			inv.BuyerState,
			string(inv.SupplyType),
			inv.Subtotal.InexactFloat64(),
			inv.CGST.InexactFloat64(),
			inv.SGST.InexactFloat64(),
			inv.IGST.InexactFloat64(),
			inv.Total.InexactFloat64(),
			string(inv.Status),
		}
		writeRow(f, invoicesSheet, row, values)
	}

	if _, err := f.NewSheet(gstSummarySheet); err != nil {
		return nil, err
	}
	writeHeader(f, gstSummarySheet, []string{"GST Rate %", "Taxable", "CGST", "SGST", "IGST", "Total"}, headerStyle)
	for i, s := range SummarizeByRate(invoices) {
		writeRow(f, gstSummarySheet, i+2, []interface{}{
			s.GSTRate,
			s.Taxable.InexactFloat64(),
			s.CGST.InexactFloat64(),
			s.SGST.InexactFloat64(),
			s.IGST.InexactFloat64(),
			s.Total.InexactFloat64(),
		})
	}

	return f.WriteToBuffer()
}

// ProductTemplate builds the product import template
func ProductTemplate() (*bytes.Buffer, error) {
	return productWorkbook(nil, true)
}

// ProductsWorkbook exports products in the import layout
func ProductsWorkbook(products []models.Product) (*bytes.Buffer, error) {
	return productWorkbook(products, false)
}

func productWorkbook(products []models.Product, example bool) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productsSheet); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(headerStyleDef())
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, column := range productColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		header := column.Name
		style := headerStyle
		if column.Required {
			header += " *"
			style = requiredStyle
		}
		f.SetCellValue(productsSheet, cell, header)
		f.SetCellStyle(productsSheet, cell, cell, style)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(productsSheet, colName, colName, 20)
	}

	if example {
		for i, column := range productColumns {
			cell, _ := excelize.CoordinatesToCellName(i+1, 2)
			f.SetCellValue(productsSheet, cell, column.Example)
		}
	}

	for i, p := range products {
		writeRow(f, productsSheet, i+2, []interface{}{
			p.Name, p.Description, p.HSNCode, p.Price, p.GSTRate, p.Unit, strings.Join(p.Tags, ","),
		})
	}

	return f.WriteToBuffer()
}

// ParseProducts reads products from an xlsx in the import layout. Rows
// with errors are reported and skipped.
func ParseProducts(r io.Reader) ([]models.Product, []ImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open Excel file: %w", ErrInvalidImportFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: no sheets found in Excel file", ErrInvalidImportFile)
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, productsSheet) {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read sheet: %w", ErrInvalidImportFile, err)
	}
	if len(excelRows) < 2 {
		return nil, nil, fmt.Errorf("%w: file must have a header row and at least one data row", ErrInvalidImportFile)
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(headers[i])), " *")
	}

	var products []models.Product
	var rowErrors []ImportRowError
	seen := make(map[string]bool)

	for idx, excelRow := range excelRows[1:] {
		rowNum := idx + 2
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		if isBlankRow(row) {
			continue
		}

		product, errs := productFromRow(rowNum, row)
		if len(errs) > 0 {
			rowErrors = append(rowErrors, errs...)
			continue
		}
		key := strings.ToLower(product.Name)
		if seen[key] {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "name", Message: "duplicate product name in file"})
			continue
		}
		seen[key] = true
		products = append(products, product)
	}

	return products, rowErrors, nil
}

func productFromRow(rowNum int, row map[string]string) (models.Product, []ImportRowError) {
	var errs []ImportRowError
	fail := func(field, msg string) {
		errs = append(errs, ImportRowError{Row: rowNum, Field: field, Message: msg})
	}

	p := models.Product{
		Name:        row["name"],
		Description: row["description"],
		HSNCode:     row["hsncode"],
		Unit:        row["unit"],
	}
	if p.Name == "" {
		fail("name", "name is required")
	}
	if p.HSNCode != "" && !validation.IsHSN(p.HSNCode) {
		fail("hsnCode", "HSN code must be 4, 6 or 8 digits")
	}

	price, err := strconv.ParseFloat(row["price"], 64)
	if err != nil || price < 0 {
		fail("price", "price must be a non-negative number")
	}
	p.Price = price

	rate, err := strconv.ParseFloat(row["gstrate"], 64)
	if err != nil || rate < 0 || rate > 100 {
		fail("gstRate", "gstRate must be between 0 and 100")
	}
	p.GSTRate = rate

	if p.Unit == "" {
		p.Unit = "pcs"
	}
	if tags := row["tags"]; tags != "" {
		var list []string
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				list = append(list, t)
			}
		}
		p.Tags = pq.StringArray(list)
	}
	return p, errs
}

func isBlankRow(row map[string]string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func headerStyleDef() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	}
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, 18)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}
