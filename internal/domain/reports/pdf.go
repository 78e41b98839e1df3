package reports

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/finhelm/statement-api/pkg/money"
)

const periodLayout = "January 02, 2006"

// letterSize is the Letter sheet in millimeters; AddPageFormat rotates it
// for the landscape vendor matrix.
var letterSize = fpdf.SizeType{Wd: 215.9, Ht: 279.4}

// RenderPDF produces the two-page expense summary: a portrait totals page
// followed by a landscape vendor-by-month matrix. Unknown years still render,
// with a "no transactions" period line and empty tables.
func (g *Generator) RenderPDF(year string) ([]byte, error) {
	summary := g.Summary(year)
	pivot := g.VendorPivot(year)

	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetTitle("Business Expense Summary - "+year, false)

	g.renderSummaryPage(doc, year, summary)
	renderPivotPage(doc, pivot)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering expense summary pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFDownloadName is the attachment filename, stamped with today's date.
func (g *Generator) PDFDownloadName() string {
	return "expense-summary-" + g.now().Format("2006-01-02") + ".pdf"
}

func (g *Generator) renderSummaryPage(doc *fpdf.Fpdf, year string, s Summary) {
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 12, "Business Expense Summary - "+year, "", 1, "C", false, 0, "")

	period := "Period: No transactions available"
	if min, max, ok := g.dateRange(year); ok {
		period = fmt.Sprintf("Period: %s - %s", min.Format(periodLayout), max.Format(periodLayout))
	}
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 8, period, "", 1, "C", false, 0, "")
	doc.Ln(6)

	doc.SetFillColor(230, 230, 230)
	summaryRows := []struct{ label, value string }{
		{"Total Income", s.TotalIncome.Display()},
		{"Total Expenses", s.TotalExpenses.Display()},
		{"Net Income", s.TotalIncome.Sub(s.TotalExpenses).Display()},
		{"Total Transactions", strconv.Itoa(s.TransactionCount)},
	}
	for _, r := range summaryRows {
		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(70, 8, r.label, "1", 0, "L", true, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(50, 8, r.value, "1", 1, "R", false, 0, "")
	}
	doc.Ln(8)

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 9, "Expense Categories", "", 1, "L", false, 0, "")
	doc.Ln(2)

	if len(s.CategoryTotals) == 0 {
		doc.SetFont("Helvetica", "I", 11)
		doc.CellFormat(0, 8, "No expense data available", "", 1, "L", false, 0, "")
		return
	}

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(80, 8, "Category", "1", 0, "L", true, 0, "")
	doc.CellFormat(45, 8, "Amount", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 8, "Percentage", "1", 1, "R", true, 0, "")
	doc.SetFont("Helvetica", "", 11)
	for _, c := range s.sortedCategories() {
		doc.CellFormat(80, 8, c.Name, "1", 0, "L", false, 0, "")
		doc.CellFormat(45, 8, c.Amount.Display(), "1", 0, "R", false, 0, "")
		pct := fmt.Sprintf("%.1f%%", c.Amount.PercentOf(s.TotalExpenses))
		doc.CellFormat(35, 8, pct, "1", 1, "R", false, 0, "")
	}
}

func renderPivotPage(doc *fpdf.Fpdf, p VendorPivot) {
	doc.AddPageFormat("L", letterSize)

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 9, "Expenses by Vendor/Category Across Months", "", 1, "L", false, 0, "")
	doc.Ln(2)

	if len(p.Rows) == 0 {
		doc.SetFont("Helvetica", "I", 11)
		doc.CellFormat(0, 8, "No expense transactions found for the year.", "", 1, "L", false, 0, "")
		return
	}

	pageW, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()
	vendorW := 56.0
	monthW := (pageW - left - right - vendorW) / 12

	doc.SetFillColor(230, 230, 230)
	doc.SetFont("Helvetica", "B", 7)
	doc.CellFormat(vendorW, 7, "Expenses", "1", 0, "L", true, 0, "")
	for m := time.January; m <= time.December; m++ {
		doc.CellFormat(monthW, 7, m.String()[:3], "1", 0, "C", true, 0, "")
	}
	doc.Ln(7)

	doc.SetFont("Helvetica", "", 7)
	for _, row := range p.Rows {
		doc.CellFormat(vendorW, 6, truncate(row.Vendor, 34), "1", 0, "L", false, 0, "")
		for _, cell := range row.Cells {
			doc.CellFormat(monthW, 6, dashUnlessVisible(cell), "1", 0, "R", false, 0, "")
		}
		doc.Ln(6)
	}

	doc.SetFont("Helvetica", "B", 7)
	doc.CellFormat(vendorW, 7, "Total Cash Out", "1", 0, "L", true, 0, "")
	for _, total := range p.Totals {
		label := "-"
		if !total.IsZero() {
			label = total.Display()
		}
		doc.CellFormat(monthW, 7, label, "1", 0, "R", true, 0, "")
	}
	doc.Ln(7)
}

// dashUnlessVisible prints a dash for anything under half a cent, so the
// matrix reads as presence rather than a wall of $0.00.
func dashUnlessVisible(v money.Amount) string {
	if f := v.Float64(); f > -0.004 && f < 0.004 {
		return "-"
	}
	return v.Display()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
