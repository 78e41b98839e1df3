package reports

import (
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/finhelm/statement-api/internal/domain/normalizer"
)

// exportRow is one transaction flattened for tabular export.
type exportRow struct {
	Year        string  `csv:"year"`
	Month       string  `csv:"month"`
	ID          string  `csv:"id"`
	Date        string  `csv:"date"`
	Description string  `csv:"description"`
	Amount      string  `csv:"amount"`
	Category    string  `csv:"category"`
	Vendor      string  `csv:"vendor"`
	AmountValue float64 `csv:"-"`
}

func (g *Generator) exportRows(year string) []exportRow {
	months, ok := g.store.Months(year)
	if !ok {
		return nil
	}
	var rows []exportRow
	for _, month := range months {
		bucket, _ := g.store.Bucket(year, month)
		for _, tx := range bucket.Transactions {
			rows = append(rows, exportRow{
				Year:        year,
				Month:       month,
				ID:          tx.ID,
				Date:        tx.Date.String(),
				Description: tx.Description,
				Amount:      tx.Amount.String(),
				Category:    tx.Category,
				Vendor:      normalizer.Normalize(tx.Description),
				AmountValue: tx.Amount.Float64(),
			})
		}
	}
	return rows
}

// RenderCSV flattens a year's transactions to CSV, header row included.
// Unknown years yield a header-only file.
func (g *Generator) RenderCSV(year string) ([]byte, error) {
	rows := g.exportRows(year)
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return nil, fmt.Errorf("rendering transactions csv: %w", err)
	}
	return []byte(out), nil
}

// CSVDownloadName is the attachment filename for the CSV export.
func (g *Generator) CSVDownloadName(year string) string {
	return "transactions-" + year + ".csv"
}

// RenderExcel builds a workbook with a Transactions sheet mirroring the CSV
// export and a Summary sheet of the yearly totals.
func (g *Generator) RenderExcel(year string) ([]byte, error) {
	rows := g.exportRows(year)
	summary := g.Summary(year)

	f := excelize.NewFile()
	defer f.Close()

	const txSheet = "Transactions"
	if err := f.SetSheetName("Sheet1", txSheet); err != nil {
		return nil, fmt.Errorf("renaming transactions sheet: %w", err)
	}

	headers := []string{"Year", "Month", "ID", "Date", "Description", "Amount", "Category", "Vendor"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(txSheet, cell, h); err != nil {
			return nil, fmt.Errorf("writing transactions header: %w", err)
		}
	}
	for i, row := range rows {
		values := []any{row.Year, row.Month, row.ID, row.Date, row.Description, row.AmountValue, row.Category, row.Vendor}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(txSheet, cell, v); err != nil {
				return nil, fmt.Errorf("writing transaction row %d: %w", i+1, err)
			}
		}
	}

	if err := writeSummarySheet(f, year, summary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("rendering transactions workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExcelDownloadName is the attachment filename for the workbook export.
func (g *Generator) ExcelDownloadName(year string) string {
	return "transactions-" + year + ".xlsx"
}

func writeSummarySheet(f *excelize.File, year string, s Summary) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	lines := [][2]any{
		{"Metric", "Value"},
		{"Year", year},
		{"Total Income", s.TotalIncome.Float64()},
		{"Total Expenses", s.TotalExpenses.Float64()},
		{"Net Income", s.TotalIncome.Sub(s.TotalExpenses).Float64()},
		{"Total Transactions", s.TransactionCount},
	}
	rowIdx := 1
	for _, line := range lines {
		for col, v := range line {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing summary sheet: %w", err)
			}
		}
		rowIdx++
	}

	rowIdx++
	categoryLines := [][2]any{{"Category", "Amount"}}
	for _, c := range s.sortedCategories() {
		categoryLines = append(categoryLines, [2]any{c.Name, c.Amount.Float64()})
	}
	for _, line := range categoryLines {
		for col, v := range line {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing summary sheet: %w", err)
			}
		}
		rowIdx++
	}
	return nil
}
