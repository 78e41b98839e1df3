// Package extraction turns parsed statement pages into transaction records.
// Two passes run on every page: a table pass over detected cell grids, then
// a text-line pass over the page's raw text. Both passes are best-effort,
// dropping candidates that fail either parse, and both accumulate into one
// page-ordered result.
package extraction

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/finhelm/statement-api/internal/domain/categorization"
	"github.com/finhelm/statement-api/internal/domain/extraction/parser"
	"github.com/finhelm/statement-api/internal/domain/transaction"
)

// Source is a parsed statement document. Page indexes are 1-based.
type Source interface {
	PageCount() int
	Page(i int) (Page, error)
}

// Page exposes the two primitives candidate detection runs on.
type Page interface {
	// Tables returns detected tables as grids of cell strings.
	Tables() [][][]string
	// Text returns the page text as newline-separated lines.
	Text() string
}

// Extractor drives candidate detection, parsing, and categorization.
type Extractor struct {
	keepDuplicates bool
	logger         *slog.Logger
	tracer         trace.Tracer
}

// Option configures an Extractor.
type Option func(*Extractor)

// KeepDuplicateRows controls whether the text pass re-emits rows the table
// pass already produced for the same page. The default is true, which
// matches how existing statements were ingested; false drops exact
// (date, description, amount) repeats within a page.
func KeepDuplicateRows(keep bool) Option {
	return func(e *Extractor) { e.keepDuplicates = keep }
}

// New creates an Extractor.
func New(logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		keepDuplicates: true,
		logger:         logger.With("component", "extraction"),
		tracer:         otel.Tracer("github.com/finhelm/statement-api/internal/domain/extraction"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract walks every page of src and returns the transactions found, in
// page order with each page's table rows ahead of its text rows. Pages
// that cannot be read contribute nothing; an empty document yields an
// empty result. Record ids are left blank for the ingestion caller.
func (e *Extractor) Extract(ctx context.Context, src Source) []transaction.Transaction {
	_, span := e.tracer.Start(ctx, "extraction.Extract")
	defer span.End()

	var records []transaction.Transaction
	var tableRows, textRows int

	pages := src.PageCount()
	for i := 1; i <= pages; i++ {
		page, err := src.Page(i)
		if err != nil {
			e.logger.Debug("skipping unreadable page", "page", i, "error", err)
			continue
		}

		fromTables := e.tablePass(page.Tables())
		records = append(records, fromTables...)
		tableRows += len(fromTables)

		var seen map[rowKey]struct{}
		if !e.keepDuplicates {
			seen = make(map[rowKey]struct{}, len(fromTables))
			for _, r := range fromTables {
				seen[keyOf(r)] = struct{}{}
			}
		}

		fromText := e.textPass(page.Text(), seen)
		records = append(records, fromText...)
		textRows += len(fromText)
	}

	pagesProcessed.Add(float64(pages))
	rowsExtracted.WithLabelValues("table").Add(float64(tableRows))
	rowsExtracted.WithLabelValues("text").Add(float64(textRows))

	span.SetAttributes(
		attribute.Int("statement.pages", pages),
		attribute.Int("statement.table_rows", tableRows),
		attribute.Int("statement.text_rows", textRows),
	)
	e.logger.Debug("extraction complete",
		"pages", pages, "table_rows", tableRows, "text_rows", textRows)

	return records
}

// tablePass scans cell grids for rows shaped like transactions: at least
// three raw cells, a date-shaped first cell, and an amount-shaped last
// cell. Interior cells join into the description.
func (e *Extractor) tablePass(tables [][][]string) []transaction.Transaction {
	var records []transaction.Transaction
	for _, table := range tables {
		for _, row := range table {
			if len(row) < 3 {
				continue
			}
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = strings.TrimSpace(cell)
			}
			if cells[0] == "" {
				continue
			}

			dateCell := cells[0]
			amountCell := cells[len(cells)-1]
			if !parser.DatePrefixPattern.MatchString(dateCell) ||
				!parser.AmountPattern.MatchString(amountCell) {
				continue
			}

			record, ok := e.buildRecord(dateCell, strings.Join(cells[1:len(cells)-1], " "), amountCell)
			if !ok {
				continue
			}
			records = append(records, record)
		}
	}
	return records
}

// textPass scans page text line by line. A line is a candidate when a
// date-shaped and an amount-shaped substring appear anywhere in it; it is
// then tokenized as date, description..., amount. When seen is non-nil,
// rows the table pass already emitted are dropped.
func (e *Extractor) textPass(text string, seen map[rowKey]struct{}) []transaction.Transaction {
	if text == "" {
		return nil
	}

	var records []transaction.Transaction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !parser.DatePattern.MatchString(line) || !parser.AmountPattern.MatchString(line) {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) < 3 {
			continue
		}

		record, ok := e.buildRecord(tokens[0], strings.Join(tokens[1:len(tokens)-1], " "), tokens[len(tokens)-1])
		if !ok {
			continue
		}
		if seen != nil {
			if _, dup := seen[keyOf(record)]; dup {
				continue
			}
		}
		records = append(records, record)
	}
	return records
}

func (e *Extractor) buildRecord(dateCell, description, amountCell string) (transaction.Transaction, bool) {
	amount, err := parser.ParseAmount(amountCell)
	if err != nil {
		e.logger.Debug("dropping candidate", "error", err)
		return transaction.Transaction{}, false
	}
	date, err := parser.ParseDate(dateCell)
	if err != nil {
		e.logger.Debug("dropping candidate", "error", err)
		return transaction.Transaction{}, false
	}

	return transaction.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Category:    categorization.Categorize(description, &amount).String(),
	}, true
}

type rowKey struct {
	date        string
	description string
	amount      string
}

func keyOf(t transaction.Transaction) rowKey {
	return rowKey{
		date:        t.Date.String(),
		description: t.Description,
		amount:      t.Amount.String(),
	}
}
