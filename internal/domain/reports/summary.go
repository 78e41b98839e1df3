// Package reports aggregates stored transactions into the yearly summary,
// the vendor-by-month expense matrix, and the downloadable renderings of
// both (PDF, CSV, Excel).
package reports

import (
	"log/slog"
	"sort"
	"time"

	"github.com/finhelm/statement-api/internal/domain/transaction"
	"github.com/finhelm/statement-api/pkg/money"
)

// MonthlyTotal is one month's income/expense/net rollup.
type MonthlyTotal struct {
	Income   money.Amount `json:"income"`
	Expenses money.Amount `json:"expenses"`
	Net      money.Amount `json:"net"`
}

// Summary is the yearly aggregate. Category totals cover expenses only, as
// absolute values; income transactions never appear there.
type Summary struct {
	TotalIncome      money.Amount            `json:"total_income"`
	TotalExpenses    money.Amount            `json:"total_expenses"`
	CategoryTotals   map[string]money.Amount `json:"category_totals"`
	TransactionCount int                     `json:"transaction_count"`
	MonthlyTotals    map[string]MonthlyTotal `json:"monthly_totals"`
}

// Generator builds yearly reports from the transaction store.
type Generator struct {
	store  transaction.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewGenerator(store transaction.Store, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		store:  store,
		logger: logger.With("component", "reports"),
		now:    time.Now,
	}
}

// Summary aggregates a year. An unknown year yields zeros with empty maps,
// not an error.
func (g *Generator) Summary(year string) Summary {
	s := Summary{
		CategoryTotals: map[string]money.Amount{},
		MonthlyTotals:  map[string]MonthlyTotal{},
	}

	months, ok := g.store.Months(year)
	if !ok {
		return s
	}

	for _, month := range months {
		bucket, _ := g.store.Bucket(year, month)

		var income, expenses money.Amount
		for _, tx := range bucket.Transactions {
			switch {
			case tx.Amount.IsPositive():
				income = income.Add(tx.Amount)
				s.TotalIncome = s.TotalIncome.Add(tx.Amount)
			case tx.Amount.IsNegative():
				abs := tx.Amount.Abs()
				expenses = expenses.Add(abs)
				s.TotalExpenses = s.TotalExpenses.Add(abs)
				s.CategoryTotals[tx.Category] = s.CategoryTotals[tx.Category].Add(abs)
			}
		}
		s.MonthlyTotals[month] = MonthlyTotal{
			Income:   income,
			Expenses: expenses,
			Net:      income.Sub(expenses),
		}
		s.TransactionCount += len(bucket.Transactions)
	}
	return s
}

type categoryTotal struct {
	Name   string
	Amount money.Amount
}

// sortedCategories lists category totals largest first, name ascending on
// ties so renderings are stable.
func (s Summary) sortedCategories() []categoryTotal {
	out := make([]categoryTotal, 0, len(s.CategoryTotals))
	for name, amount := range s.CategoryTotals {
		out = append(out, categoryTotal{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// dateRange finds the earliest and latest transaction dates in a year.
func (g *Generator) dateRange(year string) (min, max time.Time, ok bool) {
	months, found := g.store.Months(year)
	if !found {
		return time.Time{}, time.Time{}, false
	}
	for _, month := range months {
		bucket, _ := g.store.Bucket(year, month)
		for _, tx := range bucket.Transactions {
			d := tx.Date.Time
			if !ok || d.Before(min) {
				min = d
			}
			if !ok || d.After(max) {
				max = d
			}
			ok = true
		}
	}
	return min, max, ok
}
