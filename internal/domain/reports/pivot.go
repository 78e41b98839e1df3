package reports

import (
	"sort"

	"github.com/finhelm/statement-api/internal/domain/normalizer"
	"github.com/finhelm/statement-api/pkg/money"
)

// monthColumns are the pivot's column keys, January through December.
var monthColumns = [12]string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}

// VendorRow is one vendor's expenses spread across the twelve months.
type VendorRow struct {
	Vendor string           `json:"vendor"`
	Cells  [12]money.Amount `json:"cells"`
	Total  money.Amount     `json:"total"`
}

// VendorPivot is the vendor-by-month expense matrix for one year. Rows are
// sorted by yearly total, largest spend first. Only expense transactions
// contribute; amounts are absolute values.
type VendorPivot struct {
	Year   string           `json:"year"`
	Months [12]string       `json:"months"`
	Rows   []VendorRow      `json:"rows"`
	Totals [12]money.Amount `json:"totals"`
}

// VendorPivot builds the expense matrix for a year. Vendors are the
// normalized transaction descriptions, so "AMAZON MKTPL*2X4YZ" and
// "AMAZON MARKETPLACE" fold into one row.
func (g *Generator) VendorPivot(year string) VendorPivot {
	p := VendorPivot{Year: year, Months: monthColumns}

	months, ok := g.store.Months(year)
	if !ok {
		return p
	}

	cells := map[string]*VendorRow{}
	for _, month := range months {
		bucket, _ := g.store.Bucket(year, month)
		for _, tx := range bucket.Transactions {
			if !tx.Amount.IsNegative() {
				continue
			}
			idx := int(tx.Date.Month()) - 1
			if idx < 0 || idx > 11 {
				continue
			}
			vendor := normalizer.Normalize(tx.Description)
			row, seen := cells[vendor]
			if !seen {
				row = &VendorRow{Vendor: vendor}
				cells[vendor] = row
			}
			abs := tx.Amount.Abs()
			row.Cells[idx] = row.Cells[idx].Add(abs)
			row.Total = row.Total.Add(abs)
			p.Totals[idx] = p.Totals[idx].Add(abs)
		}
	}

	p.Rows = make([]VendorRow, 0, len(cells))
	for _, row := range cells {
		p.Rows = append(p.Rows, *row)
	}
	sort.Slice(p.Rows, func(i, j int) bool {
		if c := p.Rows[i].Total.Cmp(p.Rows[j].Total); c != 0 {
			return c > 0
		}
		return p.Rows[i].Vendor < p.Rows[j].Vendor
	})
	return p
}
