// Package transaction defines the transaction record model and the
// year/month bucket store the rest of the service reads and writes.
package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/finhelm/statement-api/pkg/money"
)

// DateLayout is the wire format for transaction dates.
const DateLayout = "2006-01-02"

// Date is a calendar day. It serializes as an ISO-8601 day string
// ("2024-03-01") rather than a full timestamp.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the wire format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the two-digit month ("03") used as a bucket column key.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%02d", int(d.Month()))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

// Transaction is one statement line item. Positive amounts are
// income/credits, negative are expenses/debits. Category is always a member
// of the categorization enumeration, Uncategorized by default.
type Transaction struct {
	ID          string       `json:"id"`
	Date        Date         `json:"date"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	Category    string       `json:"category"`
}

// PDFInfo records where a bucket's transactions came from.
type PDFInfo struct {
	Filename         string    `json:"filename"`
	UploadDate       time.Time `json:"upload_date"`
	TransactionCount int       `json:"transaction_count"`
}

// Bucket is a point-in-time snapshot of one year/month container.
type Bucket struct {
	Transactions []Transaction `json:"transactions"`
	PDFInfo      *PDFInfo      `json:"pdf_info"`
	Processed    bool          `json:"processed"`
}

// Patch carries the fields an update overwrites; nil fields are untouched.
type Patch struct {
	Date        *Date
	Description *string
	Amount      *money.Amount
	Category    *string
}

// WorkflowStatus summarizes month-close progress for one year.
type WorkflowStatus struct {
	TotalMonths     int             `json:"total_months"`
	ProcessedMonths int             `json:"processed_months"`
	Completed       bool            `json:"completed"`
	Months          map[string]bool `json:"months,omitempty"`
}
