// Package parser normalizes the amount and date cell formats found on bank
// statements into typed values. Both parsers are strict: a cell either
// yields a value or an error the extractor turns into a skipped candidate.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/finhelm/statement-api/internal/domain/transaction"
	"github.com/finhelm/statement-api/pkg/money"
)

var (
	// DatePattern matches a date-shaped substring anywhere in a line.
	DatePattern = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)

	// DatePrefixPattern anchors DatePattern at the start of a table cell.
	DatePrefixPattern = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)

	// AmountPattern matches a digit run with optional grouping and decimals.
	AmountPattern = regexp.MustCompile(`[\d,]+\.?\d*`)
)

var currencyChars = strings.NewReplacer(",", "", "$", "")

// ParseAmount converts a raw statement amount cell to a signed value.
// Thousands separators and dollar signs are stripped; a parenthesized
// value is negative per accounting convention. The whole cleaned cell must
// be numeric: "45.67 CR" does not parse, so trailing markers never
// silently flip a sign.
func ParseAmount(raw string) (money.Amount, error) {
	cleaned := currencyChars.Replace(strings.TrimSpace(raw))
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}
	cleaned = strings.TrimSuffix(cleaned, ".")

	amount, err := money.FromString(cleaned)
	if err != nil {
		return money.Amount{}, fmt.Errorf("amount cell %q: %w", raw, err)
	}
	return amount, nil
}

// Statement cells use month/day/year with the two-digit form dominant.
// Both layouts accept unpadded components, and two-digit years pivot at
// 69 (24 -> 2024, 99 -> 1999), matching the upstream statement data.
var dateLayouts = []string{"1/2/06", "1/2/2006"}

// ParseDate converts a raw statement date cell to a calendar day. The
// two-digit-year layout is tried first, then the four-digit form. Hyphen
// separators survive candidate detection but fail here; those rows are
// dropped by the extractor like any other parse failure.
func ParseDate(raw string) (transaction.Date, error) {
	cleaned := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return transaction.Date{Time: t}, nil
		}
	}
	return transaction.Date{}, fmt.Errorf("unrecognized date cell %q", raw)
}
