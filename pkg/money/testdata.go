package money

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// StatementGenerator produces synthetic statement rows and lines for tests
// and benchmarks: raw merchant descriptors, formatted amount cells, and
// date cells in the shapes real bank statements use.
type StatementGenerator struct {
	faker *gofakeit.Faker
}

// NewStatementGenerator creates a generator with a random seed.
func NewStatementGenerator() *StatementGenerator {
	return &StatementGenerator{faker: gofakeit.New(0)}
}

// NewStatementGeneratorWithSeed creates a deterministic generator.
func NewStatementGeneratorWithSeed(seed int64) *StatementGenerator {
	return &StatementGenerator{faker: gofakeit.New(seed)}
}

// Amount produces a statement amount, expense-biased: roughly three out of
// four values are negative debits under $500, the rest credits up to $5,000.
func (g *StatementGenerator) Amount() Amount {
	if g.faker.Number(1, 100) <= 75 {
		cents := int64(g.faker.Number(100, 50000))
		return FromDecimal(decimal.New(-cents, -2))
	}
	cents := int64(g.faker.Number(1000, 500000))
	return FromDecimal(decimal.New(cents, -2))
}

// Date produces a day within the given year and month.
func (g *StatementGenerator) Date(year int, month time.Month) time.Time {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return g.faker.DateRange(start, end)
}

// Merchant returns a raw statement descriptor the way card networks print
// them: uppercase, star-joined processor prefixes, store numbers, city tails.
func (g *StatementGenerator) Merchant() string {
	return g.faker.RandomString(statementMerchants)
}

// RawAmount formats an amount the way a statement cell would print it:
// credits as "$1,234.56", debits in accounting parentheses "(1,234.56)".
func (g *StatementGenerator) RawAmount(a Amount) string {
	formatted := strings.TrimPrefix(a.Abs().Display(), "$")
	if a.IsNegative() {
		return "(" + formatted + ")"
	}
	return "$" + formatted
}

// RawDate formats a date as a statement cell, alternating between the
// compact two-digit-year form ("3/4/24") and the padded four-digit form
// ("03/04/2024").
func (g *StatementGenerator) RawDate(t time.Time) string {
	if g.faker.Bool() {
		return fmt.Sprintf("%d/%d/%02d", int(t.Month()), t.Day(), t.Year()%100)
	}
	return fmt.Sprintf("%02d/%02d/%04d", int(t.Month()), t.Day(), t.Year())
}

// Row produces a three-cell table row: date, description, amount.
func (g *StatementGenerator) Row(year int, month time.Month) []string {
	return []string{
		g.RawDate(g.Date(year, month)),
		g.Merchant(),
		g.RawAmount(g.Amount()),
	}
}

// Rows produces n table rows for the given period.
func (g *StatementGenerator) Rows(n int, year int, month time.Month) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = g.Row(year, month)
	}
	return rows
}

// Line produces a whitespace-tokenized statement text line for the
// text-pass extractor: date first, amount last, descriptor between.
func (g *StatementGenerator) Line(year int, month time.Month) string {
	row := g.Row(year, month)
	return strings.Join(row, " ")
}

// Lines produces n text lines joined the way page text arrives.
func (g *StatementGenerator) Lines(n int, year int, month time.Month) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = g.Line(year, month)
	}
	return strings.Join(lines, "\n")
}

var statementMerchants = []string{
	"AMAZON MKTPL*2X4YZ18A3",
	"AMAZON.COM*MK1TY87U2 AMZN.COM/BILL",
	"SQ *BLUE BOTTLE COFFEE",
	"SQUARE INC *CASH APP",
	"TESLA SUPERCHARGER US CA",
	"TESLA SERVICE CENTER 0042",
	"HOME DEPOT #4521 TOWSON MD",
	"THE UPS STORE 0679",
	"GOOGLE *GSUITE_acmerealty",
	"GOOGLE ADS8841662217",
	"PAYPAL *EBAY INC",
	"MCDONALD'S F13681",
	"STARBUCKS STORE 07938",
	"UBER TRIP HELP.UBER.COM",
	"LYFT *RIDE THU 2PM",
	"BGE BALT GAS AND ELEC",
	"VERIZON WRLS P544201",
	"COMCAST CABLE COMM",
	"STAPLES 00109209",
	"OFFICE DEPOT #1079",
	"ADOBE *CREATIVE CLOUD",
	"MSFT * E0800OQJT1",
	"APPLE.COM/BILL 866-712-7753",
	"AFFIRM PAYMENT 855-423-3729",
	"HDPHOTOHUB LLC",
	"CUBICASA OY",
	"FEDEX OFFIC44100449531",
	"USPS PO 2102940109",
	"CHIPOTLE 2389",
	"DUNKIN #350418 Q35",
	"IKEA BALTIMORE",
	"ADVANCE AUTO PARTS #6582",
	"BK OD AMER FEE REFUND",
	"AMEX EPAYMENT ACH PMT",
	"STRIPE TRANSFER ST-K8Y2",
	"WENDY'S #0231",
	"PANERA BREAD #204861",
	"ZOOM.US 888-799-9666",
	"DROPBOX*9XKQ2PYRW3J4",
	"CANVA* I03410-2487209",
}
