package categorization

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhelm/statement-api/pkg/money"
)

func amt(f float64) *money.Amount {
	a := money.FromFloat(f)
	return &a
}

func TestCategorizeSpecialCases(t *testing.T) {
	tests := []struct {
		name        string
		description string
		amount      *money.Amount
		want        Category
	}{
		{"tesla supercharger", "TESLA SUPERCHARGER US CA", amt(-18.50), EVGas},
		{"tesla charge keyword", "TESLA CHARGE 0042", amt(-30), EVGas},
		{"tesla service", "TESLA SERVICE CENTER TOWSON", amt(-310), RepairsMaintenance},
		{"home depot over generic list", "HOME DEPOT #4521", amt(-89.99), RepairsMaintenance},
		{"hdphotohub", "HDPHOTOHUB LLC SUBSCRIPTION", amt(-45), Software},
		{"affirm", "AFFIRM PAYMENT 855-423-3729", amt(-120), Equipment},
		{"amex", "AMEX EPAYMENT ACH PMT", amt(-500), BankFees},
		{"square deposit is sales", "SQUARE INC DES:250301P2", amt(1250.00), Sales},
		{"square debit stays uncategorized", "SQUARE INC DES:250301P2", amt(-57.12), Uncategorized},
		{"sq star prefix deposit", "SQ *COFFEE COLLECTIVE", amt(75.50), Sales},
		{"sq star prefix debit", "SQ *COFFEE COLLECTIVE", amt(-8.25), Uncategorized},
		{"square prefix nil amount", "SQUARE 024581", nil, Uncategorized},
		{"apple", "APPLE.COM/BILL 866-712-7753", amt(-9.99), Software},
		{"bank of america overdraft code", "BK OD AMER FEE REFUND", amt(35), BankFees},
		{"cubicasa", "CUBICASA OY FLOOR PLANS", amt(-24), Software},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.description, tt.amount))
		})
	}
}

func TestCategorizeKeywordTable(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        Category
	}{
		{"stripe", "STRIPE TRANSFER ST-K8Y2", Processing},
		{"overdraft", "OVERDRAFT ITEM RETURNED", BankFees},
		{"amazon", "AMAZON MARKETPLACE", Supplies},
		{"google workspace", "GOOGLE *GSUITE_acmerealty", Software},
		{"mcdonalds", "MCDONALD'S F13681", Meals},
		{"ups store", "THE UPS STORE 0679", Shipping},
		{"uber", "UBER TRIP HELP.UBER.COM", Travel},
		{"bge", "BGE BALT GAS AND ELEC", Utilities},
		{"cpa", "JOHNSON CPA SERVICES", ProfessionalServices},
		{"nothing matches", "WIRE TRANSFER REF 99812", Uncategorized},
		{"empty description", "", Uncategorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.description, amt(-10)))
		})
	}
}

func TestCategorizeTableOrderBreaksTies(t *testing.T) {
	// "google ads" carries both the Advertisement keyword "ad" and the
	// Marketing keyword "google ads"; Advertisement sits higher in the
	// table, so it wins.
	assert.Equal(t, Advertisement, Categorize("GOOGLE ADS8841662217", amt(-200)))

	// "fee" (Bank Fees) outranks "shipping" (Shipping).
	assert.Equal(t, BankFees, Categorize("SHIPPING FEE ADJUSTMENT", amt(-12)))
}

func TestCategorizeSubstringSemantics(t *testing.T) {
	// Keyword matching is substring, not whole-word: "ad" inside
	// "TRADING" still selects Advertisement.
	assert.Equal(t, Advertisement, Categorize("TRADING POST LLC", amt(-40)))

	// "charge" inside "SURCHARGE" selects Bank Fees.
	assert.Equal(t, BankFees, Categorize("CARD SURCHARGE 2%", amt(-1.50)))
}

func TestCategorizeIgnoresAmountOutsideSquare(t *testing.T) {
	for _, amount := range []*money.Amount{amt(-50), amt(50), nil} {
		assert.Equal(t, Supplies, Categorize("STAPLES 00109209", amount))
	}
}

func TestCategorizeIsPureAndConcurrencySafe(t *testing.T) {
	inputs := []string{
		"TESLA SUPERCHARGER US CA",
		"SQ *COFFEE COLLECTIVE",
		"AMAZON MARKETPLACE",
		"WIRE TRANSFER REF 99812",
	}
	want := make([]Category, len(inputs))
	for i, in := range inputs {
		want[i] = Categorize(in, amt(-10))
	}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 200; round++ {
				for i, in := range inputs {
					if got := Categorize(in, amt(-10)); got != want[i] {
						t.Errorf("Categorize(%q) = %q, want %q", in, got, want[i])
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestCategoryEnumeration(t *testing.T) {
	all := All()
	require.Len(t, all, 19)
	assert.Equal(t, Uncategorized, all[0])
	assert.Equal(t, Other, all[len(all)-1])

	t.Run("every rule category is a member", func(t *testing.T) {
		for _, rule := range KeywordRules {
			assert.True(t, Valid(string(rule.Category)), "rule category %q", rule.Category)
		}
	})

	t.Run("membership", func(t *testing.T) {
		assert.True(t, Valid("Meals 50%"))
		assert.True(t, Valid("EV/Gas"))
		assert.False(t, Valid("meals 50%"))
		assert.False(t, Valid("Groceries"))
	})

	t.Run("All returns a copy", func(t *testing.T) {
		mutated := All()
		mutated[0] = "Tampered"
		assert.Equal(t, Uncategorized, All()[0])
	})
}

func TestKeywordEngineMatchesNaiveScan(t *testing.T) {
	naive := func(desc string) (Category, bool) {
		for _, rule := range KeywordRules {
			for _, kw := range rule.Keywords {
				if strings.Contains(desc, kw) {
					return rule.Category, true
				}
			}
		}
		return "", false
	}

	gen := money.NewStatementGeneratorWithSeed(99)
	for i := 0; i < 500; i++ {
		desc := strings.ToLower(gen.Merchant())
		wantCat, wantOK := naive(desc)
		gotCat, gotOK := keywordEngine.match(desc)
		require.Equal(t, wantOK, gotOK, "match disagreement for %q", desc)
		assert.Equal(t, wantCat, gotCat, "category disagreement for %q", desc)
	}
}

func BenchmarkCategorize(b *testing.B) {
	gen := money.NewStatementGeneratorWithSeed(7)
	descriptions := make([]string, 1000)
	for i := range descriptions {
		descriptions[i] = gen.Merchant()
	}
	amount := amt(-25)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Categorize(descriptions[i%len(descriptions)], amount)
	}
}

func BenchmarkCategorizeTableScanComparison(b *testing.B) {
	// Naive top-down scan, the semantics the automaton must reproduce.
	naive := func(desc string) Category {
		for _, rule := range KeywordRules {
			for _, kw := range rule.Keywords {
				if strings.Contains(desc, kw) {
					return rule.Category
				}
			}
		}
		return Uncategorized
	}

	gen := money.NewStatementGeneratorWithSeed(7)
	descriptions := make([]string, 1000)
	for i := range descriptions {
		descriptions[i] = strings.ToLower(gen.Merchant())
	}

	b.Run("automaton", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			keywordEngine.match(descriptions[i%len(descriptions)])
		}
	})
	b.Run("scan", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			naive(descriptions[i%len(descriptions)])
		}
	})
}
