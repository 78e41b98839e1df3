package categorization

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/finhelm/statement-api/pkg/money"
)

// Categorize maps a description and signed amount to a category.
// Vendor-specific overrides run first, then the keyword table; anything
// unmatched is Uncategorized. Matching is case-insensitive throughout.
// The amount only matters for the square/sq-* override; nil means the
// amount is unknown, which that override treats as not-positive.
func Categorize(description string, amount *money.Amount) Category {
	desc := strings.ToLower(description)

	if c, ok := specialCase(desc, amount); ok {
		return c
	}
	if c, ok := keywordEngine.match(desc); ok {
		return c
	}
	return Uncategorized
}

// specialCase handles vendors the generic table would misfile. Order
// matters: each case shadows every rule below it and the whole table.
func specialCase(desc string, amount *money.Amount) (Category, bool) {
	switch {
	case strings.Contains(desc, "tesla"):
		// Supercharging is fuel; anything else Tesla is service work.
		if strings.Contains(desc, "super") || strings.Contains(desc, "charge") {
			return EVGas, true
		}
		return RepairsMaintenance, true

	case strings.Contains(desc, "home depot"):
		return RepairsMaintenance, true

	case strings.Contains(desc, "hdphotohub"):
		return Software, true

	case strings.Contains(desc, "affirm"):
		return Equipment, true

	case strings.Contains(desc, "amex"):
		return BankFees, true

	case strings.Contains(desc, "square inc"),
		strings.HasPrefix(desc, "square "),
		strings.HasPrefix(desc, "sq *"):
		// Square deposits are sales revenue. Square debits are NOT
		// processing fees; they stay uncategorized for manual review.
		if amount != nil && amount.IsPositive() {
			return Sales, true
		}
		return Uncategorized, true

	case strings.Contains(desc, "apple"):
		return Software, true

	case strings.Contains(desc, "bk od amer"):
		return BankFees, true

	case strings.Contains(desc, "cubicasa"):
		return Software, true
	}
	return "", false
}

// matcher answers keyword-table lookups with a single Aho-Corasick scan
// over the full keyword set instead of len(rules) x len(keywords) substring
// probes. Among matched keywords the lowest rule index wins, which gives
// the same answer as a top-down scan of KeywordRules.
type matcher struct {
	automaton *ahocorasick.Matcher
	ruleIndex []int // keyword position -> index into KeywordRules
}

var keywordEngine = newMatcher(KeywordRules)

func newMatcher(rules []KeywordRule) *matcher {
	var keywords []string
	var ruleIndex []int
	for i, rule := range rules {
		for _, kw := range rule.Keywords {
			keywords = append(keywords, kw)
			ruleIndex = append(ruleIndex, i)
		}
	}
	return &matcher{
		automaton: ahocorasick.NewStringMatcher(keywords),
		ruleIndex: ruleIndex,
	}
}

func (m *matcher) match(desc string) (Category, bool) {
	hits := m.automaton.MatchThreadSafe([]byte(desc))
	if len(hits) == 0 {
		return "", false
	}
	best := len(KeywordRules)
	for _, hit := range hits {
		if idx := m.ruleIndex[hit]; idx < best {
			best = idx
		}
	}
	return KeywordRules[best].Category, true
}
