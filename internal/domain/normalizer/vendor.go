// Package normalizer maps noisy statement descriptions to canonical vendor
// names for report aggregation. An ordered regex rule list runs first; when
// nothing matches, a cleanup heuristic produces a readable label from the
// description's leading words.
package normalizer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// VendorRule pairs a pattern with the canonical vendor name it selects.
type VendorRule struct {
	Pattern   *regexp.Regexp
	Canonical string
}

// VendorRules is evaluated top-down; the first matching pattern wins, so
// more specific vendors must sit above generic ones.
var VendorRules = []VendorRule{
	{regexp.MustCompile(`(?i)\bAFFIRM\b`), "Affirm"},
	{regexp.MustCompile(`(?i)\bGOO?GLE\b`), "Google"},
	{regexp.MustCompile(`(?i)\bGSUITE\b|\bWORKSPACE\b`), "Google"},
	{regexp.MustCompile(`(?i)\bPAY\s*PAL\b|\bPAYPAL\b`), "PayPal"},
	{regexp.MustCompile(`(?i)\bAMAZON\b`), "Amazon"},
	{regexp.MustCompile(`(?i)MCDONALD`), "McDonald's"},
	{regexp.MustCompile(`(?i)\bSTARBUCKS\b`), "Starbucks"},
	{regexp.MustCompile(`(?i)HOME\s*DEPOT`), "The Home Depot"},
	{regexp.MustCompile(`(?i)\bAPPLE\b|APPLE\.?COM|APPLECARD`), "Apple"},
	{regexp.MustCompile(`(?i)\bMICROSOFT\b|\bMSFT\b`), "Microsoft"},
	{regexp.MustCompile(`(?i)\bUBER\b`), "Uber"},
	{regexp.MustCompile(`(?i)\bLYFT\b`), "Lyft"},
}

var nonAlpha = regexp.MustCompile(`[^A-Za-z\s]`)

// Normalize returns the canonical vendor name for a raw description.
// Blank input yields "Unknown". Unmatched descriptions are stripped of
// non-alphabetic characters and reduced to their first three words,
// title-cased; if stripping leaves nothing, the original description comes
// back unchanged.
func Normalize(description string) string {
	if strings.TrimSpace(description) == "" {
		return "Unknown"
	}

	for _, rule := range VendorRules {
		if rule.Pattern.MatchString(description) {
			return rule.Canonical
		}
	}

	cleaned := strings.TrimSpace(nonAlpha.ReplaceAllString(description, ""))
	if cleaned == "" {
		return description
	}

	words := strings.Fields(cleaned)
	if len(words) > 3 {
		words = words[:3]
	}
	return titleCase(words)
}

// Canonicals returns the distinct canonical names in rule order.
func Canonicals() []string {
	seen := make(map[string]struct{}, len(VendorRules))
	var out []string
	for _, rule := range VendorRules {
		if _, ok := seen[rule.Canonical]; ok {
			continue
		}
		seen[rule.Canonical] = struct{}{}
		out = append(out, rule.Canonical)
	}
	return out
}

// Suggest returns up to limit canonical vendors ranked by closeness to the
// noisy input, for review tooling that corrects vendor labels.
func Suggest(noisy string, limit int) []string {
	if limit <= 0 {
		limit = 5
	}

	ranks := fuzzy.RankFindNormalizedFold(noisy, Canonicals())
	sort.Sort(ranks)
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}

	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out
}

func titleCase(words []string) string {
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}
