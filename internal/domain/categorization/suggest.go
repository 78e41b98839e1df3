package categorization

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest returns up to limit category names ranked by closeness to the
// partial input, for UIs completing a category field. Matching tolerates
// case and diacritic differences.
func Suggest(partial string, limit int) []Category {
	if limit <= 0 {
		limit = 5
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}

	ranks := fuzzy.RankFindNormalizedFold(partial, names)
	sort.Sort(ranks)
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}

	out := make([]Category, len(ranks))
	for i, r := range ranks {
		out[i] = Category(r.Target)
	}
	return out
}
