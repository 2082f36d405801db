// Package categorize maps free-text transaction descriptions to a category
// label from a fixed set. Matching is deterministic: an exact keyword
// substring always wins, and both the exact pass and the fuzzy fallback walk
// the rule table in declaration order so ties resolve to the first rule seen.
package categorize

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// DefaultThreshold is the minimum fuzzy partial-ratio score (0-100) at which
// a fuzzy match is accepted instead of the fallback category.
const DefaultThreshold = 85

// Rule associates one category with its keyword list. Rule order is the
// tie-break order: earlier rules win when more than one matches.
type Rule struct {
	Category models.Category
	Keywords []string
}

// Rules is the fixed category table. It is not user-extensible at runtime.
var Rules = []Rule{
	{"Food", []string{"food", "grocery", "supermarket", "bazaar", "reliance"}},
	{"Entertainment", []string{"movie", "netflix", "game", "hotstar"}},
	{"Transportation", []string{"petrol", "transport", "bus", "metro", "fuel"}},
	{"Utilities", []string{"electricity", "wifi", "internet", "gas"}},
	{"Medical", []string{"hospital", "doctor", "pharmacy"}},
	{"Salary", []string{"salary", "credited"}},
	{"Business", []string{"client", "deal"}},
	{"Investment", []string{"dividend", "sip"}},
	{"Other", []string{"freelance", "misc"}},
	{models.CategoryOthers, []string{"other", "random"}},
}

// Categorizer assigns categories to transaction descriptions.
type Categorizer struct {
	rules     []Rule
	threshold int
}

// New returns a Categorizer over the fixed rule table with the given fuzzy
// acceptance threshold. Threshold values outside 0-100 fall back to the
// default.
func New(threshold int) *Categorizer {
	if threshold < 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Categorizer{rules: Rules, threshold: threshold}
}

// Categorize maps text to a category. It lower-cases the input, returns the
// first rule whose keyword occurs as a substring, and otherwise falls back
// to the best fuzzy partial-ratio score across every keyword. Scores below
// the threshold return the fallback category. Pure function of its input.
func (c *Categorizer) Categorize(text string) models.Category {
	lower := strings.ToLower(text)

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}

	bestScore := 0
	best := models.CategoryOthers
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			score := fuzzy.PartialRatio(lower, kw)
			if score > bestScore {
				bestScore = score
				best = rule.Category
			}
		}
	}

	if bestScore >= c.threshold {
		return best
	}
	return models.CategoryOthers
}
