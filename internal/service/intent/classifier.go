package intent

import (
	"strings"

	"github.com/sandevgo/caterbot/internal/core"
)

// Classifier maps raw user text to a discrete intent via case-insensitive
// substring matching, evaluated in priority order. Deterministic and
// stateless.
type Classifier struct {
	table KeywordTable
}

func NewClassifier(table KeywordTable) *Classifier {
	return &Classifier{table: table}
}

// Classify returns the first intent whose keyword set matches text, or
// Fallback when nothing does. Matching is raw substring containment, as the
// keyword sets are curated phrases rather than single ambiguous stems.
func (c *Classifier) Classify(text string) core.Intent {
	lower := strings.ToLower(text)

	for _, group := range c.table.ordered() {
		if containsAny(lower, group.keywords) {
			return group.intent
		}
	}
	return core.IntentFallback
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
