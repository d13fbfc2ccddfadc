// Package classify assigns articles a category from a fixed keyword rule
// table. Rules are checked in order; the category with the most keyword
// hits wins, so more specific categories sit earlier in the table.
package classify

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// DefaultCategory is used when no rule matches.
const DefaultCategory = "Tech"

type rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Classifier matches text against the embedded rule table.
type Classifier struct {
	rules []rule
}

func New() (*Classifier, error) {
	var rules []rule
	if err := yaml.Unmarshal(rulesYAML, &rules); err != nil {
		return nil, fmt.Errorf("parsing classification rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("classification rule table is empty")
	}
	return &Classifier{rules: rules}, nil
}

// Classify picks the category whose keywords occur most often in the
// combined title and content. Confidence is the winning hit share in
// [0, 1]; zero hits yield the default category with confidence 0.
func (c *Classifier) Classify(title, content string) (string, float64) {
	text := strings.ToLower(title + " " + content)

	best := DefaultCategory
	bestHits := 0
	totalHits := 0

	for _, r := range c.rules {
		hits := 0
		for _, kw := range r.Keywords {
			hits += strings.Count(text, kw)
		}
		totalHits += hits
		if hits > bestHits {
			bestHits = hits
			best = r.Category
		}
	}

	if bestHits == 0 {
		return DefaultCategory, 0
	}
	return best, float64(bestHits) / float64(totalHits)
}

// Categories returns the known category names in rule order.
func (c *Classifier) Categories() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Category
	}
	return out
}
