package graph

import "strings"

// Pattern binds a relation kind to the verb lemmas that signal it.
type Pattern struct {
	Kind   EdgeKind
	Lemmas []string
}

// DefaultPatterns is the verb-lemma table, in priority order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{KindIsA, []string{"be", "is", "are", "was", "were", "constitute", "represent"}},
		{KindRegulates, []string{"regulate", "govern", "control", "oversee", "enforce", "dictate", "manage"}},
		{KindUses, []string{"use", "utilize", "apply", "employ", "leverage"}},
		{KindBasedOn, []string{"base", "build", "derive", "depend", "develop"}},
		{KindPartOf, []string{"part", "component", "element", "segment", "member", "belong"}},
	}
}

// Classifier maps a lemma to at most one relation kind. The first pattern
// containing the lemma wins.
type Classifier struct {
	patterns []Pattern
}

// NewClassifier builds a classifier; nil patterns use DefaultPatterns.
func NewClassifier(patterns []Pattern) *Classifier {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Classifier{patterns: patterns}
}

// Classify matches lemma case-insensitively.
func (c *Classifier) Classify(lemma string) (EdgeKind, bool) {
	lemma = strings.ToLower(lemma)
	for _, p := range c.patterns {
		for _, l := range p.Lemmas {
			if l == lemma {
				return p.Kind, true
			}
		}
	}
	return "", false
}
