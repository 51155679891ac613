package synonym

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	// "Full Form (ACRONYM)"
	fullThenAcronym = regexp.MustCompile(`\b([A-Z][A-Za-z ]{2,})\s*\(([A-Z]{2,})\)`)
	// "ACRONYM (Full Form)"
	acronymThenFull = regexp.MustCompile(`\b([A-Z]{2,})\s*\(([A-Z][A-Za-z ]{2,})\)`)
)

// DefaultManual is the hand-curated ICT terminology table.
func DefaultManual() []Entry {
	return []Entry{
		{"Artificial Intelligence", "AI"},
		{"AI", "AI"},
		{"Machine Learning", "ML"},
		{"ML", "ML"},
		{"Natural Language Processing", "NLP"},
		{"NLP", "NLP"},
		{"Customer Satisfaction", "CSAT"},
		{"CSAT", "CSAT"},
		{"Customer Effort Score", "CES"},
		{"CES", "CES"},
		{"Net Promoter Score", "NPS"},
		{"NPS", "NPS"},
		{"Track NPS", "NPS"},
		{"Internet of Things", "IoT"},
		{"IoT", "IoT"},
		{"Structured Query Language", "SQL"},
		{"SQL", "SQL"},
		{"us", "USA"},
		{"usa", "USA"},
		{"the california consumer privacy act", "CPRA"},
		{"cpra", "CPRA"},
		{"the european data protection board", "EDPB"},
		{"edpb", "EDPB"},
	}
}

// Options controls how document-derived pairs are canonicalized.
type Options struct {
	// PreferAbbreviation maps both forms to the acronym when true and to
	// the full form otherwise.
	PreferAbbreviation bool
}

// DefaultOptions keeps acronyms as the canonical form.
func DefaultOptions() Options {
	return Options{PreferAbbreviation: true}
}

// Build merges the manual table with acronym pairs found in paragraphs.
func Build(paragraphs []string, manual []Entry, opts Options) *Map {
	m := NewMap(manual)
	found := 0
	for _, para := range paragraphs {
		text := strings.TrimSpace(para)
		if text == "" {
			continue
		}
		for _, match := range fullThenAcronym.FindAllStringSubmatch(text, -1) {
			m.addPair(strings.TrimSpace(match[1]), match[2], opts)
			found++
		}
		for _, match := range acronymThenFull.FindAllStringSubmatch(text, -1) {
			m.addPair(strings.TrimSpace(match[2]), match[1], opts)
			found++
		}
	}
	slog.Debug("synonym: map built", "manual", len(manual), "pairs", found, "terms", m.Len())
	return m
}

func (m *Map) addPair(full, acronym string, opts Options) {
	canonical := full
	if opts.PreferAbbreviation {
		canonical = acronym
	}
	m.set(full, canonical)
	m.set(acronym, canonical)
}
