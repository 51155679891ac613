// Package triples extracts subject-predicate-object statements from prose
// through an LLM and renders them as a graph, Turtle and CSV.
package triples

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/brunobiangulo/entgraph/synonym"
)

// Triple is one extracted statement.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

var (
	listNumber = regexp.MustCompile(`^\d+\.\s*`)
	tripleLine = regexp.MustCompile(`^\(?"?([^,"]+)"?,\s*"?([^,"]+)"?,\s*"?([^")]+)"?\)?`)
	leadingThe = regexp.MustCompile(`(?i)^the\s+`)
)

// Parse reads one triple per line of model output. Lines may be numbered,
// parenthesised or quoted. Lines that do not hold three comma-separated
// parts are logged and skipped.
func Parse(output string, thesaurus *synonym.Map) []Triple {
	var out []Triple
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		line = strings.TrimSpace(listNumber.ReplaceAllString(line, ""))
		m := tripleLine.FindStringSubmatch(line)
		if m == nil {
			slog.Warn("triples: could not parse line", "line", line)
			continue
		}
		out = append(out, Triple{
			Subject:   strings.TrimSpace(NormalizeLabel(m[1], thesaurus)),
			Predicate: strings.TrimSpace(m[2]),
			Object:    strings.TrimSpace(NormalizeLabel(m[3], thesaurus)),
		})
	}
	slog.Debug("triples: parsed", "count", len(out))
	return out
}

// NormalizeLabel trims label, drops a leading "the", resolves it through the
// thesaurus and upper-cases the first letter.
func NormalizeLabel(label string, thesaurus *synonym.Map) string {
	label = strings.TrimSpace(label)
	label = leadingThe.ReplaceAllString(label, "")
	if v, ok := thesaurus.Lookup(strings.TrimSpace(label)); ok {
		label = v
	}
	if label == "" {
		return label
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}
