// Package synonym builds the terminology map used to canonicalize entity
// labels and rewrites document text to its canonical terms.
package synonym

import (
	"regexp"
	"strings"
)

// Entry is a single term and the canonical value it resolves to.
type Entry struct {
	Term      string
	Canonical string
}

// Map is an immutable, insertion-ordered synonym table. Keys are stored
// lower-cased; a later entry for the same key replaces the value but keeps
// the original position.
type Map struct {
	keys   []string
	values map[string]string
}

// NewMap builds a Map from entries in order.
func NewMap(entries []Entry) *Map {
	m := &Map{values: make(map[string]string, len(entries))}
	for _, e := range entries {
		m.set(e.Term, e.Canonical)
	}
	return m
}

func (m *Map) set(term, canonical string) {
	key := strings.ToLower(term)
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = canonical
}

// Lookup returns the canonical value for term, matched case-insensitively.
func (m *Map) Lookup(term string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[strings.ToLower(term)]
	return v, ok
}

// Len reports the number of distinct terms.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Entries returns the table in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Entry{Term: k, Canonical: m.values[k]})
	}
	return out
}

// Normalize canonicalizes a raw entity surface string: trim, strip one
// leading "the ", then resolve through the map. Unmapped text keeps its
// original casing. A nil map only trims and strips.
func Normalize(raw string, m *Map) string {
	text := strings.TrimSpace(raw)
	if len(text) >= 4 && strings.EqualFold(text[:4], "the ") {
		text = text[4:]
	}
	if v, ok := m.Lookup(text); ok {
		return v
	}
	return text
}

// ReplaceInText rewrites every whole-word, case-insensitive occurrence of a
// term with its canonical value. Terms are applied in table order, so an
// earlier replacement can feed a later one.
func (m *Map) ReplaceInText(text string) string {
	if m == nil {
		return text
	}
	for _, k := range m.keys {
		re := termPattern(k)
		text = re.ReplaceAllLiteralString(text, m.values[k])
	}
	return text
}

// ReplaceAll applies ReplaceInText to every paragraph.
func (m *Map) ReplaceAll(paragraphs []string) []string {
	out := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		out[i] = m.ReplaceInText(p)
	}
	return out
}

func termPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}
