// Package nlp holds the parse-tree data model produced by the dependency
// parser, the traversal helpers built on it, and entity mention extraction.
package nlp

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Token is a single token of a parsed document.
type Token struct {
	Index int    `json:"i"`
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
	Dep   string `json:"dep"`
	Head  int    `json:"head"` // index of the syntactic head; equal to Index for a root
	Idx   int    `json:"idx"`  // character (rune) offset in Doc.Text
	Sent  int    `json:"sent"` // sentence index
}

// Span is a contiguous token range [Start, End) with optional character
// offsets and label. Character offsets count runes, as Token.Idx does.
type Span struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
	Label     string `json:"label,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Doc is the parse of one text: tokens, sentence spans and entity spans.
type Doc struct {
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
	Sents  []Span  `json:"sents"`
	Ents   []Span  `json:"ents"`
}

// Parser turns raw text into a dependency parse.
type Parser interface {
	Parse(ctx context.Context, text string) (*Doc, error)
}

// Valid reports whether i indexes a token of d.
func (d *Doc) Valid(i int) bool {
	return d != nil && i >= 0 && i < len(d.Tokens)
}

// Children returns the indices of tokens whose head is i.
func (d *Doc) Children(i int) []int {
	var out []int
	for _, t := range d.Tokens {
		if t.Head == i && t.Index != i {
			out = append(out, t.Index)
		}
	}
	return out
}

// Root returns the syntactic root of a span: the first token whose head lies
// outside the span (or is itself). Returns -1 for an empty or invalid span.
func (d *Doc) Root(s Span) int {
	for i := s.Start; i < s.End; i++ {
		if !d.Valid(i) {
			return -1
		}
		h := d.Tokens[i].Head
		if h == i || h < s.Start || h >= s.End {
			return i
		}
	}
	return -1
}

// SpanText returns the covered text of s, preferring character offsets.
func (d *Doc) SpanText(s Span) string {
	if s.Text != "" {
		return s.Text
	}
	if text, ok := d.charSlice(s.StartChar, s.EndChar); ok {
		return text
	}
	var parts []string
	for i := s.Start; i < s.End && d.Valid(i); i++ {
		parts = append(parts, d.Tokens[i].Text)
	}
	return strings.Join(parts, " ")
}

// CharOffset converts a byte offset into d.Text to a character offset.
func (d *Doc) CharOffset(b int) int {
	b = max(0, min(b, len(d.Text)))
	return utf8.RuneCountInString(d.Text[:b])
}

// charSlice returns the text between character offsets start and end.
func (d *Doc) charSlice(start, end int) (string, bool) {
	if start < 0 || end <= start {
		return "", false
	}
	from, n := -1, 0
	for i := range d.Text {
		if n == start {
			from = i
		}
		if n == end {
			if from < 0 {
				return "", false
			}
			return d.Text[from:i], true
		}
		n++
	}
	if n == end && from >= 0 {
		return d.Text[from:], true
	}
	return "", false
}

// SentenceTexts returns the trimmed text of every sentence.
func (d *Doc) SentenceTexts() []string {
	out := make([]string, 0, len(d.Sents))
	for _, s := range d.Sents {
		if t := strings.TrimSpace(d.SpanText(s)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SentenceTokens returns the tokens of sentence n in order.
func (d *Doc) SentenceTokens(n int) []Token {
	var out []Token
	for _, t := range d.Tokens {
		if t.Sent == n {
			out = append(out, t)
		}
	}
	return out
}

// DependencyDistance is the number of edges on the shortest path between
// two tokens, walking child links and the head link. ok is false when either
// index is invalid or no path exists.
func DependencyDistance(d *Doc, from, to int) (dist int, ok bool) {
	if !d.Valid(from) || !d.Valid(to) {
		return 0, false
	}
	children := make([][]int, len(d.Tokens))
	for _, t := range d.Tokens {
		if t.Head != t.Index && d.Valid(t.Head) {
			children[t.Head] = append(children[t.Head], t.Index)
		}
	}

	type step struct{ node, dist int }
	visited := make([]bool, len(d.Tokens))
	visited[from] = true
	queue := []step{{from, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.node == to {
			return cur.dist, true
		}
		next := children[cur.node]
		if h := d.Tokens[cur.node].Head; h != cur.node && d.Valid(h) {
			next = append(next[:len(next):len(next)], h)
		}
		for _, n := range next {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, step{n, cur.dist + 1})
			}
		}
	}
	return 0, false
}
