// Package nlptest builds dependency parses by hand for tests.
package nlptest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/brunobiangulo/entgraph/nlp"
)

// Tok is a token with its head given as an index within its sentence.
// A token whose Head equals its own position is the sentence root.
type Tok struct {
	Text  string
	Lemma string
	Head  int
}

// T is shorthand for a token whose lemma is its lower-cased text.
func T(text string, head int) Tok {
	return Tok{Text: text, Lemma: strings.ToLower(text), Head: head}
}

// L is shorthand for a token with an explicit lemma.
func L(text, lemma string, head int) Tok {
	return Tok{Text: text, Lemma: lemma, Head: head}
}

// Ent marks an entity by its exact surface text; the n-th Ent with the same
// text binds to the n-th occurrence.
type Ent struct {
	Text  string
	Label string
}

// Doc assembles sentences into one parse. Tokens are joined by single
// spaces.
func Doc(sents [][]Tok, ents ...Ent) *nlp.Doc {
	d := &nlp.Doc{}
	var b strings.Builder
	for si, sent := range sents {
		base := len(d.Tokens)
		for i, tk := range sent {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			d.Tokens = append(d.Tokens, nlp.Token{
				Index: base + i,
				Text:  tk.Text,
				Lemma: tk.Lemma,
				Head:  base + tk.Head,
				Idx:   utf8.RuneCountInString(b.String()),
				Sent:  si,
			})
			b.WriteString(tk.Text)
		}
		d.Sents = append(d.Sents, nlp.Span{Start: base, End: len(d.Tokens)})
	}
	d.Text = b.String()
	for i := range d.Sents {
		s := &d.Sents[i]
		s.StartChar = d.Tokens[s.Start].Idx
		last := d.Tokens[s.End-1]
		s.EndChar = last.Idx + utf8.RuneCountInString(last.Text)
	}

	used := map[string]int{}
	for _, e := range ents {
		from := used[e.Text]
		pos := strings.Index(d.Text[from:], e.Text)
		if pos < 0 {
			panic(fmt.Sprintf("nlptest: entity %q not in %q", e.Text, d.Text))
		}
		used[e.Text] = from + pos + len(e.Text)
		start := d.CharOffset(from + pos)
		end := start + utf8.RuneCountInString(e.Text)
		span := nlp.Span{StartChar: start, EndChar: end, Label: e.Label, Text: e.Text, Start: -1}
		for _, t := range d.Tokens {
			if t.Idx+utf8.RuneCountInString(t.Text) <= start || t.Idx >= end {
				continue
			}
			if span.Start < 0 {
				span.Start = t.Index
			}
			span.End = t.Index + 1
		}
		d.Ents = append(d.Ents, span)
	}
	return d
}

// Parser returns canned parses keyed by input text.
type Parser struct {
	Docs  map[string]*nlp.Doc
	Err   error
	Calls []string
}

// NewParser creates an empty canned parser.
func NewParser() *Parser {
	return &Parser{Docs: map[string]*nlp.Doc{}}
}

// Add registers d under its own text and returns the text.
func (p *Parser) Add(d *nlp.Doc) string {
	p.Docs[d.Text] = d
	return d.Text
}

// Parse implements nlp.Parser.
func (p *Parser) Parse(_ context.Context, text string) (*nlp.Doc, error) {
	p.Calls = append(p.Calls, text)
	if p.Err != nil {
		return nil, p.Err
	}
	d, ok := p.Docs[text]
	if !ok {
		return nil, fmt.Errorf("nlptest: no parse for %q", text)
	}
	return d, nil
}
