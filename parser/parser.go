// Package parser loads documents as an ordered list of text paragraphs.
package parser

import "context"

// ParseResult is what a parser produces from a document file.
type ParseResult struct {
	Paragraphs []string // Non-empty, trimmed paragraphs in document order
	Method     string   // "native"
	Metadata   map[string]string
}

// Parser can parse a specific document format.
type Parser interface {
	Parse(ctx context.Context, path string) (*ParseResult, error)
	SupportedFormats() []string
}

func appendParagraph(paras []string, text string) []string {
	if t := normalizeSpace(text); t != "" {
		return append(paras, t)
	}
	return paras
}
