package parser

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TextParser handles plain text (.txt) files: one paragraph per non-empty line.
type TextParser struct{}

func (p *TextParser) SupportedFormats() []string { return []string{"txt"} }

func (p *TextParser) Parse(ctx context.Context, path string) (*ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}

	var paras []string
	for _, line := range strings.Split(string(data), "\n") {
		paras = appendParagraph(paras, line)
	}
	return &ParseResult{Paragraphs: paras, Method: "native"}, nil
}

// normalizeSpace trims text and drops carriage returns.
func normalizeSpace(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
}
