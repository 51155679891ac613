package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

type PDFParser struct{}

func (p *PDFParser) SupportedFormats() []string { return []string{"pdf"} }

// Parse extracts plain text page by page. Paragraphs are blocks of lines
// separated by blank lines; a block never spans pages.
func (p *PDFParser) Parse(ctx context.Context, path string) (*ParseResult, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	var paras []string

	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		paras = append(paras, splitBlocks(text)...)
	}

	return &ParseResult{
		Paragraphs: paras,
		Method:     "native",
		Metadata:   map[string]string{"page_count": fmt.Sprintf("%d", totalPages)},
	}, nil
}

// splitBlocks joins consecutive non-blank lines with a space and breaks on
// blank lines.
func splitBlocks(text string) []string {
	var paras []string
	var current []string
	flush := func() {
		paras = appendParagraph(paras, strings.Join(current, " "))
		current = current[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := normalizeSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		current = append(current, trimmed)
	}
	flush()
	return paras
}
