package parser

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads every non-empty cell as a paragraph, sheet by sheet in
// row-major order. A two-column question/answer sheet therefore yields
// alternating question and answer paragraphs.
type XLSXParser struct{}

func (p *XLSXParser) SupportedFormats() []string { return []string{"xlsx"} }

func (p *XLSXParser) Parse(ctx context.Context, path string) (*ParseResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	var paras []string
	sheets := 0
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) > 0 {
			sheets++
		}
		for _, row := range rows {
			for _, cell := range row {
				paras = appendParagraph(paras, cell)
			}
		}
	}

	if len(paras) == 0 {
		return nil, fmt.Errorf("no data found in XLSX")
	}

	return &ParseResult{
		Paragraphs: paras,
		Method:     "native",
		Metadata:   map[string]string{"sheet_count": fmt.Sprintf("%d", sheets)},
	}, nil
}
