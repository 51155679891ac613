package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when no parser handles an extension.
var ErrUnsupportedFormat = errors.New("parser: unsupported format")

// Registry maps file extensions to parsers.
type Registry struct {
	parsers map[string]Parser
}

func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	// Register built-in parsers
	pdf := &PDFParser{}
	docx := &DOCXParser{}
	xlsx := &XLSXParser{}
	txt := &TextParser{}

	for _, p := range []Parser{pdf, docx, xlsx, txt} {
		for _, f := range p.SupportedFormats() {
			r.parsers[f] = p
		}
	}
	return r
}

func (r *Registry) Get(format string) (Parser, error) {
	p, ok := r.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return p, nil
}

func (r *Registry) Register(format string, p Parser) {
	r.parsers[format] = p
}

// Format returns the lower-cased extension of path without the dot.
func Format(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// ParseFile checks that path exists and parses it with the parser
// registered for its extension.
func (r *Registry) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}
	p, err := r.Get(Format(path))
	if err != nil {
		return nil, err
	}
	res, err := p.Parse(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return res, nil
}
