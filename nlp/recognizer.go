package nlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// Recognizer finds entity spans. StartChar and EndChar of the returned
// spans are byte offsets into text; they are converted to character offsets
// when aligned to the parse.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Span, error)
}

// WithRecognizer returns a Parser whose entity spans come from r instead of
// the underlying parser. Recognized spans are aligned to the parse tokens.
func WithRecognizer(p Parser, r Recognizer) Parser {
	return &recognizingParser{base: p, rec: r}
}

type recognizingParser struct {
	base Parser
	rec  Recognizer
}

func (p *recognizingParser) Parse(ctx context.Context, text string) (*Doc, error) {
	doc, err := p.base.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	spans, err := p.rec.Recognize(ctx, doc.Text)
	if err != nil {
		return nil, fmt.Errorf("recognizing entities: %w", err)
	}
	doc.Ents = alignSpans(doc, spans)
	return doc, nil
}

// alignSpans converts byte-offset spans to character offsets and fills
// their token bounds, dropping spans that cover no token.
func alignSpans(d *Doc, spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		s.StartChar, s.EndChar = d.CharOffset(s.StartChar), d.CharOffset(s.EndChar)
		start, end := -1, -1
		for _, t := range d.Tokens {
			if t.Idx+utf8.RuneCountInString(t.Text) <= s.StartChar || t.Idx >= s.EndChar {
				continue
			}
			if start < 0 {
				start = t.Index
			}
			end = t.Index + 1
		}
		if start < 0 {
			continue
		}
		s.Start, s.End = start, end
		out = append(out, s)
	}
	return out
}

// nerLabels maps CoNLL-style model labels onto the parser's label set.
var nerLabels = map[string]string{
	"ORG":  "ORG",
	"LOC":  "GPE",
	"GPE":  "GPE",
	"MISC": "PRODUCT",
	"PER":  "PERSON",
}

// HugotRecognizer runs a token-classification ONNX model in-process.
type HugotRecognizer struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
}

// NewHugotRecognizer loads the NER model at modelPath.
func NewHugotRecognizer(modelPath string) (*HugotRecognizer, error) {
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("creating hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "entgraph-ner",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("creating NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("creating NER pipeline: %w", err)
	}
	return &HugotRecognizer{session: session, pipeline: pipeline}, nil
}

// Recognize runs the model over text.
func (r *HugotRecognizer) Recognize(_ context.Context, text string) ([]Span, error) {
	result, err := r.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("running NER: %w", err)
	}
	if len(result.Entities) == 0 {
		return nil, nil
	}

	var spans []Span
	for _, e := range result.Entities[0] {
		label := mapNERLabel(e.Entity)
		if label == "" {
			continue
		}
		spans = append(spans, Span{
			StartChar: int(e.Start),
			EndChar:   int(e.End),
			Label:     label,
			Text:      strings.TrimSpace(e.Word),
		})
	}
	return spans, nil
}

// Close releases the model session.
func (r *HugotRecognizer) Close() error {
	return r.session.Destroy()
}

func mapNERLabel(label string) string {
	label = strings.TrimPrefix(strings.TrimPrefix(label, "B-"), "I-")
	return nerLabels[strings.ToUpper(label)]
}

// PrepareModel downloads modelName into dir unless it is already present
// and returns the local model path.
func PrepareModel(modelName, dir string) (string, error) {
	modelPath := filepath.Join(dir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating model directory: %w", err)
	}
	path, err := hugot.DownloadModel(modelName, dir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("downloading model %s: %w", modelName, err)
	}
	return path, nil
}
