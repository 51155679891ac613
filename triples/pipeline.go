package triples

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brunobiangulo/entgraph/llm"
	"github.com/brunobiangulo/entgraph/nlp"
	"github.com/brunobiangulo/entgraph/synonym"
)

// Extractor runs the coreference, simplification and extraction prompts.
type Extractor struct {
	llm       llm.Provider
	parser    nlp.Parser
	thesaurus *synonym.Map
}

// NewExtractor creates an extractor. The parser only splits sentences; the
// thesaurus may be nil.
func NewExtractor(p llm.Provider, parser nlp.Parser, thesaurus *synonym.Map) *Extractor {
	return &Extractor{llm: p, parser: parser, thesaurus: thesaurus}
}

// Result holds the intermediate texts alongside the triples.
type Result struct {
	Resolved  string   `json:"resolved"`
	Sentences []string `json:"sentences"`
	Triples   []Triple `json:"triples"`
}

// Run resolves coreferences across the whole paragraph, then simplifies and
// extracts triples sentence by sentence.
func (x *Extractor) Run(ctx context.Context, paragraph string) (*Result, error) {
	resolved, err := x.ask(ctx, fmt.Sprintf(corefPrompt, paragraph))
	if err != nil {
		return nil, fmt.Errorf("resolving coreferences: %w", err)
	}

	doc, err := x.parser.Parse(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("splitting sentences: %w", err)
	}

	res := &Result{Resolved: resolved, Sentences: doc.SentenceTexts()}
	for i, sent := range res.Sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		simplified, err := x.ask(ctx, fmt.Sprintf(simplifyPrompt, sent))
		if err != nil {
			return nil, fmt.Errorf("simplifying sentence %d: %w", i+1, err)
		}
		raw, err := x.ask(ctx, fmt.Sprintf(extractPrompt, simplified))
		if err != nil {
			return nil, fmt.Errorf("extracting triples from sentence %d: %w", i+1, err)
		}
		found := Parse(raw, x.thesaurus)
		slog.Info("triples: sentence processed", "sentence", i+1, "triples", len(found))
		res.Triples = append(res.Triples, found...)
	}
	return res, nil
}

func (x *Extractor) ask(ctx context.Context, prompt string) (string, error) {
	resp, err := x.llm.Chat(ctx, llm.UserMessage(prompt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
