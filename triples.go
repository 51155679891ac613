package entgraph

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/brunobiangulo/entgraph/export"
	"github.com/brunobiangulo/entgraph/graph"
	"github.com/brunobiangulo/entgraph/triples"
)

// TriplesResult reports the LLM triple pipeline.
type TriplesResult struct {
	Triples []triples.Triple
	Graph   *graph.Graph
	Turtle  string
	CSV     string
	Nodes   string
	HTML    string
}

// Triples runs coreference resolution, simplification and extraction over
// the whole input document, then writes Turtle, CSV and HTML outputs.
func (p *Pipeline) Triples(ctx context.Context) (*TriplesResult, error) {
	if p.llm == nil {
		return nil, ErrLLMNotConfigured
	}
	syn, paras, err := p.synonymMap(ctx)
	if err != nil {
		return nil, err
	}

	x := triples.NewExtractor(p.llm, p.oracle, syn)
	out, err := x.Run(ctx, strings.Join(paras, "\n"))
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrLLMRequestFailed, err)
	}

	g := triples.Graph(out.Triples)
	graph.AssignColors(g, p.rng)
	res := &TriplesResult{
		Triples: out.Triples,
		Graph:   g,
		Turtle:  filepath.Join(p.cfg.OutputDir, triplesTTL),
		CSV:     filepath.Join(p.cfg.OutputDir, triplesCSV),
		Nodes:   filepath.Join(p.cfg.OutputDir, triplesNodesCSV),
		HTML:    filepath.Join(p.cfg.VisualsDir, triplesHTML),
	}

	if err := triples.WriteTurtleFile(ctx, res.Turtle, out.Triples, p.resolver); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if err := triples.WriteTriplesCSV(res.CSV, out.Triples); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if err := triples.WriteNodesCSV(res.Nodes, out.Triples); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	opts := export.DefaultHTMLOptions()
	opts.Title = "triples graph"
	opts.Height = "600px"
	if err := export.WriteHTMLFile(res.HTML, g, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	slog.Info("pipeline: triples exported", "triples", len(out.Triples), "nodes", g.NumNodes(), "turtle", res.Turtle)
	return res, nil
}
