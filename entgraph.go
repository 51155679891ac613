// Package entgraph turns question/answer documents into entity graphs: a
// synonym-normalized co-occurrence graph, a verb-relation graph and an
// LLM-extracted triple graph, each exported as tables and interactive HTML.
package entgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/brunobiangulo/entgraph/export"
	"github.com/brunobiangulo/entgraph/graph"
	"github.com/brunobiangulo/entgraph/llm"
	"github.com/brunobiangulo/entgraph/nlp"
	"github.com/brunobiangulo/entgraph/parser"
	"github.com/brunobiangulo/entgraph/store"
	"github.com/brunobiangulo/entgraph/synonym"
	"github.com/brunobiangulo/entgraph/triples"
	"github.com/brunobiangulo/entgraph/wikidata"
)

// Graph variants, used in file names, snapshots and Neo4j properties.
const (
	VariantCooccurrence = "cooccurrence"
	VariantRelations    = "relations"
	VariantTriples      = "triples"
)

// Artifact file names.
const (
	cooccurrenceCSV  = "entities_edges_NER.csv"
	relationsCSV     = "entities_edges_relation.csv"
	cooccurrenceXLSX = "entities_edges_NER.xlsx"
	relationsXLSX    = "entities_edges_relation.xlsx"
	cooccurrenceHTML = "qa_entities_graph.html"
	relationsHTML    = "relations_entities_graph.html"
	synonymsCSV      = "synonyms.csv"
	triplesTTL       = "output.ttl"
	triplesCSV       = "output_triples.csv"
	triplesNodesCSV  = "output_nodes.csv"
	triplesHTML      = "triples_graph.html"
	manifestFile     = "manifest.yaml"
)

// Pipeline runs the batch steps over one input document.
type Pipeline struct {
	cfg      Config
	parsers  *parser.Registry
	oracle   nlp.Parser
	llm      llm.Provider
	resolver triples.Resolver
	rng      *rand.Rand
	closers  []func() error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOracle replaces the HTTP parse client.
func WithOracle(p nlp.Parser) Option {
	return func(pl *Pipeline) { pl.oracle = p }
}

// WithLLM replaces the provider built from Config.LLM.
func WithLLM(p llm.Provider) Option {
	return func(pl *Pipeline) { pl.llm = p }
}

// WithResolver replaces the Wikidata client used for triple objects.
func WithResolver(r triples.Resolver) Option {
	return func(pl *Pipeline) { pl.resolver = r }
}

// New validates cfg and wires the oracle, the LLM provider and the
// Wikidata client.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg, parsers: parser.NewRegistry()}
	for _, o := range opts {
		o(p)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	p.rng = rand.New(rand.NewPCG(seed, seed))

	if p.oracle == nil {
		p.oracle = nlp.NewClient(cfg.Parser.URL, cfg.Parser.Timeout)
		if cfg.Parser.NERModel != "" {
			rec, err := nlp.NewHugotRecognizer(cfg.Parser.NERModel)
			if err != nil {
				return nil, fmt.Errorf("loading NER model: %w", err)
			}
			p.closers = append(p.closers, rec.Close)
			p.oracle = nlp.WithRecognizer(p.oracle, rec)
		}
	}

	if p.llm == nil && cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		p.llm = provider
	}

	if p.resolver == nil && cfg.Wikidata.Enabled {
		var wopts []wikidata.Option
		if cfg.Wikidata.Endpoint != "" {
			wopts = append(wopts, wikidata.WithEndpoint(cfg.Wikidata.Endpoint))
		}
		if cfg.Wikidata.Timeout > 0 {
			wopts = append(wopts, wikidata.WithTimeout(cfg.Wikidata.Timeout))
		}
		p.resolver = wikidata.NewClient(wopts...)
	}

	return p, nil
}

// Close releases the NER model, if one was loaded.
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	p.closers = nil
	return errors.Join(errs...)
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// loadParagraphs reads the non-empty paragraphs of path.
func (p *Pipeline) loadParagraphs(ctx context.Context, path string) ([]string, error) {
	if path == "" {
		return nil, ErrMissingInput
	}
	res, err := p.parsers.ParseFile(ctx, path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	slog.Info("pipeline: document loaded", "path", path, "paragraphs", len(res.Paragraphs), "method", res.Method)
	return res.Paragraphs, nil
}

// synonymMap builds the terminology map from the raw input document.
func (p *Pipeline) synonymMap(ctx context.Context) (*synonym.Map, []string, error) {
	paras, err := p.loadParagraphs(ctx, p.cfg.Input)
	if err != nil {
		return nil, nil, err
	}
	m := synonym.Build(paras, synonym.DefaultManual(), synonym.Options{PreferAbbreviation: p.cfg.PreferAbbreviation})
	return m, paras, nil
}

// SynonymResult reports the synonym step.
type SynonymResult struct {
	Map        *synonym.Map
	Paragraphs int
	Cleaned    string
	Table      string
}

// Synonyms builds the terminology map, rewrites every paragraph of the
// input to canonical terms and writes the cleaned document and the table.
func (p *Pipeline) Synonyms(ctx context.Context) (*SynonymResult, error) {
	m, paras, err := p.synonymMap(ctx)
	if err != nil {
		return nil, err
	}

	cleaned := p.cfg.cleanedPath()
	if err := parser.WriteDOCX(cleaned, m.ReplaceAll(paras)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	rows := make([][]string, 0, m.Len())
	for _, e := range m.Entries() {
		rows = append(rows, []string{e.Term, e.Canonical})
	}
	table := filepath.Join(p.cfg.OutputDir, synonymsCSV)
	if err := export.WriteRowsCSVFile(table, []string{"Term", "Canonical"}, rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	slog.Info("pipeline: synonyms written", "terms", m.Len(), "cleaned", cleaned)
	return &SynonymResult{Map: m, Paragraphs: len(paras), Cleaned: cleaned, Table: table}, nil
}

// graphInput picks the document the graphs are built from.
func (p *Pipeline) graphInput() string {
	if p.cfg.GraphInput != "" {
		return p.cfg.GraphInput
	}
	if cleaned := p.cfg.cleanedPath(); fileExists(cleaned) {
		return cleaned
	}
	return p.cfg.Input
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GraphResult reports one graph build and where it was exported.
type GraphResult struct {
	Variant    string       `json:"variant" yaml:"variant"`
	Graph      *graph.Graph `json:"-" yaml:"-"`
	Units      int          `json:"units" yaml:"units"`
	Nodes      int          `json:"nodes" yaml:"nodes"`
	Edges      int          `json:"edges" yaml:"edges"`
	Components int          `json:"components" yaml:"components"`
	CSV        string       `json:"csv" yaml:"csv"`
	Workbook   string       `json:"workbook" yaml:"workbook"`
	HTML       string       `json:"html" yaml:"html"`
	RunID      string       `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// Cooccurrence builds and exports the undirected strong/weak graph.
func (p *Pipeline) Cooccurrence(ctx context.Context) (*GraphResult, error) {
	return p.buildGraph(ctx, VariantCooccurrence, cooccurrenceCSV, cooccurrenceXLSX, cooccurrenceHTML,
		func(b *graph.Builder, units []graph.TextUnit) (*graph.Graph, error) {
			return b.BuildCooccurrence(ctx, units)
		})
}

// Relations builds and exports the directed verb-relation graph.
func (p *Pipeline) Relations(ctx context.Context) (*GraphResult, error) {
	return p.buildGraph(ctx, VariantRelations, relationsCSV, relationsXLSX, relationsHTML,
		func(b *graph.Builder, units []graph.TextUnit) (*graph.Graph, error) {
			return b.BuildRelations(ctx, units)
		})
}

func (p *Pipeline) buildGraph(ctx context.Context, variant, csvName, xlsxName, htmlName string,
	build func(*graph.Builder, []graph.TextUnit) (*graph.Graph, error)) (*GraphResult, error) {
	syn, _, err := p.synonymMap(ctx)
	if err != nil {
		return nil, err
	}

	input := p.graphInput()
	paras, err := p.loadParagraphs(ctx, input)
	if err != nil {
		return nil, err
	}
	units := graph.PairUnits(paras)

	extractor := nlp.NewExtractor(p.cfg.AllowedLabels, nlp.NewGazetteer(p.cfg.Gazetteer))
	b := graph.NewBuilder(p.oracle, extractor, syn,
		graph.WithMaxDistance(p.cfg.MaxDistance),
		graph.WithRand(p.rng))

	g, err := build(b, units)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrOracleFailure, err)
	}

	res := &GraphResult{
		Variant:    variant,
		Graph:      g,
		Units:      len(units),
		Nodes:      g.NumNodes(),
		Edges:      g.NumEdges(),
		Components: len(graph.Components(g)),
		CSV:        filepath.Join(p.cfg.OutputDir, csvName),
		Workbook:   filepath.Join(p.cfg.OutputDir, xlsxName),
		HTML:       filepath.Join(p.cfg.VisualsDir, htmlName),
	}
	if err := p.export(ctx, res, input); err != nil {
		return nil, err
	}
	slog.Info("pipeline: graph exported", "variant", variant, "nodes", res.Nodes, "edges", res.Edges, "html", res.HTML)
	return res, nil
}

// export writes the tabular and visual artifacts, then the optional
// snapshot and Neo4j copies.
func (p *Pipeline) export(ctx context.Context, res *GraphResult, input string) error {
	g := res.Graph
	if err := export.WriteEdgeCSVFile(res.CSV, g); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if err := export.WriteEdgeWorkbook(res.Workbook, g); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	opts := export.DefaultHTMLOptions()
	opts.Title = strings.ReplaceAll(res.Variant, "_", " ") + " graph"
	if err := export.WriteHTMLFile(res.HTML, g, opts); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	if p.cfg.Store.DBPath != "" {
		id, err := p.saveSnapshot(ctx, res.Variant, input, g)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		res.RunID = id
	}

	if p.cfg.Neo4j.URI != "" {
		if err := p.exportNeo4j(ctx, res.Variant, g); err != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
	}
	return nil
}

func (p *Pipeline) saveSnapshot(ctx context.Context, variant, input string, g *graph.Graph) (string, error) {
	s, err := store.New(p.cfg.Store.DBPath)
	if err != nil {
		return "", err
	}
	defer s.Close()
	return s.SaveGraph(ctx, variant, input, g)
}

func (p *Pipeline) exportNeo4j(ctx context.Context, variant string, g *graph.Graph) error {
	n := p.cfg.Neo4j
	x, err := export.NewNeo4jExporter(ctx, n.URI, n.User, n.Password, n.Database)
	if err != nil {
		return err
	}
	defer x.Close(ctx)
	return x.Export(ctx, g, variant)
}
