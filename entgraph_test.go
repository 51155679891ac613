package entgraph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunobiangulo/entgraph/graph"
	"github.com/brunobiangulo/entgraph/llm"
	"github.com/brunobiangulo/entgraph/nlp/nlptest"
	"github.com/brunobiangulo/entgraph/parser"
)

// gdprDoc is the parse of "What is GDPR ?" + "GDPR regulates AWS .".
func gdprDoc() (question, answer string, oracle *nlptest.Parser) {
	oracle = nlptest.NewParser()
	oracle.Add(nlptest.Doc([][]nlptest.Tok{
		{nlptest.T("What", 1), nlptest.L("is", "be", 1), nlptest.T("GDPR", 1), nlptest.T("?", 1)},
		{nlptest.T("GDPR", 1), nlptest.L("regulates", "regulate", 1), nlptest.T("AWS", 1), nlptest.T(".", 1)},
	},
		nlptest.Ent{Text: "GDPR", Label: "LAW"},
		nlptest.Ent{Text: "GDPR", Label: "LAW"},
		nlptest.Ent{Text: "AWS", Label: "ORG"},
	))
	return "What is GDPR ?", "GDPR regulates AWS .", oracle
}

func writeInput(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func testConfig(t *testing.T, input string) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Input = input
	cfg.OutputDir = filepath.Join(dir, "process_data")
	cfg.VisualsDir = filepath.Join(dir, "visuals")
	cfg.Seed = 7
	cfg.Wikidata.Enabled = false
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.MaxDistance)
	assert.True(t, cfg.PreferAbbreviation)
	assert.Equal(t, []string{"ORG", "PRODUCT", "GPE", "LAW", "EVENT", "TECHNOLOGY"}, cfg.AllowedLabels)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero distance", func(c *Config) { c.MaxDistance = 0 }},
		{"no labels", func(c *Config) { c.AllowedLabels = nil }},
		{"no output dir", func(c *Config) { c.OutputDir = "" }},
		{"no parser url", func(c *Config) { c.Parser.URL = "" }},
		{"bad neo4j uri", func(c *Config) { c.Neo4j.URI = "not a uri" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)

			_, err = New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewUnknownLLMProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Provider = "nope"
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMissingInput(t *testing.T) {
	_, _, oracle := gdprDoc()
	for _, input := range []string{"", filepath.Join(t.TempDir(), "absent.docx")} {
		p, err := New(testConfig(t, input), WithOracle(oracle))
		require.NoError(t, err)

		_, err = p.Cooccurrence(context.Background())
		assert.ErrorIs(t, err, ErrMissingInput)
		_, err = p.Run(context.Background())
		assert.ErrorIs(t, err, ErrMissingInput)
	}
	assert.Empty(t, oracle.Calls, "no graph work before the input is found")
}

func TestUnsupportedFormat(t *testing.T) {
	input := writeInput(t, "notes.md", "# title")
	p, err := New(testConfig(t, input), WithOracle(nlptest.NewParser()))
	require.NoError(t, err)

	_, err = p.Synonyms(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCooccurrence(t *testing.T) {
	q, a, oracle := gdprDoc()
	p, err := New(testConfig(t, writeInput(t, "qa.txt", q, a)), WithOracle(oracle))
	require.NoError(t, err)

	res, err := p.Cooccurrence(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Units)
	assert.Equal(t, 2, res.Nodes)
	assert.Equal(t, 1, res.Edges)
	assert.Equal(t, 1, res.Components)

	e, ok := res.Graph.Edge("AWS", "GDPR")
	require.True(t, ok)
	assert.Equal(t, graph.KindWeak, e.Kind)
	assert.Equal(t, "Weak: Co-occurs in Q1", e.Title)

	assert.Equal(t, "Entity1,Entity2\nGDPR,AWS\n", readFile(t, res.CSV))
	assert.FileExists(t, res.Workbook)
	assert.Contains(t, readFile(t, res.HTML), "vis-network")
	assert.Equal(t, "entities_edges_NER.csv", filepath.Base(res.CSV))
	assert.Equal(t, "qa_entities_graph.html", filepath.Base(res.HTML))
}

func TestRelations(t *testing.T) {
	q, a, oracle := gdprDoc()
	p, err := New(testConfig(t, writeInput(t, "qa.txt", q, a)), WithOracle(oracle))
	require.NoError(t, err)

	res, err := p.Relations(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Graph.Directed)
	e, ok := res.Graph.Edge("GDPR", "AWS")
	require.True(t, ok)
	assert.Equal(t, graph.KindRegulates, e.Kind)
	assert.False(t, res.Graph.HasEdge("AWS", "GDPR"))

	assert.Equal(t, "Entity1,Relation,Entity2\nGDPR,regulates,AWS\n", readFile(t, res.CSV))
	assert.Equal(t, "relations_entities_graph.html", filepath.Base(res.HTML))
}

func TestOracleFailure(t *testing.T) {
	oracle := nlptest.NewParser()
	oracle.Err = errors.New("connection refused")
	p, err := New(testConfig(t, writeInput(t, "qa.txt", "q", "a")), WithOracle(oracle))
	require.NoError(t, err)

	_, err = p.Relations(context.Background())
	assert.ErrorIs(t, err, ErrOracleFailure)
	assert.ErrorIs(t, err, oracle.Err)
}

func TestSynonyms(t *testing.T) {
	input := writeInput(t, "ICT.txt",
		"What does Artificial Intelligence change ?",
		"Customer Journey Map (CJM) tools use machine learning .")
	p, err := New(testConfig(t, input), WithOracle(nlptest.NewParser()))
	require.NoError(t, err)

	res, err := p.Synonyms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Paragraphs)
	assert.Equal(t, "ICT_edit.docx", filepath.Base(res.Cleaned))

	v, ok := res.Map.Lookup("customer journey map")
	require.True(t, ok)
	assert.Equal(t, "CJM", v)

	cleaned, err := parser.NewRegistry().ParseFile(context.Background(), res.Cleaned)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"What does AI change ?",
		"CJM (CJM) tools use ML .",
	}, cleaned.Paragraphs)

	table := readFile(t, res.Table)
	assert.True(t, strings.HasPrefix(table, "Term,Canonical\nartificial intelligence,AI\n"))
	assert.Contains(t, table, "customer journey map,CJM\n")
}

func TestRun(t *testing.T) {
	q, a, oracle := gdprDoc()
	p, err := New(testConfig(t, writeInput(t, "qa.txt", q, a)), WithOracle(oracle))
	require.NoError(t, err)

	m, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, m.Graphs, 2)
	assert.Equal(t, VariantCooccurrence, m.Graphs[0].Variant)
	assert.Equal(t, VariantRelations, m.Graphs[1].Variant)
	assert.NotEmpty(t, m.ID)

	// Both graphs were built from the cleaned document.
	assert.Equal(t, []string{q + " " + a, q + " " + a}, oracle.Calls)
	assert.FileExists(t, m.Cleaned)

	loaded, err := ReadManifest(m.Path)
	require.NoError(t, err)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, 3, loaded.MaxDistance)
	require.Len(t, loaded.Graphs, 2)
	assert.Equal(t, 1, loaded.Graphs[1].Edges)
	assert.Equal(t, m.Graphs[1].CSV, loaded.Graphs[1].CSV)
	assert.Empty(t, p.Config().GraphInput)
}

func TestRunCancelled(t *testing.T) {
	q, a, oracle := gdprDoc()
	p, err := New(testConfig(t, writeInput(t, "qa.txt", q, a)), WithOracle(oracle))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Cooccurrence(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrOracleFailure)
}

type replies []string

func (r *replies) Chat(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
	next := (*r)[0]
	*r = (*r)[1:]
	return &llm.ChatResponse{Content: next}, nil
}

type fixedResolver map[string]string

func (f fixedResolver) Lookup(_ context.Context, label string) (string, bool) {
	id, ok := f[label]
	return id, ok
}

func TestTriples(t *testing.T) {
	oracle := nlptest.NewParser()
	resolved := oracle.Add(nlptest.Doc([][]nlptest.Tok{
		{nlptest.T("Docker", 1), nlptest.T("runs", 1), nlptest.T("containers", 1), nlptest.T(".", 1)},
	}))
	chat := &replies{resolved, "Docker runs containers.", "1. (Docker, runs, containers)\n2. (the docker, is, a container platform)"}

	input := writeInput(t, "kg.txt", "Docker runs containers.")
	p, err := New(testConfig(t, input), WithOracle(oracle), WithLLM(chat),
		WithResolver(fixedResolver{"Containers": "Q6420271"}))
	require.NoError(t, err)

	res, err := p.Triples(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Triples, 2)
	assert.Equal(t, "Docker", res.Triples[1].Subject)

	ttl := readFile(t, res.Turtle)
	assert.Contains(t, ttl, "ex:Docker ex:runs wd:Q6420271 .")
	assert.Contains(t, ttl, `ex:Docker ex:is "A container platform" .`)
	assert.Equal(t, "Subject,Predicate,Object\nDocker,runs,Containers\nDocker,is,A container platform\n", readFile(t, res.CSV))
	assert.Equal(t, "Entity\nA container platform\nContainers\nDocker\n", readFile(t, res.Nodes))
	assert.FileExists(t, res.HTML)
}

func TestTriplesWithoutLLM(t *testing.T) {
	cfg := testConfig(t, writeInput(t, "kg.txt", "x"))
	cfg.LLM.Provider = ""
	p, err := New(cfg, WithOracle(nlptest.NewParser()))
	require.NoError(t, err)

	_, err = p.Triples(context.Background())
	assert.ErrorIs(t, err, ErrLLMNotConfigured)
}
