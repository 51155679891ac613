package graph

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunobiangulo/entgraph/nlp"
	"github.com/brunobiangulo/entgraph/nlp/nlptest"
	"github.com/brunobiangulo/entgraph/synonym"
)

type tok = nlptest.Tok

var (
	T = nlptest.T
	L = nlptest.L
)

func sentenceText(toks []tok) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// unit registers a two-sentence parse and returns the matching TextUnit.
func unit(p *nlptest.Parser, q, a []tok, ents ...nlptest.Ent) TextUnit {
	p.Add(nlptest.Doc([][]tok{q, a}, ents...))
	return TextUnit{Question: sentenceText(q), Answer: sentenceText(a)}
}

func newTestBuilder(p nlp.Parser, syn *synonym.Map) *Builder {
	x := nlp.NewExtractor(nlp.DefaultAllowedLabels(), nlp.NewGazetteer(nlp.DefaultTerms()))
	return NewBuilder(p, x, syn, WithRand(rand.New(rand.NewPCG(1, 2))))
}

// whatIs is "Q: What is <term> ?" rooted at "is".
func whatIs(term string) []tok {
	return []tok{T("Q:", 2), T("What", 2), L("is", "be", 2), T(term, 2), T("?", 2)}
}

func scenario(p *nlptest.Parser) []TextUnit {
	return []TextUnit{
		unit(p, whatIs("GDPR"),
			[]tok{T("A:", 2), T("GDPR", 2), L("regulates", "regulate", 2), T("AWS", 5), T("data", 5), T("storage", 2), T(".", 2)}),
		unit(p, whatIs("Docker"),
			[]tok{T("A:", 2), T("Docker", 2), L("uses", "use", 2), T("Kubernetes", 2), T(".", 2)}),
	}
}

func nodeLabels(g *Graph) []string {
	var out []string
	for _, n := range g.Nodes() {
		out = append(out, n.Label)
	}
	return out
}

func TestBuildRelationsScenario(t *testing.T) {
	p := nlptest.NewParser()
	units := scenario(p)

	g, err := newTestBuilder(p, synonym.NewMap(synonym.DefaultManual())).BuildRelations(context.Background(), units)
	require.NoError(t, err)

	assert.True(t, g.Directed)
	assert.ElementsMatch(t, []string{"GDPR", "AWS", "Docker", "Kubernetes"}, nodeLabels(g))
	require.Equal(t, 2, g.NumEdges())

	e, ok := g.Edge("GDPR", "AWS")
	require.True(t, ok)
	assert.Equal(t, KindRegulates, e.Kind)
	assert.Equal(t, 1, e.Unit)

	e, ok = g.Edge("Docker", "Kubernetes")
	require.True(t, ok)
	assert.Equal(t, KindUses, e.Kind)
	assert.Equal(t, 2, e.Unit)

	assert.ElementsMatch(t, [][]string{{"GDPR", "AWS"}, {"Docker", "Kubernetes"}}, Components(g))
	gdpr, _ := g.Node("GDPR")
	aws, _ := g.Node("AWS")
	assert.Equal(t, gdpr.Color, aws.Color)
	assert.Equal(t, gdpr.Component, aws.Component)
}

func TestBuildCooccurrenceScenario(t *testing.T) {
	p := nlptest.NewParser()
	units := scenario(p)

	g, err := newTestBuilder(p, nil).BuildCooccurrence(context.Background(), units)
	require.NoError(t, err)

	assert.False(t, g.Directed)
	assert.ElementsMatch(t, []string{"GDPR", "AWS", "Docker", "Kubernetes"}, nodeLabels(g))

	// First occurrences sit in the question, so both pairs span sentences.
	e, ok := g.Edge("AWS", "GDPR")
	require.True(t, ok)
	assert.Equal(t, KindWeak, e.Kind)
	assert.Equal(t, "Weak: Co-occurs in Q1", e.Title)

	e, ok = g.Edge("Docker", "Kubernetes")
	require.True(t, ok)
	assert.Equal(t, "Weak: Co-occurs in Q2", e.Title)

	assert.False(t, g.HasEdge("GDPR", "Docker"))
	assert.Len(t, Components(g), 2)
}

func TestStrongEdgeThreshold(t *testing.T) {
	// AWS <- x1 <- ... <- Docker, one hop per filler token.
	chainTo := func(fillers int) []tok {
		toks := []tok{T("AWS", 0)}
		for i := 0; i < fillers; i++ {
			toks = append(toks, T("link", i))
		}
		return append(toks, T("Docker", fillers))
	}

	tests := []struct {
		name    string
		fillers int
		strong  bool
	}{
		{"distance 3", 2, true},
		{"distance 4", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := nlptest.NewParser()
			d := nlptest.Doc([][]tok{chainTo(tt.fillers)})
			p.Add(d)
			dist, ok := nlp.DependencyDistance(d, 0, tt.fillers+1)
			require.True(t, ok)
			require.Equal(t, tt.fillers+1, dist)

			g, err := newTestBuilder(p, nil).BuildCooccurrence(context.Background(),
				[]TextUnit{{Question: d.Text[:3], Answer: d.Text[4:]}})
			require.NoError(t, err)

			assert.ElementsMatch(t, []string{"AWS", "Docker"}, nodeLabels(g))
			e, ok := g.Edge("AWS", "Docker")
			assert.Equal(t, tt.strong, ok)
			if tt.strong {
				assert.Equal(t, KindStrong, e.Kind)
				assert.Equal(t, "Strong: Dep-path ≤3 in Q1", e.Title)
			}
		})
	}
}

func TestMaxDistanceOption(t *testing.T) {
	p := nlptest.NewParser()
	d := nlptest.Doc([][]tok{{T("AWS", 0), T("link", 0), T("Docker", 1)}})
	p.Add(d)
	x := nlp.NewExtractor(nil, nlp.NewGazetteer(nlp.DefaultTerms()))

	g, err := NewBuilder(p, x, nil, WithMaxDistance(1)).BuildCooccurrence(context.Background(),
		[]TextUnit{{Question: "AWS", Answer: "link Docker"}})
	require.NoError(t, err)
	assert.Equal(t, 0, g.NumEdges())
	assert.Equal(t, 2, g.NumNodes())
}

func TestRelationTakesPriorityOverCoOccurs(t *testing.T) {
	p := nlptest.NewParser()
	u := unit(p,
		[]tok{T("AWS", 1), T("runs", 1), T(".", 1)},
		[]tok{T("AWS", 1), L("regulates", "regulate", 1), T("Docker", 1), T(".", 1)},
	)

	g, err := newTestBuilder(p, nil).BuildRelations(context.Background(), []TextUnit{u})
	require.NoError(t, err)

	require.Equal(t, 1, g.NumEdges())
	e, ok := g.Edge("AWS", "Docker")
	require.True(t, ok)
	assert.Equal(t, KindRegulates, e.Kind)
}

func TestCoOccursDirectionFollowsTextOrder(t *testing.T) {
	p := nlptest.NewParser()
	u := unit(p,
		[]tok{T("Azure", 1), T("scales", 1), T(".", 1)},
		[]tok{T("Docker", 1), T("ships", 1), T(".", 1)},
	)

	g, err := newTestBuilder(p, nil).BuildRelations(context.Background(), []TextUnit{u})
	require.NoError(t, err)

	e, ok := g.Edge("Azure", "Docker")
	require.True(t, ok)
	assert.Equal(t, KindCoOccurs, e.Kind)
	assert.Equal(t, "co_occurs", e.Title)
	assert.False(t, g.HasEdge("Docker", "Azure"))
}

func TestLaterVerbOverwritesEarlier(t *testing.T) {
	p := nlptest.NewParser()
	d := nlptest.Doc([][]tok{{
		T("AWS", 1), L("uses", "use", 1), T("and", 1), L("regulates", "regulate", 1), T("Docker", 1),
	}})
	p.Add(d)

	g, err := newTestBuilder(p, nil).BuildRelations(context.Background(),
		[]TextUnit{{Question: "AWS uses", Answer: "and regulates Docker"}})
	require.NoError(t, err)

	e, ok := g.Edge("AWS", "Docker")
	require.True(t, ok)
	assert.Equal(t, KindRegulates, e.Kind)
}

func TestOrphanEntitiesRetained(t *testing.T) {
	p := nlptest.NewParser()
	u := unit(p,
		[]tok{T("Acme", 1), T("hires", 1), T(".", 1)},
		[]tok{T("Nothing", 1), T("here", 1)},
		nlptest.Ent{Text: "Acme", Label: "ORG"},
	)

	for name, build := range map[string]func(*Builder) (*Graph, error){
		"cooccurrence": func(b *Builder) (*Graph, error) { return b.BuildCooccurrence(context.Background(), []TextUnit{u}) },
		"relations":    func(b *Builder) (*Graph, error) { return b.BuildRelations(context.Background(), []TextUnit{u}) },
	} {
		t.Run(name, func(t *testing.T) {
			g, err := build(newTestBuilder(p, nil))
			require.NoError(t, err)
			assert.Equal(t, []string{"Acme"}, nodeLabels(g))
			assert.Equal(t, 0, g.NumEdges())
			n, _ := g.Node("Acme")
			assert.NotEmpty(t, n.Color)
		})
	}
}

func TestLabelsAreNormalized(t *testing.T) {
	p := nlptest.NewParser()
	u := unit(p,
		[]tok{T("the", 1), T("Acme", 1), T("Cloud", 1)},
		[]tok{T("Machine", 1), T("Learning", 1), T("wins", 1)},
		nlptest.Ent{Text: "the Acme", Label: "ORG"},
	)

	g, err := newTestBuilder(p, synonym.NewMap(synonym.DefaultManual())).BuildCooccurrence(context.Background(), []TextUnit{u})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Acme", "ML"}, nodeLabels(g))
	assert.True(t, g.HasEdge("Acme", "ML"))
}

func TestDisallowedLabelsIgnored(t *testing.T) {
	p := nlptest.NewParser()
	u := unit(p,
		[]tok{T("Alice", 1), T("likes", 1)},
		[]tok{T("Paris", 1), T("wins", 1)},
		nlptest.Ent{Text: "Alice", Label: "PERSON"},
		nlptest.Ent{Text: "Paris", Label: "GPE"},
	)
	g, err := newTestBuilder(p, nil).BuildCooccurrence(context.Background(), []TextUnit{u})
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris"}, nodeLabels(g))
}

func TestParseErrorPropagates(t *testing.T) {
	p := nlptest.NewParser()
	p.Err = errors.New("parser down")

	_, err := newTestBuilder(p, nil).BuildRelations(context.Background(), []TextUnit{{Question: "a", Answer: "b"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, p.Err)
	assert.Contains(t, err.Error(), "unit 1")
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := nlptest.NewParser()
	_, err := newTestBuilder(p, nil).BuildCooccurrence(ctx, []TextUnit{{Question: "a", Answer: "b"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.Calls)
}

func TestEmptyUnits(t *testing.T) {
	g, err := newTestBuilder(nlptest.NewParser(), nil).BuildRelations(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, g.NumNodes())
}
