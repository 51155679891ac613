package graph

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndirectedEdgeLastWriteWins(t *testing.T) {
	g := New(false)
	g.AddEdge(Edge{Source: "AWS", Target: "Docker", Kind: KindWeak, Title: "first", Unit: 1})
	g.AddEdge(Edge{Source: "Docker", Target: "AWS", Kind: KindStrong, Title: "second", Unit: 2})

	require.Equal(t, 1, g.NumEdges())
	e, ok := g.Edge("AWS", "Docker")
	require.True(t, ok)
	assert.Equal(t, "AWS", e.Source, "orientation of first insert is kept")
	assert.Equal(t, KindStrong, e.Kind)
	assert.Equal(t, "second", e.Title)
	assert.Equal(t, 2, e.Unit)
	assert.True(t, g.HasEdge("Docker", "AWS"))
}

func TestDirectedEdgesAreOrdered(t *testing.T) {
	g := New(true)
	g.AddEdge(Edge{Source: "AWS", Target: "Docker", Kind: KindUses})
	assert.True(t, g.HasEdge("AWS", "Docker"))
	assert.False(t, g.HasEdge("Docker", "AWS"))

	g.AddEdge(Edge{Source: "Docker", Target: "AWS", Kind: KindCoOccurs})
	assert.Equal(t, 2, g.NumEdges())
}

func TestAddNodeIdempotent(t *testing.T) {
	g := New(false)
	g.AddNode("GDPR")
	g.AddNode("GDPR")
	g.AddEdge(Edge{Source: "GDPR", Target: "AWS"})
	labels := []string{}
	for _, n := range g.Nodes() {
		labels = append(labels, n.Label)
	}
	assert.Equal(t, []string{"GDPR", "AWS"}, labels)
}

func TestComponents(t *testing.T) {
	g := New(true)
	g.AddEdge(Edge{Source: "a", Target: "b"})
	g.AddEdge(Edge{Source: "c", Target: "b"})
	g.AddEdge(Edge{Source: "d", Target: "e"})
	g.AddNode("f")

	comps := Components(g)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d", "e"}, {"f"}}, comps)
	assert.Nil(t, Components(New(false)))
}

func TestAssignColorsFollowsComponents(t *testing.T) {
	g := New(false)
	g.AddEdge(Edge{Source: "a", Target: "b"})
	g.AddEdge(Edge{Source: "b", Target: "c"})
	g.AddEdge(Edge{Source: "x", Target: "y"})
	g.AddNode("z")

	comps := AssignColors(g, rand.New(rand.NewPCG(7, 11)))
	require.Len(t, comps, 3)

	for ci, comp := range comps {
		first, _ := g.Node(comp[0])
		assert.Regexp(t, `^#[0-9a-f]{6}$`, first.Color)
		for _, label := range comp {
			n, ok := g.Node(label)
			require.True(t, ok)
			assert.Equal(t, first.Color, n.Color)
			assert.Equal(t, ci, n.Component)
		}
	}
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		lemma string
		want  EdgeKind
		ok    bool
	}{
		{"be", KindIsA, true},
		{"represent", KindIsA, true},
		{"regulate", KindRegulates, true},
		{"Manage", KindRegulates, true},
		{"leverage", KindUses, true},
		{"derive", KindBasedOn, true},
		{"belong", KindPartOf, true},
		{"run", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.lemma, func(t *testing.T) {
			got, ok := c.Classify(tt.lemma)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifierFirstPatternWins(t *testing.T) {
	c := NewClassifier([]Pattern{
		{KindUses, []string{"build"}},
		{KindBasedOn, []string{"build"}},
	})
	got, ok := c.Classify("build")
	require.True(t, ok)
	assert.Equal(t, KindUses, got)
}

func TestTextUnitText(t *testing.T) {
	u := TextUnit{Question: "Q: What is AI?", Answer: "A: A field."}
	assert.Equal(t, "Q: What is AI? A: A field.", u.Text())
}
