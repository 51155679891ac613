package triples

import (
	"sort"

	"github.com/brunobiangulo/entgraph/export"
	"github.com/brunobiangulo/entgraph/graph"
)

// Graph builds a directed graph with one edge per subject/object pair; the
// predicate becomes the edge kind and title.
func Graph(ts []Triple) *graph.Graph {
	g := graph.New(true)
	for i, t := range ts {
		g.AddEdge(graph.Edge{
			Source: t.Subject,
			Target: t.Object,
			Kind:   graph.EdgeKind(t.Predicate),
			Title:  t.Predicate,
			Unit:   i + 1,
		})
	}
	return g
}

// Nodes returns the distinct subjects and objects in sorted order.
func Nodes(ts []Triple) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range ts {
		for _, n := range []string{t.Subject, t.Object} {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out
}

// WriteTriplesCSV writes every triple in extraction order.
func WriteTriplesCSV(path string, ts []Triple) error {
	rows := make([][]string, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, []string{t.Subject, t.Predicate, t.Object})
	}
	return export.WriteRowsCSVFile(path, []string{"Subject", "Predicate", "Object"}, rows)
}

// WriteNodesCSV writes the sorted entity list.
func WriteNodesCSV(path string, ts []Triple) error {
	nodes := Nodes(ts)
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{n})
	}
	return export.WriteRowsCSVFile(path, []string{"Entity"}, rows)
}
