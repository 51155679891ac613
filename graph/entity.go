package graph

import "fmt"

// EdgeKind labels an edge with a relation or a co-occurrence signal.
type EdgeKind string

// Relation kinds produced by the verb classifier.
const (
	KindIsA       EdgeKind = "is_a"
	KindRegulates EdgeKind = "regulates"
	KindUses      EdgeKind = "uses"
	KindBasedOn   EdgeKind = "based_on"
	KindPartOf    EdgeKind = "part_of"
)

// Co-occurrence signals.
const (
	KindCoOccurs EdgeKind = "co_occurs" // directed graph, mentions in different sentences
	KindStrong   EdgeKind = "strong"    // undirected graph, close in the dependency tree
	KindWeak     EdgeKind = "weak"      // undirected graph, different sentences
)

// TextUnit is one question/answer pair; the unit of context for edges.
type TextUnit struct {
	Question string
	Answer   string
}

// Text is the combined text handed to the parser.
func (u TextUnit) Text() string {
	return u.Question + " " + u.Answer
}

// Node is a canonical entity label.
type Node struct {
	Label     string `json:"label"`
	Color     string `json:"color,omitempty"`
	Component int    `json:"component"`
}

// Edge connects two canonical labels. Unit is the 1-based index of the
// TextUnit that last wrote it.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Title  string   `json:"title"`
	Unit   int      `json:"unit"`
}

func strongTitle(maxDistance, unit int) string {
	return fmt.Sprintf("Strong: Dep-path ≤%d in Q%d", maxDistance, unit)
}

func weakTitle(unit int) string {
	return fmt.Sprintf("Weak: Co-occurs in Q%d", unit)
}
