// Package graph assembles entity graphs from parsed text units: an
// undirected co-occurrence graph and a directed relation graph.
package graph

// Graph is a simple graph over string labels. Nodes and edges keep
// insertion order. Re-adding an edge for the same pair (unordered when
// undirected) overwrites its attributes but keeps its position and
// orientation.
type Graph struct {
	Directed bool

	nodes     []*Node
	nodeIndex map[string]int
	edges     []Edge
	edgeIndex map[[2]string]int
}

// New creates an empty graph.
func New(directed bool) *Graph {
	return &Graph{
		Directed:  directed,
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[[2]string]int),
	}
}

// AddNode inserts label if missing and returns its node.
func (g *Graph) AddNode(label string) *Node {
	if i, ok := g.nodeIndex[label]; ok {
		return g.nodes[i]
	}
	n := &Node{Label: label, Component: -1}
	g.nodeIndex[label] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return n
}

// AddEdge inserts e, adding its endpoints as nodes. An existing edge for the
// same pair is overwritten.
func (g *Graph) AddEdge(e Edge) {
	g.AddNode(e.Source)
	g.AddNode(e.Target)
	k := g.key(e.Source, e.Target)
	if i, ok := g.edgeIndex[k]; ok {
		g.edges[i].Kind = e.Kind
		g.edges[i].Title = e.Title
		g.edges[i].Unit = e.Unit
		return
	}
	g.edgeIndex[k] = len(g.edges)
	g.edges = append(g.edges, e)
}

// HasEdge reports whether an edge source→target exists (either direction
// when undirected).
func (g *Graph) HasEdge(source, target string) bool {
	_, ok := g.edgeIndex[g.key(source, target)]
	return ok
}

// Edge returns the edge between source and target.
func (g *Graph) Edge(source, target string) (Edge, bool) {
	i, ok := g.edgeIndex[g.key(source, target)]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Node returns the node for label.
func (g *Graph) Node(label string) (Node, bool) {
	i, ok := g.nodeIndex[label]
	if !ok {
		return Node{}, false
	}
	return *g.nodes[i], true
}

// Nodes returns a copy of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = *n
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int { return len(g.edges) }

func (g *Graph) key(a, b string) [2]string {
	if !g.Directed && b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}
