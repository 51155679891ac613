package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/brunobiangulo/entgraph/graph"
)

// HTMLOptions controls the interactive graph page.
type HTMLOptions struct {
	Title      string
	Height     string
	Width      string
	Background string
	FontColor  string
}

// DefaultHTMLOptions matches the standard 750px canvas on a white page.
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{
		Title:      "Entity graph",
		Height:     "750px",
		Width:      "100%",
		Background: "white",
		FontColor:  "black",
	}
}

type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
	Title string `json:"title,omitempty"`
}

type visEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Title  string `json:"title,omitempty"`
	Label  string `json:"label,omitempty"`
	Arrows string `json:"arrows,omitempty"`
}

type pageData struct {
	HTMLOptions
	Nodes template.JS
	Edges template.JS
}

var pageTemplate = template.Must(template.New("graph").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
<style>
  body { margin: 0; background-color: {{.Background}}; }
  #graph { width: {{.Width}}; height: {{.Height}}; background-color: {{.Background}}; }
</style>
</head>
<body>
<div id="graph"></div>
<script>
  var nodes = new vis.DataSet({{.Nodes}});
  var edges = new vis.DataSet({{.Edges}});
  var options = {
    nodes: { shape: "dot", font: { color: {{.FontColor}} } },
    edges: { font: { align: "middle" }, smooth: false },
    physics: { solver: "forceAtlas2Based", stabilization: { iterations: 250 } }
  };
  new vis.Network(document.getElementById("graph"), { nodes: nodes, edges: edges }, options);
</script>
</body>
</html>
`))

// WriteHTML renders g as a standalone vis-network page. Node colors come
// from the component assignment; directed edges get arrows and carry their
// relation kind as a label.
func WriteHTML(w io.Writer, g *graph.Graph, opts HTMLOptions) error {
	nodes := make([]visNode, 0, g.NumNodes())
	for _, n := range g.Nodes() {
		nodes = append(nodes, visNode{ID: n.Label, Label: n.Label, Color: n.Color, Title: n.Label})
	}
	edges := make([]visEdge, 0, g.NumEdges())
	for _, e := range g.Edges() {
		ve := visEdge{From: e.Source, To: e.Target, Title: e.Title}
		if g.Directed {
			ve.Label = string(e.Kind)
			ve.Arrows = "to"
		}
		edges = append(edges, ve)
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return err
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return err
	}

	data := pageData{HTMLOptions: opts, Nodes: template.JS(nodesJSON), Edges: template.JS(edgesJSON)}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering graph page: %w", err)
	}
	return nil
}

// WriteHTMLFile writes the graph page to path, creating parent directories.
func WriteHTMLFile(path string, g *graph.Graph, opts HTMLOptions) error {
	return writeFile(path, func(w io.Writer) error { return WriteHTML(w, g, opts) })
}
