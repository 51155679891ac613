package export

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/brunobiangulo/entgraph/graph"
)

func relationGraph() *graph.Graph {
	g := graph.New(true)
	g.AddEdge(graph.Edge{Source: "GDPR", Target: "AWS", Kind: graph.KindRegulates, Title: "regulates", Unit: 1})
	g.AddEdge(graph.Edge{Source: "Docker", Target: "Kubernetes", Kind: graph.KindUses, Title: "uses", Unit: 2})
	g.AddNode("Azure")
	return g
}

func cooccurrenceGraph() *graph.Graph {
	g := graph.New(false)
	g.AddEdge(graph.Edge{Source: "AWS", Target: "Docker", Kind: graph.KindWeak, Title: "Weak: Co-occurs in Q1", Unit: 1})
	return g
}

func TestWriteEdgeCSV(t *testing.T) {
	t.Run("directed", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteEdgeCSV(&buf, relationGraph()))
		assert.Equal(t, "Entity1,Relation,Entity2\nGDPR,regulates,AWS\nDocker,uses,Kubernetes\n", buf.String())
	})

	t.Run("undirected", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteEdgeCSV(&buf, cooccurrenceGraph()))
		assert.Equal(t, "Entity1,Entity2\nAWS,Docker\n", buf.String())
	})

	t.Run("quotes labels with commas", func(t *testing.T) {
		g := graph.New(false)
		g.AddEdge(graph.Edge{Source: "Acme, Inc.", Target: "AWS"})
		var buf bytes.Buffer
		require.NoError(t, WriteEdgeCSV(&buf, g))
		assert.Equal(t, "Entity1,Entity2\n\"Acme, Inc.\",AWS\n", buf.String())
	})
}

func TestWriteEdgeCSVFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "process_data", "edges.csv")
	require.NoError(t, WriteEdgeCSVFile(path, cooccurrenceGraph()))
	assert.FileExists(t, path)
}

func TestWriteHTML(t *testing.T) {
	g := relationGraph()
	graph.AssignColors(g, rand.New(rand.NewPCG(1, 1)))

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, g, DefaultHTMLOptions()))
	page := buf.String()

	assert.Contains(t, page, "height: 750px")
	assert.Contains(t, page, "width: 100%")
	assert.Contains(t, page, "vis-network")

	nodes := extractDataSet(t, page, "nodes")
	edges := extractDataSet(t, page, "edges")
	require.Len(t, nodes, 5)
	require.Len(t, edges, 2)
	assert.Equal(t, "GDPR", nodes[0]["id"])
	assert.Regexp(t, `^#[0-9a-f]{6}$`, nodes[0]["color"])
	assert.Equal(t, "to", edges[0]["arrows"])
	assert.Equal(t, "regulates", edges[0]["label"])
}

func TestWriteHTMLUndirectedHasNoArrows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, cooccurrenceGraph(), DefaultHTMLOptions()))

	edges := extractDataSet(t, buf.String(), "edges")
	require.Len(t, edges, 1)
	assert.Nil(t, edges[0]["arrows"])
	assert.Nil(t, edges[0]["label"])
	assert.Equal(t, "Weak: Co-occurs in Q1", edges[0]["title"])
}

func TestWriteHTMLEscapesLabels(t *testing.T) {
	g := graph.New(false)
	g.AddNode("</script><b>x</b>")
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, g, DefaultHTMLOptions()))
	assert.NotContains(t, buf.String(), "</script><b>")
}

func extractDataSet(t *testing.T, page, name string) []map[string]any {
	t.Helper()
	re := regexp.MustCompile(`var ` + name + ` = new vis\.DataSet\((.*)\);`)
	m := re.FindStringSubmatch(page)
	require.Len(t, m, 2, "dataset %s not found", name)
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(m[1])), &out))
	return out
}

func TestWriteEdgeWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.xlsx")
	require.NoError(t, WriteEdgeWorkbook(path, relationGraph()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{edgesSheet, nodesSheet}, f.GetSheetList())

	edges, err := f.GetRows(edgesSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Entity1", "Relation", "Entity2", "Title", "Unit"},
		{"GDPR", "regulates", "AWS", "regulates", "1"},
		{"Docker", "uses", "Kubernetes", "uses", "2"},
	}, edges)

	nodes, err := f.GetRows(nodesSheet)
	require.NoError(t, err)
	require.Len(t, nodes, 6)
	assert.Equal(t, "Azure", nodes[5][0])
}

func TestExportParams(t *testing.T) {
	p := ExportParams(relationGraph(), "relations")
	assert.Equal(t, "relations", p["variant"])
	assert.Equal(t, true, p["directed"])
	assert.Len(t, p["nodes"], 5)
	edges := p["edges"].([]map[string]any)
	require.Len(t, edges, 2)
	assert.Equal(t, "regulates", edges[0]["kind"])
	assert.Equal(t, 1, edges[0]["unit"])
}
