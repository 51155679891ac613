// Package export renders assembled graphs as edge lists, workbooks,
// interactive HTML and Neo4j graphs.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/brunobiangulo/entgraph/graph"
)

// EdgeRows returns the edge list with its header: Entity1,Entity2 for an
// undirected graph and Entity1,Relation,Entity2 for a directed one.
func EdgeRows(g *graph.Graph) [][]string {
	edges := g.Edges()
	rows := make([][]string, 0, len(edges)+1)
	if g.Directed {
		rows = append(rows, []string{"Entity1", "Relation", "Entity2"})
		for _, e := range edges {
			rows = append(rows, []string{e.Source, string(e.Kind), e.Target})
		}
		return rows
	}
	rows = append(rows, []string{"Entity1", "Entity2"})
	for _, e := range edges {
		rows = append(rows, []string{e.Source, e.Target})
	}
	return rows
}

// WriteEdgeCSV writes the edge list of g to w.
func WriteEdgeCSV(w io.Writer, g *graph.Graph) error {
	return writeCSV(w, EdgeRows(g))
}

// WriteEdgeCSVFile writes the edge list of g to path, creating parent
// directories.
func WriteEdgeCSVFile(path string, g *graph.Graph) error {
	return writeFile(path, func(w io.Writer) error { return WriteEdgeCSV(w, g) })
}

// WriteRowsCSVFile writes header and rows to path.
func WriteRowsCSVFile(path string, header []string, rows [][]string) error {
	return writeFile(path, func(w io.Writer) error {
		return writeCSV(w, append([][]string{header}, rows...))
	})
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
