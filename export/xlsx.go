package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/brunobiangulo/entgraph/graph"
)

const (
	edgesSheet = "Edges"
	nodesSheet = "Nodes"
)

// WriteEdgeWorkbook writes an XLSX file with an Edges sheet (the edge list plus
// title and unit) and a Nodes sheet (label, component, color).
func WriteEdgeWorkbook(path string, g *graph.Graph) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", edgesSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(nodesSheet); err != nil {
		return fmt.Errorf("creating nodes sheet: %w", err)
	}

	rows := EdgeRows(g)
	rows[0] = append(rows[0], "Title", "Unit")
	for i, e := range g.Edges() {
		rows[i+1] = append(rows[i+1], e.Title, fmt.Sprintf("%d", e.Unit))
	}
	for i, row := range rows {
		if err := setRow(f, edgesSheet, i+1, row); err != nil {
			return err
		}
	}

	if err := setRow(f, nodesSheet, 1, []string{"Entity", "Component", "Color"}); err != nil {
		return err
	}
	for i, n := range g.Nodes() {
		if err := setRow(f, nodesSheet, i+2, []string{n.Label, fmt.Sprintf("%d", n.Component), n.Color}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
