package parser

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ---------------------------------------------------------------------------
// Registry tests
// ---------------------------------------------------------------------------

func TestRegistryBuiltInParsers(t *testing.T) {
	reg := NewRegistry()

	formats := []string{"pdf", "docx", "xlsx", "txt"}
	for _, format := range formats {
		t.Run(format, func(t *testing.T) {
			p, err := reg.Get(format)
			require.NoError(t, err)
			assert.Contains(t, p.SupportedFormats(), format)
		})
	}
}

func TestRegistryUnknown(t *testing.T) {
	reg := NewRegistry()
	for _, format := range []string{"csv", "json", "pptx", "doc", ""} {
		t.Run("format_"+format, func(t *testing.T) {
			p, err := reg.Get(format)
			assert.Error(t, err)
			assert.Nil(t, p)
		})
	}
}

func TestRegistryCustomParser(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("md")
	require.Error(t, err)

	reg.Register("md", &TextParser{})
	p, err := reg.Get("md")
	require.NoError(t, err)
	assert.IsType(t, &TextParser{}, p)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "docx", Format("/data/ICT_Topics.DOCX"))
	assert.Equal(t, "", Format("README"))
}

func TestParseFileMissing(t *testing.T) {
	_, err := NewRegistry().ParseFile(context.Background(), filepath.Join(t.TempDir(), "absent.docx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// ---------------------------------------------------------------------------
// Format tests
// ---------------------------------------------------------------------------

func TestTextParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.txt")
	require.NoError(t, os.WriteFile(path, []byte("Q: What is AI?\r\n\n  A: A field.  \n"), 0o644))

	res, err := NewRegistry().ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q: What is AI?", "A: A field."}, res.Paragraphs)
	assert.Equal(t, "native", res.Method)
}

func TestDOCXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.docx")
	paras := []string{"Q: What is <GDPR> & why?", "A: It regulates \"data\"."}
	require.NoError(t, WriteDOCX(path, paras))

	res, err := (&DOCXParser{}).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, paras, res.Paragraphs)
}

func TestWriteDOCXCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "process_data", "nested", "ICT_edit.docx")
	require.NoError(t, WriteDOCX(path, []string{"What is AI ?"}))

	res, err := (&DOCXParser{}).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"What is AI ?"}, res.Paragraphs)
}

func TestDOCXSkipsTablesAndJoinsRuns(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Q: What is </w:t></w:r><w:hyperlink><w:r><w:t>Docker</w:t></w:r></w:hyperlink><w:r><w:t>?</w:t></w:r></w:p>
    <w:p></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell text</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
    <w:p><w:r><w:t>A: A container runtime.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	zw, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = zw.Write([]byte(docXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	res, err := (&DOCXParser{}).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q: What is Docker?", "A: A container runtime."}, res.Paragraphs)
}

func TestDOCXMissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, zip.NewWriter(f).Close())
	require.NoError(t, f.Close())

	_, err = (&DOCXParser{}).Parse(context.Background(), path)
	assert.Error(t, err)
}

func TestXLSXParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Q: What is ETL?", "A: Extract, transform, load."}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Q: What is ELT?", "A: Load first."}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := (&XLSXParser{}).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Q: What is ETL?", "A: Extract, transform, load.",
		"Q: What is ELT?", "A: Load first.",
	}, res.Paragraphs)
	assert.Equal(t, "1", res.Metadata["sheet_count"])
}

func TestSplitBlocks(t *testing.T) {
	text := "Q: What is\nKubernetes?\n\n\nA: An orchestrator.\n  \n"
	assert.Equal(t, []string{"Q: What is Kubernetes?", "A: An orchestrator."}, splitBlocks(text))
	assert.Empty(t, splitBlocks("  \n\n"))
}
