package entgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manifest records one full run and the artifacts it produced.
type Manifest struct {
	ID           string        `json:"id" yaml:"id"`
	Input        string        `json:"input" yaml:"input"`
	StartedAt    time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time     `json:"finished_at" yaml:"finished_at"`
	MaxDistance  int           `json:"max_distance" yaml:"max_distance"`
	SynonymTerms int           `json:"synonym_terms" yaml:"synonym_terms"`
	Cleaned      string        `json:"cleaned" yaml:"cleaned"`
	SynonymTable string        `json:"synonym_table" yaml:"synonym_table"`
	Graphs       []GraphResult `json:"graphs" yaml:"graphs"`
	Path         string        `json:"-" yaml:"-"`
}

// Run executes the synonym step, then both graph builds over the cleaned
// document, and writes a YAML manifest next to the other outputs.
func (p *Pipeline) Run(ctx context.Context) (*Manifest, error) {
	m := &Manifest{
		ID:          uuid.NewString(),
		Input:       p.cfg.Input,
		StartedAt:   time.Now().UTC(),
		MaxDistance: p.cfg.MaxDistance,
	}
	slog.Info("pipeline: run started", "id", m.ID, "input", m.Input)

	syn, err := p.Synonyms(ctx)
	if err != nil {
		return nil, fmt.Errorf("synonym step: %w", err)
	}
	m.SynonymTerms = syn.Map.Len()
	m.Cleaned = syn.Cleaned
	m.SynonymTable = syn.Table

	// Both graphs read the document the synonym step just wrote.
	prev := p.cfg.GraphInput
	p.cfg.GraphInput = syn.Cleaned
	defer func() { p.cfg.GraphInput = prev }()

	co, err := p.Cooccurrence(ctx)
	if err != nil {
		return nil, fmt.Errorf("co-occurrence step: %w", err)
	}
	rel, err := p.Relations(ctx)
	if err != nil {
		return nil, fmt.Errorf("relation step: %w", err)
	}
	m.Graphs = []GraphResult{*co, *rel}
	m.FinishedAt = time.Now().UTC()

	m.Path = filepath.Join(p.cfg.OutputDir, manifestFile)
	if err := writeManifest(m.Path, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	slog.Info("pipeline: run complete", "id", m.ID, "manifest", m.Path)
	return m, nil
}

func writeManifest(path string, m *Manifest) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

// ReadManifest loads a manifest written by Run.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	m.Path = path
	return &m, nil
}
