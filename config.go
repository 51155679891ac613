package entgraph

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/brunobiangulo/entgraph/graph"
	"github.com/brunobiangulo/entgraph/llm"
	"github.com/brunobiangulo/entgraph/nlp"
)

// Config holds all configuration for an entgraph run.
type Config struct {
	// Input is the raw source document (docx, pdf, xlsx or txt). It feeds the
	// synonym step and the synonym map used by both graph builds.
	Input string `json:"input" yaml:"input" mapstructure:"input"`

	// GraphInput overrides the document the graphs are built from. When
	// empty, the cleaned document written by the synonym step is used if it
	// exists, otherwise Input.
	GraphInput string `json:"graph_input" yaml:"graph_input" mapstructure:"graph_input"`

	// OutputDir receives the cleaned document, edge lists, workbooks,
	// triples and the run manifest.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir" validate:"required"`

	// VisualsDir receives the interactive HTML graphs.
	VisualsDir string `json:"visuals_dir" yaml:"visuals_dir" mapstructure:"visuals_dir" validate:"required"`

	// MaxDistance is the dependency-path threshold for strong and verb edges.
	MaxDistance int `json:"max_distance" yaml:"max_distance" mapstructure:"max_distance" validate:"min=1"`

	// AllowedLabels are the entity kinds kept from the oracle's NER output.
	AllowedLabels []string `json:"allowed_labels" yaml:"allowed_labels" mapstructure:"allowed_labels" validate:"required,min=1"`

	// Gazetteer terms are matched case-insensitively as whole words.
	Gazetteer []string `json:"gazetteer" yaml:"gazetteer" mapstructure:"gazetteer"`

	// PreferAbbreviation keeps the acronym of a "Full Form (FF)" pair as the
	// canonical value; false keeps the full form.
	PreferAbbreviation bool `json:"prefer_abbreviation" yaml:"prefer_abbreviation" mapstructure:"prefer_abbreviation"`

	// Seed makes component colors reproducible. Zero draws a random seed.
	Seed uint64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	Parser   ParserConfig   `json:"parser" yaml:"parser" mapstructure:"parser"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Neo4j    Neo4jConfig    `json:"neo4j" yaml:"neo4j" mapstructure:"neo4j"`
	LLM      llm.Config     `json:"llm" yaml:"llm" mapstructure:"llm"`
	Wikidata WikidataConfig `json:"wikidata" yaml:"wikidata" mapstructure:"wikidata"`
}

// ParserConfig configures the NLP oracle.
type ParserConfig struct {
	// URL of the dependency-parse service.
	URL     string        `json:"url" yaml:"url" mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// NERModel optionally points at an ONNX token-classification model whose
	// entities replace the service's.
	NERModel string `json:"ner_model" yaml:"ner_model" mapstructure:"ner_model"`
}

// StoreConfig configures the SQLite snapshot. An empty DBPath disables it.
type StoreConfig struct {
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// Neo4jConfig configures the optional graph database export. An empty URI
// disables it.
type Neo4jConfig struct {
	URI      string `json:"uri" yaml:"uri" mapstructure:"uri" validate:"omitempty,url"`
	User     string `json:"user" yaml:"user" mapstructure:"user"`
	Password string `json:"-" yaml:"-" mapstructure:"password"`
	Database string `json:"database" yaml:"database" mapstructure:"database"`
}

// WikidataConfig configures object lookups in the triple pipeline.
type WikidataConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns a Config with the standard directories, threshold,
// entity kinds and gazetteer.
func DefaultConfig() Config {
	return Config{
		OutputDir:          "process_data",
		VisualsDir:         "visuals",
		MaxDistance:        graph.DefaultMaxDistance,
		AllowedLabels:      nlp.DefaultAllowedLabels(),
		Gazetteer:          nlp.DefaultTerms(),
		PreferAbbreviation: true,
		Parser: ParserConfig{
			URL:     "http://localhost:8000",
			Timeout: nlp.DefaultTimeout,
		},
		LLM: llm.Config{
			Provider: "openai",
			Model:    "gpt-4",
		},
		Wikidata: WikidataConfig{
			Enabled: true,
		},
	}
}

var validate = validator.New()

// Validate checks field constraints. A missing input file is reported by
// the pipeline as ErrMissingInput, not here.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// cleanedPath is where the synonym step writes the rewritten document.
func (c *Config) cleanedPath() string {
	base := filepath.Base(c.Input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(c.OutputDir, stem+"_edit.docx")
}
