package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brunobiangulo/entgraph"
)

const envPrefix = "ENTGRAPH"

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"input":        "input",
	"output-dir":   "output_dir",
	"visuals-dir":  "visuals_dir",
	"max-distance": "max_distance",
	"parser-url":   "parser.url",
	"db":           "store.db_path",
}

// loadConfig layers DefaultConfig, the config file, ENTGRAPH_* environment
// variables and flags, in increasing precedence.
func loadConfig(cmd *cobra.Command) (entgraph.Config, error) {
	// A missing .env file is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, entgraph.DefaultConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return entgraph.Config{}, fmt.Errorf("%w: reading %s: %v", entgraph.ErrInvalidConfig, path, err)
		}
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return entgraph.Config{}, err
			}
		}
	}

	cfg := entgraph.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return entgraph.Config{}, fmt.Errorf("%w: %v", entgraph.ErrInvalidConfig, err)
	}

	// Fallback: well-known provider env vars for API keys.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
		case "gemini":
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal.
func setDefaults(v *viper.Viper, d entgraph.Config) {
	v.SetDefault("input", d.Input)
	v.SetDefault("graph_input", d.GraphInput)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("visuals_dir", d.VisualsDir)
	v.SetDefault("max_distance", d.MaxDistance)
	v.SetDefault("allowed_labels", d.AllowedLabels)
	v.SetDefault("gazetteer", d.Gazetteer)
	v.SetDefault("prefer_abbreviation", d.PreferAbbreviation)
	v.SetDefault("seed", d.Seed)

	v.SetDefault("parser.url", d.Parser.URL)
	v.SetDefault("parser.timeout", d.Parser.Timeout)
	v.SetDefault("parser.ner_model", d.Parser.NERModel)

	v.SetDefault("store.db_path", d.Store.DBPath)

	v.SetDefault("neo4j.uri", d.Neo4j.URI)
	v.SetDefault("neo4j.user", d.Neo4j.User)
	v.SetDefault("neo4j.password", d.Neo4j.Password)
	v.SetDefault("neo4j.database", d.Neo4j.Database)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.timeout", d.LLM.Timeout)

	v.SetDefault("wikidata.enabled", d.Wikidata.Enabled)
	v.SetDefault("wikidata.endpoint", d.Wikidata.Endpoint)
	v.SetDefault("wikidata.timeout", d.Wikidata.Timeout)
}
