package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/entgraph"
)

func newRootCmd() *cobra.Command {
	var logCloser io.Closer

	root := &cobra.Command{
		Use:   "entgraph",
		Short: "Build entity graphs from question/answer documents",
		Long: `entgraph extracts named entities from a question/answer document and
assembles them into graphs:

  synonyms      normalize terminology and write the cleaned document
  cooccurrence  undirected graph of strong (dependency path) and weak edges
  relations     directed graph of verb relations and co-occurrence
  run           synonyms, then both graphs over the cleaned document
  triples       LLM-extracted subject/predicate/object triples

Configuration is read from --config, ENTGRAPH_* environment variables
(ENTGRAPH_PARSER_URL, ENTGRAPH_LLM_API_KEY, ...) and a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logFile, _ := cmd.Flags().GetString("log-file")
			logCloser = setupLogging(cmd.ErrOrStderr(), verbose, logFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to config file (yaml, json or toml)")
	pf.StringP("input", "i", "", "Input document (docx, pdf, xlsx or txt)")
	pf.String("output-dir", "", "Directory for tables, cleaned document and manifest")
	pf.String("visuals-dir", "", "Directory for HTML graphs")
	pf.Int("max-distance", 0, "Dependency-path threshold (default 3)")
	pf.String("parser-url", "", "URL of the dependency-parse service")
	pf.String("db", "", "SQLite file for graph snapshots (disabled when empty)")
	pf.String("log-file", "", "Also write JSON logs to this rotating file")
	pf.BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newSynonymsCmd(),
		newGraphCmd("cooccurrence", "Build the undirected co-occurrence graph", (*entgraph.Pipeline).Cooccurrence),
		newGraphCmd("relations", "Build the directed relation graph", (*entgraph.Pipeline).Relations),
		newRunCmd(),
		newTriplesCmd(),
	)
	return root
}

// withPipeline loads config, builds the pipeline and runs fn with a context
// cancelled on interrupt.
func withPipeline(cmd *cobra.Command, fn func(context.Context, *entgraph.Pipeline) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := entgraph.New(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, p)
}

func newSynonymsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "synonyms",
		Short: "Normalize terminology and write the cleaned document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, func(ctx context.Context, p *entgraph.Pipeline) error {
				res, err := p.Synonyms(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Synonym terms: %d\n", res.Map.Len())
				fmt.Fprintf(out, "Cleaned document: %s\n", absPath(res.Cleaned))
				fmt.Fprintf(out, "Synonym table: %s\n", absPath(res.Table))
				return nil
			})
		},
	}
}

func newGraphCmd(use, short string, build func(*entgraph.Pipeline, context.Context) (*entgraph.GraphResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, func(ctx context.Context, p *entgraph.Pipeline) error {
				res, err := build(p, ctx)
				if err != nil {
					return err
				}
				printGraph(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run synonyms, co-occurrence and relations in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, func(ctx context.Context, p *entgraph.Pipeline) error {
				m, err := p.Run(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Workflow complete. Outputs generated:\n\n")
				fmt.Fprintf(out, "Cleaned document: %s\n", absPath(m.Cleaned))
				for i := range m.Graphs {
					printGraph(out, &m.Graphs[i])
				}
				fmt.Fprintf(out, "Manifest: %s\n", absPath(m.Path))
				fmt.Fprintf(out, "\nOpen the HTML files in a browser to view the graphs.\n")
				return nil
			})
		},
	}
}

func newTriplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "triples",
		Short: "Extract RDF triples with an LLM and export Turtle, CSV and HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, func(ctx context.Context, p *entgraph.Pipeline) error {
				res, err := p.Triples(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Triples: %d\n", len(res.Triples))
				fmt.Fprintf(out, "Turtle: %s\n", absPath(res.Turtle))
				fmt.Fprintf(out, "Triples CSV: %s\n", absPath(res.CSV))
				fmt.Fprintf(out, "Nodes CSV: %s\n", absPath(res.Nodes))
				fmt.Fprintf(out, "HTML: %s\n", absPath(res.HTML))
				return nil
			})
		},
	}
}

func printGraph(w io.Writer, res *entgraph.GraphResult) {
	fmt.Fprintf(w, "%s graph: %d nodes, %d edges, %d components\n", res.Variant, res.Nodes, res.Edges, res.Components)
	fmt.Fprintf(w, "  CSV: %s\n", absPath(res.CSV))
	fmt.Fprintf(w, "  Workbook: %s\n", absPath(res.Workbook))
	fmt.Fprintf(w, "  HTML: %s\n", absPath(res.HTML))
	if res.RunID != "" {
		fmt.Fprintf(w, "  Snapshot: %s\n", res.RunID)
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
