package triples

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/brunobiangulo/entgraph/wikidata"
)

// ExampleNamespace prefixes subjects and predicates.
const ExampleNamespace = "http://example.org/"

// Resolver maps a label to a Wikidata item ID.
type Resolver interface {
	Lookup(ctx context.Context, label string) (string, bool)
}

var localName = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9_.-]*[A-Za-z0-9_-])?$`)

// term is an RDF node already rendered in Turtle syntax.
type term string

func iri(prefix, ns, name string) term {
	name = strings.ReplaceAll(name, " ", "_")
	if localName.MatchString(name) {
		return term(prefix + ":" + name)
	}
	return term("<" + escapeIRI(ns+name) + ">")
}

func literal(s string) term {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return term(`"` + r.Replace(s) + `"`)
}

func escapeIRI(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r <= 0x20 || strings.ContainsRune(`<>"{}|^`+"`"+`\`, r) {
			fmt.Fprintf(&b, `\u%04X`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// objectTerm renders o as a literal when it has spaces, otherwise as a
// Wikidata entity when the resolver finds one.
func objectTerm(ctx context.Context, o string, r Resolver) term {
	if strings.Contains(o, " ") || r == nil {
		return literal(o)
	}
	if id, ok := r.Lookup(ctx, o); ok {
		return iri("wd", wikidata.EntityNamespace, id)
	}
	return literal(o)
}

// WriteTurtle serialises the triples with ex: and wd: prefixes. Duplicate
// statements are written once.
func WriteTurtle(ctx context.Context, w io.Writer, ts []Triple, r Resolver) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "@prefix ex: <%s> .\n", ExampleNamespace)
	fmt.Fprintf(bw, "@prefix wd: <%s> .\n\n", wikidata.EntityNamespace)

	seen := make(map[string]bool)
	for _, t := range ts {
		stmt := fmt.Sprintf("%s %s %s .\n",
			iri("ex", ExampleNamespace, t.Subject),
			iri("ex", ExampleNamespace, t.Predicate),
			objectTerm(ctx, t.Object, r))
		if seen[stmt] {
			continue
		}
		seen[stmt] = true
		bw.WriteString(stmt)
	}
	return bw.Flush()
}

// WriteTurtleFile writes the Turtle document to path.
func WriteTurtleFile(ctx context.Context, path string, ts []Triple, r Resolver) (err error) {
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
	return WriteTurtle(ctx, f, ts, r)
}
