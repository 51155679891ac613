package graph

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/brunobiangulo/entgraph/nlp"
	"github.com/brunobiangulo/entgraph/synonym"
)

// DefaultMaxDistance is the dependency-path threshold for a strong or
// relation edge.
const DefaultMaxDistance = 3

// Builder turns text units into entity graphs.
type Builder struct {
	parser      nlp.Parser
	extractor   *nlp.Extractor
	synonyms    *synonym.Map
	classifier  *Classifier
	maxDistance int
	rng         *rand.Rand
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxDistance overrides DefaultMaxDistance.
func WithMaxDistance(n int) Option {
	return func(b *Builder) { b.maxDistance = n }
}

// WithClassifier overrides the default verb classifier.
func WithClassifier(c *Classifier) Option {
	return func(b *Builder) { b.classifier = c }
}

// WithRand sets the source used for component colors.
func WithRand(r *rand.Rand) Option {
	return func(b *Builder) { b.rng = r }
}

// NewBuilder creates a Builder. syn may be nil.
func NewBuilder(p nlp.Parser, x *nlp.Extractor, syn *synonym.Map, opts ...Option) *Builder {
	b := &Builder{
		parser:      p,
		extractor:   x,
		synonyms:    syn,
		classifier:  NewClassifier(nil),
		maxDistance: DefaultMaxDistance,
	}
	for _, o := range opts {
		o(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return b
}

// mention is an extracted entity with its canonical label.
type mention struct {
	nlp.Mention
	label string
}

// unitMentions parses one unit and returns every extracted mention plus the
// deduplicated list, both normalized.
func (b *Builder) unitMentions(ctx context.Context, u TextUnit, idx int) (*nlp.Doc, []mention, []mention, error) {
	doc, err := b.parser.Parse(ctx, u.Text())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parsing unit %d: %w", idx, err)
	}
	all := b.extractor.Extract(doc)
	return doc, b.normalize(all), b.normalize(nlp.Dedupe(all)), nil
}

func (b *Builder) normalize(raw []nlp.Mention) []mention {
	ms := make([]mention, len(raw))
	for i, m := range raw {
		ms[i] = mention{Mention: m, label: synonym.Normalize(m.Text, b.synonyms)}
	}
	return ms
}

func (b *Builder) within(doc *nlp.Doc, a, c mention) bool {
	d, ok := nlp.DependencyDistance(doc, a.Root, c.Root)
	return ok && d <= b.maxDistance
}

// BuildCooccurrence builds the undirected graph. Pairs in the same sentence
// are joined by a strong edge when their roots are close in the dependency
// tree; pairs in different sentences are always joined by a weak edge.
func (b *Builder) BuildCooccurrence(ctx context.Context, units []TextUnit) (*Graph, error) {
	g := New(false)
	for i, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx := i + 1
		doc, _, ms, err := b.unitMentions(ctx, u, idx)
		if err != nil {
			return nil, err
		}
		addNodes(g, ms)
		for x := 0; x < len(ms); x++ {
			for y := x + 1; y < len(ms); y++ {
				a, c := ms[x], ms[y]
				if a.Sent != c.Sent {
					g.AddEdge(Edge{Source: a.label, Target: c.label, Kind: KindWeak, Title: weakTitle(idx), Unit: idx})
					continue
				}
				if b.within(doc, a, c) {
					g.AddEdge(Edge{Source: a.label, Target: c.label, Kind: KindStrong, Title: strongTitle(b.maxDistance, idx), Unit: idx})
				}
			}
		}
		slog.Debug("graph: unit processed", "unit", idx, "mentions", len(ms))
	}

	comps := AssignColors(g, b.rng)
	slog.Info("graph: co-occurrence graph built",
		"units", len(units), "nodes", g.NumNodes(), "edges", g.NumEdges(), "components", len(comps))
	return g, nil
}

// BuildRelations builds the directed graph. Within a sentence, every token
// whose lemma classifies as a relation links each close pair of the
// sentence's mentions, first to second. The sentence pass sees every
// mention in the sentence, including repeats of text seen earlier in the
// unit. Pairs in different sentences then get a co_occurs edge unless that
// ordered pair already has one.
func (b *Builder) BuildRelations(ctx context.Context, units []TextUnit) (*Graph, error) {
	g := New(true)
	for i, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx := i + 1
		doc, all, ms, err := b.unitMentions(ctx, u, idx)
		if err != nil {
			return nil, err
		}
		addNodes(g, ms)

		for s := range doc.Sents {
			inSent := sentenceMentions(all, s)
			if len(inSent) < 2 {
				continue
			}
			for _, tok := range doc.SentenceTokens(s) {
				kind, ok := b.classifier.Classify(tok.Lemma)
				if !ok {
					continue
				}
				for x := 0; x < len(inSent); x++ {
					for y := x + 1; y < len(inSent); y++ {
						a, c := inSent[x], inSent[y]
						if b.within(doc, a, c) {
							g.AddEdge(Edge{Source: a.label, Target: c.label, Kind: kind, Title: string(kind), Unit: idx})
						}
					}
				}
			}
		}

		for x := 0; x < len(ms); x++ {
			for y := x + 1; y < len(ms); y++ {
				a, c := ms[x], ms[y]
				if a.Sent != c.Sent && !g.HasEdge(a.label, c.label) {
					g.AddEdge(Edge{Source: a.label, Target: c.label, Kind: KindCoOccurs, Title: string(KindCoOccurs), Unit: idx})
				}
			}
		}
		slog.Debug("graph: unit processed", "unit", idx, "mentions", len(ms))
	}

	comps := AssignColors(g, b.rng)
	slog.Info("graph: relation graph built",
		"units", len(units), "nodes", g.NumNodes(), "edges", g.NumEdges(), "components", len(comps))
	return g, nil
}

func addNodes(g *Graph, ms []mention) {
	for _, m := range ms {
		g.AddNode(m.label)
	}
}

// sentenceMentions returns the mentions of sentence s with distinct raw text.
func sentenceMentions(all []mention, s int) []mention {
	var out []mention
	seen := map[string]bool{}
	for _, m := range all {
		if m.Sent != s {
			continue
		}
		key := strings.TrimSpace(m.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}
