package nlp

import (
	"regexp"
	"sort"
	"strings"
)

// LabelTechnology is assigned to gazetteer matches.
const LabelTechnology = "TECHNOLOGY"

// DefaultAllowedLabels are the entity kinds kept from the parser's spans.
func DefaultAllowedLabels() []string {
	return []string{"ORG", "PRODUCT", "GPE", "LAW", "EVENT", LabelTechnology}
}

// DefaultTerms is the technology gazetteer.
func DefaultTerms() []string {
	return []string{
		"GDPR", "TCP/IP", "HTTP", "HTTPS", "5G", "AI", "Artificial Intelligence",
		"Machine Learning", "Deep Learning", "Kubernetes", "Docker", "Neo4j",
		"Data Lake", "Data Warehouse", "ETL", "ELT", "MLOps", "IoT",
		"Cloud Computing", "AWS", "Azure", "Google Cloud",
	}
}

// Mention is one recognized entity occurrence. Start/End/Root/Sent are
// lookup keys into the Doc it was extracted from.
type Mention struct {
	Text  string
	Label string
	Start int
	End   int
	Sent  int
	Root  int
}

// Gazetteer finds fixed terms as case-insensitive whole words.
type Gazetteer struct {
	re *regexp.Regexp
}

// NewGazetteer compiles terms into one alternation. Returns nil for an empty
// term list.
func NewGazetteer(terms []string) *Gazetteer {
	if len(terms) == 0 {
		return nil
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return &Gazetteer{re: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)}
}

// Find returns a span for every match that aligns with at least one token.
func (g *Gazetteer) Find(d *Doc) []Span {
	if g == nil || d == nil {
		return nil
	}
	var spans []Span
	for _, loc := range g.re.FindAllStringIndex(d.Text, -1) {
		spans = append(spans, Span{
			StartChar: loc[0],
			EndChar:   loc[1],
			Label:     LabelTechnology,
			Text:      d.Text[loc[0]:loc[1]],
		})
	}
	return alignSpans(d, spans)
}

// Extractor selects entity mentions from a parse.
type Extractor struct {
	allowed   map[string]bool
	gazetteer *Gazetteer
}

// NewExtractor keeps parser spans whose label is in allowed, plus any
// gazetteer matches.
func NewExtractor(allowed []string, g *Gazetteer) *Extractor {
	set := make(map[string]bool, len(allowed))
	for _, l := range allowed {
		set[strings.ToUpper(l)] = true
	}
	return &Extractor{allowed: set, gazetteer: g}
}

// Extract returns mentions ordered by position in the text. Parser spans
// precede gazetteer spans at the same offset.
func (x *Extractor) Extract(d *Doc) []Mention {
	var spans []Span
	for _, e := range d.Ents {
		if x.allowed[strings.ToUpper(e.Label)] {
			spans = append(spans, e)
		}
	}
	spans = append(spans, x.gazetteer.Find(d)...)

	out := make([]Mention, 0, len(spans))
	for _, s := range spans {
		root := d.Root(s)
		if root < 0 {
			continue
		}
		out = append(out, Mention{
			Text:  d.SpanText(s),
			Label: s.Label,
			Start: s.Start,
			End:   s.End,
			Sent:  d.Tokens[root].Sent,
			Root:  root,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Dedupe drops mentions whose trimmed text was already seen; the first
// occurrence wins.
func Dedupe(mentions []Mention) []Mention {
	seen := make(map[string]bool, len(mentions))
	out := mentions[:0:0]
	for _, m := range mentions {
		key := strings.TrimSpace(m.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}
