package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTimeout bounds a single parse request.
const DefaultTimeout = 10 * time.Second

// Client calls a spaCy-compatible parse service over HTTP. The service
// accepts {"text": ...} on POST /parse and returns a Doc as JSON.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a parse client. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

// Parse sends text to the service once. Failures are returned, never retried.
func (c *Client) Parse(ctx context.Context, text string) (*Doc, error) {
	data, err := json.Marshal(parseRequest{Text: text})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/parse"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parse service error %d: %s", resp.StatusCode, string(body))
	}

	var doc Doc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding parse response: %w", err)
	}
	if doc.Text == "" {
		doc.Text = text
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validate checks that token indices are positional, heads are in range and
// sentence and entity spans stay inside the tokens and the text.
func (d *Doc) validate() error {
	for i, t := range d.Tokens {
		if t.Index != i {
			return fmt.Errorf("token %d has index %d", i, t.Index)
		}
		if !d.Valid(t.Head) {
			return fmt.Errorf("token %d has head %d out of range", i, t.Head)
		}
	}
	chars := utf8.RuneCountInString(d.Text)
	check := func(kind string, spans []Span) error {
		for i, s := range spans {
			if s.Start < 0 || s.End < s.Start || s.End > len(d.Tokens) {
				return fmt.Errorf("%s %d has token range [%d, %d) out of bounds", kind, i, s.Start, s.End)
			}
			if s.StartChar < 0 || s.EndChar < s.StartChar || s.EndChar > chars {
				return fmt.Errorf("%s %d has character range [%d, %d) out of bounds", kind, i, s.StartChar, s.EndChar)
			}
		}
		return nil
	}
	if err := check("sentence", d.Sents); err != nil {
		return err
	}
	return check("entity", d.Ents)
}
