// Package wikidata resolves entity labels to Wikidata item IDs.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultEndpoint is the public MediaWiki API of Wikidata.
	DefaultEndpoint = "https://www.wikidata.org/w/api.php"
	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 10 * time.Second
	// EntityNamespace prefixes item IDs in RDF output.
	EntityNamespace = "http://www.wikidata.org/entity/"
)

// Client looks labels up through the wbsearchentities action.
type Client struct {
	endpoint string
	language string
	client   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint points the client at another API URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithLanguage sets the search language (default "en").
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// NewClient creates a lookup client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		language: "en",
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Search []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	} `json:"search"`
}

// Lookup returns the ID of the first search hit for label. Any failure is
// logged and reported as no match.
func (c *Client) Lookup(ctx context.Context, label string) (string, bool) {
	id, err := c.search(ctx, label)
	if err != nil {
		slog.Warn("wikidata: lookup failed", "label", label, "error", err)
		return "", false
	}
	return id, id != ""
}

func (c *Client) search(ctx context.Context, label string) (string, error) {
	q := url.Values{}
	q.Set("action", "wbsearchentities")
	q.Set("format", "json")
	q.Set("language", c.language)
	q.Set("search", label)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikidata API error %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("decoding search response: %w", err)
	}
	if len(sr.Search) == 0 {
		return "", nil
	}
	return sr.Search[0].ID, nil
}
