// Package exa implements the client for the Exa content-discovery API, the
// external producer of raw annotated search results.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/simswatch/sims-analytics/internal/news"
)

const defaultBaseURL = "https://api.exa.ai"

// annotationInstruction is the structured-summary prompt sent with every
// search. The service fills the schema below for each result; drift in how
// faithfully it does so is what the normalizer exists to absorb.
const annotationInstruction = `For the Indian news article at {url}: extract "source" (publisher domain); determine "sentiment" (Positive, Negative, Neutral or Cautious); fact-check the main claim against Bangladeshi and international outlets and produce a "fact_check" verdict (True, False or Mixed); summarize Bangladeshi coverage in "comparison.bangladeshi_media" and international coverage in "comparison.international_media", writing "Not covered" when none exists; list up to 3 matching Bangladeshi articles under "bangladeshi_matches" and up to 3 international ones under "international_matches", each with title, source and url.`

// Config controls the search client.
type Config struct {
	APIKey     string
	BaseURL    string
	Query      string
	NumResults int
	Timeout    time.Duration
	Domains    []string
}

// Client performs the single blocking search request that starts an
// ingestion cycle.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// New builds a Client. The base URL defaults to the public API endpoint.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("exa api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.NumResults <= 0 {
		cfg.NumResults = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}, nil
}

type searchRequest struct {
	Query          string         `json:"query"`
	Category       string         `json:"category"`
	Type           string         `json:"type"`
	Livecrawl      string         `json:"livecrawl"`
	Text           bool           `json:"text"`
	NumResults     int            `json:"numResults"`
	IncludeDomains []string       `json:"includeDomains,omitempty"`
	Extras         map[string]int `json:"extras,omitempty"`
	Summary        summarySpec    `json:"summary"`
}

type summarySpec struct {
	Query string `json:"query"`
}

type searchResult struct {
	Title         string          `json:"title"`
	URL           string          `json:"url"`
	PublishedDate string          `json:"publishedDate"`
	Author        string          `json:"author"`
	Image         string          `json:"image"`
	Favicon       string          `json:"favicon"`
	Score         float64         `json:"score"`
	Extras        map[string]any  `json:"extras"`
	Text          string          `json:"text"`
	Summary       json.RawMessage `json:"summary"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Search issues one bounded search and returns the decoded results together
// with the raw response body for archival. A transport or decode failure
// aborts the whole cycle; there is no retry.
func (c *Client) Search(ctx context.Context) (*news.SearchResponse, error) {
	reqBody := searchRequest{
		Query:          c.cfg.Query,
		Category:       "news",
		Type:           "auto",
		Livecrawl:      "always",
		Text:           true,
		NumResults:     c.cfg.NumResults,
		IncludeDomains: c.cfg.Domains,
		Extras:         map[string]int{"links": 1},
		Summary:        summarySpec{Query: annotationInstruction},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := &news.SearchResponse{Raw: body}
	for _, r := range decoded.Results {
		out.Results = append(out.Results, news.RawResult{
			Title:         r.Title,
			URL:           r.URL,
			PublishedDate: r.PublishedDate,
			Author:        r.Author,
			Image:         r.Image,
			Favicon:       r.Favicon,
			Score:         r.Score,
			Extras:        r.Extras,
			Text:          r.Text,
			Summary:       r.Summary,
		})
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
