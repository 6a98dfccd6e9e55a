// Package tavily is a minimal client for the Tavily web-search REST API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxResponseSizeBytes = 2 << 20

type Config struct {
	BaseURL    string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.tavily.com"`
	APIKey     string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	MaxResults int           `envconfig:"MAX_RESULTS" split_words:"true" default:"5"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchResponse carries the provider's optional synthesized answer plus the
// raw result list.
type SearchResponse struct {
	Answer  string   `json:"answer"`
	Results []Result `json:"results"`
}

type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("tavily base url is required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("tavily api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Search runs one query and asks the provider for a synthesized answer
// alongside the results.
func (c *Client) Search(ctx context.Context, query string) (SearchResponse, error) {
	body, err := json.Marshal(map[string]any{
		"api_key":        c.apiKey,
		"query":          query,
		"max_results":    c.maxResults,
		"search_depth":   "basic",
		"include_answer": true,
	})
	if err != nil {
		return SearchResponse{}, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return SearchResponse{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return SearchResponse{}, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return SearchResponse{}, fmt.Errorf("tavily http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed SearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return SearchResponse{}, fmt.Errorf("decode search response: %w", err)
	}
	return parsed, nil
}
