// Package vector implements the nearest-neighbor collaborator on the Qdrant
// REST API.
package vector

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

	contractx "github.com/zaplap/shopchat/agent/contract"
)

const maxResponseSizeBytes = 2 << 20

type Config struct {
	BaseURL    string        `envconfig:"BASE_URL" split_words:"true" default:"http://localhost:6333"`
	APIKey     string        `envconfig:"API_KEY" split_words:"true"`
	Collection string        `envconfig:"COLLECTION" split_words:"true" default:"laptop"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

type Store struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

var _ contractx.VectorIndex = (*Store)(nil)

func NewStore(cfg Config) (*Store, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("qdrant base url is required")
	}
	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		return nil, errors.New("qdrant collection is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Store{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		collection: collection,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func MustNew(cfg Config) *Store {
	store, err := NewStore(cfg)
	if err != nil {
		panic(err)
	}
	return store
}

type searchHit struct {
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type searchResponse struct {
	Result []searchHit `json:"result"`
}

// NearestNeighbors returns the k closest payloads to the query vector. Hits
// without a textual payload are skipped.
func (s *Store) NearestNeighbors(ctx context.Context, vector []float32, k int) ([]contractx.Snippet, error) {
	if k <= 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal vector search request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build vector search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute vector search request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read vector search response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("qdrant http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode vector search response: %w", err)
	}

	snippets := make([]contractx.Snippet, 0, len(parsed.Result))
	for _, hit := range parsed.Result {
		text, _ := hit.Payload["text"].(string)
		if strings.TrimSpace(text) == "" {
			continue
		}
		snippets = append(snippets, contractx.Snippet{Text: text, Score: hit.Score})
	}
	return snippets, nil
}
