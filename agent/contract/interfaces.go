package contract

import "context"

// Agent is one retrieval capability plus a cheap relevance heuristic.
// IsRelevant never performs I/O; GetContext may suspend on external calls.
type Agent interface {
	Name() AgentName
	IsRelevant(question string) bool
	GetContext(ctx context.Context, q Query) (AgentResult, error)
}

// ChatMessage is one turn handed to the inference provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest describes one inference call. ModelID may be empty, in
// which case the provider's configured default applies.
type CompletionRequest struct {
	ModelID     string
	System      string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int64
}

// ModelProvider is the raw inference/embedding backend. Callers must not use
// it directly for per-query work; every call goes through the gateway.
type ModelProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Verifier resolves a bearer credential to an identity.
type Verifier interface {
	Verify(token string) (Identity, error)
}

type OrderStore interface {
	ListRecent(ctx context.Context, userID int64, limit int) ([]Order, error)
}

type PromotionStore interface {
	ListActive(ctx context.Context) ([]Promotion, error)
}

type CatalogStore interface {
	Search(ctx context.Context, text string, limit int) ([]Product, error)
}

type CartStore interface {
	AddItem(ctx context.Context, userID, productID int64, quantity int) error
}

// GraphStore executes a generated graph query and returns the raw property
// maps of the matched records.
type GraphStore interface {
	Run(ctx context.Context, query string) ([]map[string]any, error)
}

type VectorIndex interface {
	NearestNeighbors(ctx context.Context, vector []float32, k int) ([]Snippet, error)
}
