package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	cachex "github.com/zaplap/shopchat/agent/cache"
	contractx "github.com/zaplap/shopchat/agent/contract"
)

const (
	knowledgeTopK = 4

	msgKnowledgeEmpty = "Không tìm thấy thông tin về câu hỏi này."
	msgSystemBusy     = "Hệ thống đang bận, vui lòng thử lại sau ít phút."
	staleResultSuffix = "\n\n(Lưu ý: Đây là kết quả tạm thời do hệ thống đang quá tải)"
)

var knowledgeKeywords = []string{
	"chính sách", "bảo hành", "đổi trả", "trả hàng", "hướng dẫn", "quy trình",
	"giao hàng", "vận chuyển", "thanh toán", "cửa hàng", "mua hàng", "liên hệ",
}

// KnowledgeBaseAgent answers store policy and how-to questions: embed the
// query (through the gateway), nearest-neighbor search, concatenate the top
// snippets. Results are cached semantically; under sustained overload the
// newest cached result of any key serves as a stale stand-in.
type KnowledgeBaseAgent struct {
	gateway contractx.ModelProvider
	index   contractx.VectorIndex
	cache   *cachex.Cache
}

func NewKnowledgeBase(gateway contractx.ModelProvider, index contractx.VectorIndex, cache *cachex.Cache) *KnowledgeBaseAgent {
	return &KnowledgeBaseAgent{gateway: gateway, index: index, cache: cache}
}

func (a *KnowledgeBaseAgent) Name() contractx.AgentName { return contractx.AgentKnowledge }

func (a *KnowledgeBaseAgent) IsRelevant(question string) bool {
	lower := strings.ToLower(question)
	for _, k := range knowledgeKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (a *KnowledgeBaseAgent) GetContext(ctx context.Context, q contractx.Query) (contractx.AgentResult, error) {
	if cached, ok := a.cache.Get(q.Text); ok {
		return contractx.AgentResult{Agent: a.Name(), Text: cached}, nil
	}

	vec, err := a.gateway.Embed(ctx, q.Text)
	if err != nil {
		if contractx.IsOverload(err) {
			return contractx.AgentResult{Agent: a.Name(), Text: a.staleFallback()}, nil
		}
		return contractx.AgentResult{}, fmt.Errorf("embed query: %w", err)
	}

	hits, err := a.index.NearestNeighbors(ctx, vec, knowledgeTopK)
	if err != nil {
		return contractx.AgentResult{}, fmt.Errorf("vector search: %w", err)
	}

	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		if strings.TrimSpace(h.Text) != "" {
			texts = append(texts, h.Text)
		}
	}
	result := strings.Join(texts, "\n\n")
	if result == "" {
		result = msgKnowledgeEmpty
	}

	a.cache.Put(q.Text, result)
	return contractx.AgentResult{Agent: a.Name(), Text: result}, nil
}

// staleFallback serves the most recent cached result when the embedding
// endpoint stays overloaded past the gateway's retry budget.
func (a *KnowledgeBaseAgent) staleFallback() string {
	if stale, ok := a.cache.Stale(); ok {
		log.Warn().Msg("embedding overloaded, serving stale cache entry")
		return stale + staleResultSuffix
	}
	return msgSystemBusy
}
