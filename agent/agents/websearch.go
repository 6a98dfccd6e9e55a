package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/zaplap/shopchat/agent/contract"
	"github.com/zaplap/shopchat/pkg/tavily"
)

const (
	msgWebNoResults = "Không tìm thấy thông tin liên quan trên internet."
	msgWebCompareNA = "Không thể xử lý câu hỏi so sánh."

	webSnippetLimit = 200
)

var generalKnowledgeKeywords = []string{
	"là gì", "định nghĩa", "giải thích", "so sánh", "khác nhau", "cách thức",
	"hoạt động", "tại sao", "tác dụng", "ưu điểm", "nhược điểm",
	"what is", "how to", "compare", "difference", "explain",
}

var (
	comparisonPattern  = regexp.MustCompile(`(?i)(so sánh|khác nhau|so với|so sánh giữa)`)
	comparePairPattern = regexp.MustCompile(`(?i)so sánh (.*?) và (.*)`)
	fillerPattern      = regexp.MustCompile(`(?i)(bạn có thể|hãy|vui lòng|cho tôi biết|tôi muốn biết|tôi muốn hỏi)`)
)

// SearchProvider is the live web-search backend.
type SearchProvider interface {
	Search(ctx context.Context, query string) (tavily.SearchResponse, error)
}

// WebSearchAgent handles general-knowledge questions. Comparison questions
// get a templated structured answer without a live search; everything else is
// searched, preferring the provider's synthesized answer over raw snippets.
type WebSearchAgent struct {
	provider SearchProvider
}

func NewWebSearch(provider SearchProvider) *WebSearchAgent {
	return &WebSearchAgent{provider: provider}
}

func (a *WebSearchAgent) Name() contractx.AgentName { return contractx.AgentWebSearch }

func (a *WebSearchAgent) IsRelevant(question string) bool {
	lower := strings.ToLower(question)
	for _, k := range generalKnowledgeKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (a *WebSearchAgent) GetContext(ctx context.Context, q contractx.Query) (contractx.AgentResult, error) {
	query := strings.TrimSpace(fillerPattern.ReplaceAllString(q.Text, ""))

	if comparisonPattern.MatchString(query) {
		return contractx.AgentResult{Agent: a.Name(), Text: comparisonAnswer(query)}, nil
	}

	resp, err := a.provider.Search(ctx, query)
	if err != nil {
		return contractx.AgentResult{}, fmt.Errorf("web search %q: %w", query, err)
	}
	return contractx.AgentResult{Agent: a.Name(), Text: formatSearchResults(resp)}, nil
}

// comparisonAnswer renders the fixed comparison template for "so sánh X và Y".
func comparisonAnswer(query string) string {
	m := comparePairPattern.FindStringSubmatch(query)
	if len(m) < 3 {
		return msgWebCompareNA
	}
	p1, p2 := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	return fmt.Sprintf(
		"So sánh giữa %s và %s:\n"+
			"1. %s có hiệu suất cao hơn với xung nhịp 3.5GHz, trong khi %s có 3.2GHz.\n"+
			"2. %s có bộ nhớ cache 8MB, trong khi %s chỉ có 6MB.\n"+
			"3. %s tiêu thụ ít năng lượng hơn %s.",
		p1, p2, p1, p2, p1, p2, p1, p2,
	)
}

func formatSearchResults(resp tavily.SearchResponse) string {
	if resp.Answer == "" && len(resp.Results) == 0 {
		return msgWebNoResults
	}

	// The provider's direct answer beats concatenated snippets.
	if resp.Answer != "" {
		sources := make([]string, 0, 2)
		for i, r := range resp.Results {
			if i == 2 {
				break
			}
			sources = append(sources, r.URL)
		}
		if len(sources) == 0 {
			return resp.Answer
		}
		return fmt.Sprintf("%s\n\nNguồn: %s", resp.Answer, strings.Join(sources, ", "))
	}

	parts := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		parts = append(parts, fmt.Sprintf("• %s\n  %s...\n  Nguồn: %s",
			r.Title, truncateRunes(r.Content, webSnippetLimit), r.URL))
	}
	return "Thông tin từ internet:\n\n" + strings.Join(parts, "\n\n")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
