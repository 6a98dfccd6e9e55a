package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

const (
	cypherMaxTokens = 500

	msgCypherGenFailed  = "Không thể sinh truy vấn Cypher từ câu hỏi."
	msgCypherExecFailed = "Không thể thực thi truy vấn Cypher."
	msgGraphNoResults   = "Không tìm thấy kết quả phù hợp."
)

// graphHints flag multi-criteria or comparative product questions.
var graphHints = regexp.MustCompile(`(?i)(so sánh|lớn nhất|nhỏ nhất|rẻ nhất|đắt nhất|dưới|trên|khoảng|triệu|nhiều tiêu chí)`)

// GraphQueryAgent turns a natural-language question into a Cypher query via
// one inference call against a fixed schema prompt, executes it, and formats
// the typed results. A failed generation never reaches the store.
type GraphQueryAgent struct {
	gateway contractx.ModelProvider
	store   contractx.GraphStore
	prompt  string
	modelID string
}

func NewGraphQuery(gateway contractx.ModelProvider, store contractx.GraphStore, prompt, modelID string) *GraphQueryAgent {
	return &GraphQueryAgent{gateway: gateway, store: store, prompt: prompt, modelID: modelID}
}

func (a *GraphQueryAgent) Name() contractx.AgentName { return contractx.AgentGraph }

func (a *GraphQueryAgent) IsRelevant(question string) bool {
	lower := strings.ToLower(question)
	return graphHints.MatchString(lower) && strings.Contains(lower, "laptop")
}

func (a *GraphQueryAgent) GetContext(ctx context.Context, q contractx.Query) (contractx.AgentResult, error) {
	query, err := a.generate(ctx, q.Text)
	if err != nil || query == "" {
		log.Warn().Err(err).Msg("cypher generation failed")
		return contractx.AgentResult{Agent: a.Name(), Text: msgCypherGenFailed}, nil
	}

	log.Debug().Str("cypher", query).Msg("executing generated query")
	rows, err := a.store.Run(ctx, query)
	if err != nil {
		log.Warn().Err(err).Msg("cypher execution failed")
		return contractx.AgentResult{Agent: a.Name(), Text: msgCypherExecFailed}, nil
	}
	if len(rows) == 0 {
		return contractx.AgentResult{Agent: a.Name(), Text: msgGraphNoResults}, nil
	}
	return contractx.AgentResult{Agent: a.Name(), Text: formatGraphRows(rows)}, nil
}

func (a *GraphQueryAgent) generate(ctx context.Context, question string) (string, error) {
	out, err := a.gateway.Complete(ctx, contractx.CompletionRequest{
		ModelID:   a.modelID,
		System:    a.prompt,
		Messages:  []contractx.ChatMessage{{Role: "user", Content: question}},
		MaxTokens: cypherMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrQueryGeneration, err)
	}
	return sanitizeCypher(out), nil
}

// sanitizeCypher strips code fences and leading prose; anything that does not
// start at a MATCH clause is rejected rather than executed.
func sanitizeCypher(out string) string {
	s := strings.TrimSpace(out)
	s = strings.TrimPrefix(s, "```cypher")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if idx := strings.Index(strings.ToUpper(s), "MATCH"); idx > 0 {
		s = s[idx:]
	}
	if !strings.HasPrefix(strings.ToUpper(s), "MATCH") {
		return ""
	}
	return s
}

func formatGraphRows(rows []map[string]any) string {
	parts := make([]string, 0, len(rows))
	for _, obj := range rows {
		display := "Không rõ"
		if v, ok := coerceFloat(obj["display_inches"]); ok {
			display = fmt.Sprintf("%g", v)
		}
		price := "Không rõ"
		if v, ok := coerceInt(obj["price"]); ok {
			price = fmtVND(v)
		}
		parts = append(parts, strings.TrimSpace(fmt.Sprintf(
			`• %s
  • Thương hiệu: %s
  • CPU: %s
  • RAM: %s
  • SSD: %s
  • HDD: %s
  • Màn hình: %s inch
  • Giá: %s
  • ID: %s`,
			strProp(obj, "name"), strProp(obj, "brand"), strProp(obj, "processor_name"),
			strProp(obj, "ram"), strProp(obj, "ssd"), strProp(obj, "hdd"),
			display, price, strProp(obj, "id"),
		)))
	}
	return strings.Join(parts, "\n\n")
}

func strProp(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return "Không có"
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return "Không có"
		}
		return t
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// coerceInt handles the driver's numeric variants for integer-like fields.
func coerceInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}
