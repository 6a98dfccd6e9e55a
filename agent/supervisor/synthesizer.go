package supervisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

const (
	synthTemperature = 0.3
	synthMaxTokens   = 700

	msgSynthOverloaded = "Xin lỗi, hiện tại hệ thống đang quá tải. Vui lòng thử lại sau ít phút."
	synthConcatHeader  = "Tôi đã tìm được thông tin sau:\n\n"
)

// Synthesizer merges agent results into one answer via a single inference
// call on the cheap model, with deterministic fallbacks when inference is
// unavailable.
type Synthesizer struct {
	gateway contractx.ModelProvider
	prompt  string
	modelID string
}

func NewSynthesizer(gateway contractx.ModelProvider, prompt, modelID string) *Synthesizer {
	return &Synthesizer{gateway: gateway, prompt: prompt, modelID: modelID}
}

// Synthesize produces the final answer. A lone structured product offer is
// returned directly so its confirmation fields reach the caller unmodified;
// otherwise the flattened agent texts feed one inference call. Overload after
// the gateway's retries degrades to raw concatenation, never to an error.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []contractx.AgentResult) (contractx.Answer, error) {
	if offer := soleOffer(results); offer != nil {
		return contractx.Answer{Text: offer.Text, Offer: offer}, nil
	}

	out, err := s.gateway.Complete(ctx, contractx.CompletionRequest{
		ModelID:     s.modelID,
		System:      s.prompt,
		Messages:    []contractx.ChatMessage{{Role: "user", Content: buildSynthesisInput(question, results)}},
		Temperature: synthTemperature,
		MaxTokens:   synthMaxTokens,
	})
	if err != nil {
		if contractx.IsOverload(err) {
			log.Warn().Err(err).Msg("synthesis overloaded, concatenating agent texts")
			return contractx.Answer{Text: concatResults(results)}, nil
		}
		return contractx.Answer{}, fmt.Errorf("synthesize answer: %w", err)
	}
	return contractx.Answer{Text: strings.TrimSpace(out)}, nil
}

// soleOffer returns the product offer when it is the only substantive result
// (the offer itself plus at most one companion text).
func soleOffer(results []contractx.AgentResult) *contractx.ProductOffer {
	var offer *contractx.ProductOffer
	for _, r := range results {
		if r.Offer != nil {
			offer = r.Offer
			break
		}
	}
	if offer != nil && len(results) <= 2 {
		return offer
	}
	return nil
}

func buildSynthesisInput(question string, results []contractx.AgentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Câu hỏi: %s\n\nThông tin từ các agent:\n", question)
	for _, r := range results {
		data := r.Flatten()
		if strings.TrimSpace(data) == "" {
			data = "Không có thông tin"
		}
		fmt.Fprintf(&b, "- %s: %s\n", r.Agent, data)
	}
	b.WriteString("\nHãy tổng hợp thành câu trả lời hoàn chỉnh.")
	return b.String()
}

// concatResults is the last-resort answer when even the cheap model is
// overloaded: the usable agent texts, joined.
func concatResults(results []contractx.AgentResult) string {
	var b strings.Builder
	b.WriteString(synthConcatHeader)
	empty := true
	for _, r := range results {
		if data := strings.TrimSpace(r.Flatten()); data != "" {
			b.WriteString(data)
			b.WriteString("\n\n")
			empty = false
		}
	}
	if empty {
		return msgSynthOverloaded
	}
	return strings.TrimSpace(b.String())
}
