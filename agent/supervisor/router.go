package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

const (
	routerTemperature = 0.1
	routerMaxTokens   = 300
)

// Router classifies a question into the set of agents needed to answer it.
// Classification is one inference call against the cheap model; every failure
// mode fails open to the full agent set.
type Router struct {
	gateway contractx.ModelProvider
	prompt  string
	modelID string
}

func NewRouter(gateway contractx.ModelProvider, prompt, modelID string) *Router {
	return &Router{gateway: gateway, prompt: prompt, modelID: modelID}
}

func (r *Router) Classify(ctx context.Context, question string) contractx.RoutingDecision {
	out, err := r.gateway.Complete(ctx, contractx.CompletionRequest{
		ModelID:     r.modelID,
		System:      r.prompt,
		Messages:    []contractx.ChatMessage{{Role: "user", Content: fmt.Sprintf("Phân tích câu hỏi sau: %q", question)}},
		Temperature: routerTemperature,
		MaxTokens:   routerMaxTokens,
	})
	if err != nil {
		log.Warn().Err(err).Msg("classification call failed, enabling all agents")
		return contractx.AllAgents("Error occurred, using all agents as fallback")
	}

	decision, err := parseDecision(out)
	if err != nil {
		log.Warn().Err(err).Str("response", out).Msg("classification unparsable, enabling all agents")
		return contractx.AllAgents("Using all agents as fallback")
	}
	log.Debug().Interface("decision", decision).Msg("query classified")
	return decision
}

// parseDecision extracts the first JSON object found in the model's response
// text. Best effort: parse failure is the caller's cue to fail open.
func parseDecision(text string) (contractx.RoutingDecision, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return contractx.RoutingDecision{}, fmt.Errorf("%w: no JSON object in response", contractx.ErrClassification)
	}

	var decision contractx.RoutingDecision
	if err := json.Unmarshal([]byte(text[start:end+1]), &decision); err != nil {
		return contractx.RoutingDecision{}, fmt.Errorf("%w: %v", contractx.ErrClassification, err)
	}
	return decision, nil
}
