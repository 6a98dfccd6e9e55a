// Package llm adapts the OpenAI SDK client into the contract.ModelProvider
// consumed by the gateway.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

type Config struct {
	ChatModel      string `envconfig:"CHAT_MODEL" split_words:"true" required:"true"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" split_words:"true" required:"true"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ChatModel) == "" {
		return errors.New("chat model is required")
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return errors.New("embedding model is required")
	}
	return nil
}

// Provider implements contract.ModelProvider on the OpenAI chat completions
// and embeddings APIs. Rate rejections surface as contract.ErrProviderOverload
// so the gateway can retry them.
type Provider struct {
	client *openaisdk.Client
	cfg    Config
}

var _ contractx.ModelProvider = (*Provider)(nil)

func New(client *openaisdk.Client, cfg Config) (*Provider, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Provider{client: client, cfg: cfg}, nil
}

func (p *Provider) Complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	modelID := strings.TrimSpace(req.ModelID)
	if modelID == "" {
		modelID = p.cfg.ChatModel
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openaisdk.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "assistant":
			messages = append(messages, openaisdk.AssistantMessage(m.Content))
		default:
			messages = append(messages, openaisdk.UserMessage(m.Content))
		}
	}

	params := openaisdk.ChatCompletionNewParams{
		Messages: messages,
		Model:    modelID,
	}
	if req.Temperature > 0 {
		params.Temperature = openaisdk.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(req.MaxTokens)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices for model=%s", contractx.ErrModelInvoke, modelID)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: openaisdk.String(text),
		},
		Model: p.cfg.EmbeddingModel,
	})
	if err != nil {
		return nil, classify(err, "embedding")
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding for model=%s", contractx.ErrModelInvoke, p.cfg.EmbeddingModel)
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}

func classify(err error, op string) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusTooManyRequests ||
		apiErr.StatusCode == http.StatusServiceUnavailable) {
		return fmt.Errorf("%w: %s: %v", contractx.ErrProviderOverload, op, err)
	}
	return fmt.Errorf("%w: %s: %v", contractx.ErrModelInvoke, op, err)
}
