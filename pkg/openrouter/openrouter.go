// Package openrouter builds OpenAI SDK clients pointed at an
// OpenRouter-compatible endpoint.
package openrouter

import (
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	BaseURL  string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey   string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Timeout  time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL  string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName string        `envconfig:"SITE_NAME" split_words:"true"`
}

// NewClient creates an OpenAI SDK client configured for OpenRouter.
// Returns nil when no API key is configured.
func NewClient(cfg Config) *openaisdk.Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}

	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	// OpenRouter attribution headers
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}
