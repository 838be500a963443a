// Package llm provides text-generation clients for transaction
// categorization. It supports a local Ollama endpoint and OpenAI-compatible
// APIs, with rate limiting shared across providers.
package llm

import (
	"context"
	"time"
)

// Client is a text-completion backend: one fully rendered prompt in, raw
// completion text out.
type Client interface {
	// Generate returns the raw completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider for logging.
	Name() string
}

// Config holds generation client configuration.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RateLimit   int // requests per minute, 0 disables client-side limiting
}

// DefaultConfig returns the stock local-model setup.
func DefaultConfig() Config {
	return Config{
		Provider:    "ollama",
		Model:       "llama3.1:8b",
		Temperature: 0.3,
		MaxTokens:   512,
		Timeout:     60 * time.Second,
	}
}
