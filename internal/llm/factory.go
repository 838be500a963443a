package llm

import (
	"fmt"
	"strings"
)

// NewClient creates a generation client for the configured provider.
// When cfg.RateLimit is set, the client is wrapped with a token bucket
// limiting requests per minute.
func NewClient(cfg Config) (Client, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "", "ollama":
		client, err = newOllamaClient(cfg)
	case "openai":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	if cfg.RateLimit > 0 {
		client = &rateLimitedClient{
			inner:   client,
			limiter: newRateLimiter(cfg.RateLimit),
		}
	}

	return client, nil
}
