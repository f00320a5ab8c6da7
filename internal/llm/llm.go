// Package llm provides chat completion clients for answer synthesis.
package llm

import (
	"context"
	"fmt"

	"github.com/project-sage/sage/internal/config"
)

// Provider represents an LLM provider type.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// CompletionOptions configures the completion request.
type CompletionOptions struct {
	// Temperature controls randomness (0-1).
	Temperature float64

	// MaxTokens limits the response length.
	MaxTokens int
}

// DefaultCompletionOptions returns the defaults used for grounded answers.
// The temperature is kept low so responses stay close to the retrieved
// context.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		Temperature: 0.3,
		MaxTokens:   2048,
	}
}

// Client defines the interface for chat completion backends.
type Client interface {
	// Complete generates a completion for the given messages.
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)

	// Provider returns the provider name.
	Provider() Provider

	// ModelName returns the model name.
	ModelName() string
}

// New creates a chat client for the given provider and model, pulling
// credentials from the configuration.
func New(provider, model string, cfg *config.Config) (Client, error) {
	switch provider {
	case "google":
		return NewGoogleClient(cfg.KeyFor("google"), model)
	case "anthropic":
		return NewAnthropicClient(cfg.KeyFor("anthropic"), model)
	case "openai":
		return NewOpenAIClient(cfg.KeyFor("openai"), model, "")
	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = config.DefaultOllamaURL
		}
		return NewOllamaClient(url, model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
