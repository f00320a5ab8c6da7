// Package embeddings provides text embedding backends for the vector index.
package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/project-sage/sage/internal/config"
)

// Provider represents an embedding backend type.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderLocal  Provider = "local"
)

// Service defines the interface for embedding backends.
type Service interface {
	// Embed generates an embedding for document text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery generates an embedding for a query (may use a different
	// task prefix than documents).
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple document texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimensions for this model.
	Dimensions() int

	// Provider returns the provider name.
	Provider() Provider

	// ModelName returns the model name.
	ModelName() string
}

// Known model dimensions
var modelDimensions = map[string]int{
	// Google models
	"text-embedding-004": 768,

	// OpenAI models
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,

	// Ollama models
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

// GetModelDimensions returns the known dimensions for a model, or 0 if unknown.
func GetModelDimensions(model string) int {
	return modelDimensions[model]
}

// Resolve maps the project's indexing provider to a concrete embedding
// backend.
//
// The embedding backend is pinned to the INDEX provider, never the chat
// provider: switching chat models must never require re-embedding, while
// switching the indexing provider invalidates the existing collection (the
// store surfaces that as an explicit mismatch, see internal/store).
//
// Fallback chains: anthropic has no native embeddings and borrows OpenAI's,
// which requires an OpenAI credential; ollama tries the local server first
// and falls back to a fully offline hashed bag-of-words embedder.
func Resolve(cfg *config.Config) (Service, error) {
	provider, _ := cfg.IndexProviderModel()
	if cfg.EmbeddingProvider != "" && cfg.EmbeddingProvider != "auto" {
		provider = cfg.EmbeddingProvider
	}

	switch provider {
	case "google":
		key := cfg.KeyFor("google")
		if key == "" {
			return nil, fmt.Errorf("google embeddings require a Google API key")
		}
		return NewGoogleService(key, modelOr(cfg.EmbeddingModel, "text-embedding-004"))

	case "openai":
		key := cfg.KeyFor("openai")
		if key == "" {
			return nil, fmt.Errorf("openai embeddings require an OpenAI API key")
		}
		return NewOpenAIService(key, modelOr(cfg.EmbeddingModel, "text-embedding-3-small"), "", 0)

	case "anthropic":
		// Anthropic has no native embeddings.
		key := cfg.KeyFor("openai")
		if key == "" {
			return nil, fmt.Errorf("anthropic has no native embeddings; configure an OpenAI API key for the embedding fallback")
		}
		log.Debug("Anthropic index provider, borrowing OpenAI embeddings")
		return NewOpenAIService(key, modelOr(cfg.EmbeddingModel, "text-embedding-3-small"), "", 0)

	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = config.DefaultOllamaURL
		}
		if ollamaReachable(url) {
			return NewOllamaService(url, modelOr(cfg.EmbeddingModel, "nomic-embed-text"))
		}
		log.Debug("Ollama unreachable, falling back to local embedder", "url", url)
		return NewLocalService(), nil

	case "local":
		return NewLocalService(), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// ollamaReachable probes the Ollama server with a short timeout.
func ollamaReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/version")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func modelOr(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}
