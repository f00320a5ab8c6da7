// Package models tracks which LLM providers and models are available and
// manages runtime switching between them.
package models

import (
	"fmt"
	"sort"
)

// Capability describes what a provider offers and what it needs.
type Capability struct {
	// Models lists the chat models known to work, best-first.
	Models []string

	// Descriptions maps model names to short human-readable summaries.
	Descriptions map[string]string

	// Recommended is the default pick for this provider.
	Recommended string

	// RequiresAPIKey is false only for local providers.
	RequiresAPIKey bool

	// NativeEmbeddings is true when the provider has its own embedding
	// endpoint.
	NativeEmbeddings bool

	// EmbeddingModel is the provider's default embedding model, when it has
	// one.
	EmbeddingModel string

	// EmbeddingFallback names the provider whose embeddings are borrowed
	// when this provider has none.
	EmbeddingFallback string

	// AllowCustomModels permits model names outside the Models list. Local
	// servers can run anything the user has pulled.
	AllowCustomModels bool
}

// ModelRef names a provider/model pair.
type ModelRef struct {
	Provider string
	Model    string
}

// useCasePreferences maps a recommendation use case to candidate models,
// best-first. Resolution picks the first candidate whose provider is usable.
var useCasePreferences = map[string][]ModelRef{
	"speed": {
		{Provider: "google", Model: "gemini-1.5-flash"},
		{Provider: "openai", Model: "gpt-4o-mini"},
		{Provider: "anthropic", Model: "claude-3-5-haiku-latest"},
		{Provider: "ollama", Model: "mistral"},
	},
	"quality": {
		{Provider: "anthropic", Model: "claude-opus-4-1"},
		{Provider: "openai", Model: "gpt-4.1"},
		{Provider: "google", Model: "gemini-1.5-pro"},
		{Provider: "ollama", Model: "llama3.1"},
	},
	"privacy": {
		{Provider: "ollama", Model: "llama3.1"},
	},
}

// UseCases returns the recommendation use cases in display order.
func UseCases() []string {
	return []string{"speed", "quality", "privacy"}
}

var catalog = map[string]Capability{
	"google": {
		Models: []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-2.0-flash"},
		Descriptions: map[string]string{
			"gemini-1.5-flash": "Fast and inexpensive, good default for document Q&A",
			"gemini-1.5-pro":   "Stronger reasoning over long contexts, slower and pricier",
			"gemini-2.0-flash": "Newer flash generation, fast with improved quality",
		},
		Recommended:      "gemini-1.5-flash",
		RequiresAPIKey:   true,
		NativeEmbeddings: true,
		EmbeddingModel:   "text-embedding-004",
	},
	"anthropic": {
		Models: []string{"claude-sonnet-4-5", "claude-opus-4-1", "claude-3-5-haiku-latest"},
		Descriptions: map[string]string{
			"claude-sonnet-4-5":       "Balanced speed and quality, strong at synthesis",
			"claude-opus-4-1":         "Highest quality answers, slowest and most expensive",
			"claude-3-5-haiku-latest": "Fastest and cheapest Claude",
		},
		Recommended:       "claude-sonnet-4-5",
		RequiresAPIKey:    true,
		NativeEmbeddings:  false,
		EmbeddingFallback: "openai",
	},
	"openai": {
		Models: []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1"},
		Descriptions: map[string]string{
			"gpt-4o":      "Strong general-purpose model",
			"gpt-4o-mini": "Cheap and fast, fine for straightforward lookups",
			"gpt-4.1":     "Latest flagship with a large context window",
		},
		Recommended:      "gpt-4o-mini",
		RequiresAPIKey:   true,
		NativeEmbeddings: true,
		EmbeddingModel:   "text-embedding-3-small",
	},
	"ollama": {
		Models: []string{"llama3.1", "mistral", "qwen2.5"},
		Descriptions: map[string]string{
			"llama3.1": "Solid local default if you have the memory for it",
			"mistral":  "Lightweight local model",
			"qwen2.5":  "Good multilingual local model",
		},
		Recommended:       "llama3.1",
		RequiresAPIKey:    false,
		NativeEmbeddings:  true,
		EmbeddingModel:    "nomic-embed-text",
		AllowCustomModels: true,
	},
}

// Providers returns the known provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the capability table for a provider.
func Lookup(provider string) (Capability, bool) {
	cap, ok := catalog[provider]
	return cap, ok
}

// Validate checks that the provider is known and the model is allowed for it.
func Validate(provider, model string) error {
	cap, ok := catalog[provider]
	if !ok {
		return fmt.Errorf("unknown provider: %s (choose from %v)", provider, Providers())
	}

	if cap.AllowCustomModels {
		return nil
	}

	for _, m := range cap.Models {
		if m == model {
			return nil
		}
	}
	return fmt.Errorf("unknown model %q for provider %s (choose from %v)", model, provider, cap.Models)
}
