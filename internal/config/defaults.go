package config

// Default configuration values
const (
	// Provider defaults (legacy single pair)
	DefaultProvider = "google"
	DefaultModel    = "gemini-1.5-flash"

	// Embedding defaults
	DefaultEmbeddingProvider = "auto"
	DefaultEmbeddingModel    = ""
	DefaultOllamaURL         = "http://localhost:11434"

	// Chunking defaults
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 300

	// Document defaults
	DefaultDocumentLanguage = "eng"

	// Project state layout
	StateDirName     = ".sage"
	ConfigFileName   = "config.yaml"
	MetadataFileName = "metadata.json"
	DBFileName       = "index.db"
)

// SupportedProviders lists the providers a project may configure.
func SupportedProviders() []string {
	return []string{"google", "anthropic", "openai", "ollama"}
}
