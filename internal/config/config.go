// Package config handles per-project configuration for sage.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrNotConfigured is returned when a project has no sage configuration.
var ErrNotConfigured = errors.New("project is not configured, run 'sage init' first")

// Config represents the per-project sage configuration.
//
// The legacy single provider/model pair (Provider/Model/APIKey) is kept for
// projects configured before dedicated index and chat pairs existed. When the
// dedicated fields are empty, both resolve to the legacy pair.
type Config struct {
	ProjectPath string `mapstructure:"project_path" yaml:"project_path"`

	// Legacy single provider/model pair.
	APIKey   string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model"`

	// Per-provider credentials.
	GoogleAPIKey    string `mapstructure:"google_api_key" yaml:"google_api_key,omitempty"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" yaml:"anthropic_api_key,omitempty"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key" yaml:"openai_api_key,omitempty"`

	// Dedicated pairs for indexing and chat. Empty means legacy fallback.
	IndexProvider string `mapstructure:"index_provider" yaml:"index_provider,omitempty"`
	IndexModel    string `mapstructure:"index_model" yaml:"index_model,omitempty"`
	ChatProvider  string `mapstructure:"chat_provider" yaml:"chat_provider,omitempty"`
	ChatModel     string `mapstructure:"chat_model" yaml:"chat_model,omitempty"`

	// Processing settings.
	ChunkSize        int    `mapstructure:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap     int    `mapstructure:"chunk_overlap" yaml:"chunk_overlap"`
	DocumentLanguage string `mapstructure:"document_language" yaml:"document_language"`

	// Embedding overrides. Provider "auto" derives the backend from the
	// index provider.
	EmbeddingProvider string `mapstructure:"embedding_provider" yaml:"embedding_provider"`
	EmbeddingModel    string `mapstructure:"embedding_model" yaml:"embedding_model,omitempty"`

	// Local model runtime.
	OllamaURL string `mapstructure:"ollama_url" yaml:"ollama_url,omitempty"`
}

// Default returns a configuration with default values for the given project.
func Default(projectPath string) *Config {
	return &Config{
		ProjectPath:       projectPath,
		Provider:          DefaultProvider,
		Model:             DefaultModel,
		ChunkSize:         DefaultChunkSize,
		ChunkOverlap:      DefaultChunkOverlap,
		DocumentLanguage:  DefaultDocumentLanguage,
		EmbeddingProvider: DefaultEmbeddingProvider,
		OllamaURL:         DefaultOllamaURL,
	}
}

// Exists reports whether the project has a saved configuration.
func Exists(projectPath string) bool {
	_, err := os.Stat(Path(projectPath))
	return err == nil
}

// Path returns the config file path for a project root.
func Path(projectPath string) string {
	return filepath.Join(projectPath, StateDirName, ConfigFileName)
}

// Load reads the project configuration from .sage/config.yaml, applying
// defaults and SAGE_* environment overrides.
func Load(projectPath string) (*Config, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(Path(absPath))
	v.SetConfigType("yaml")

	setDefaults(v, absPath)

	v.SetEnvPrefix("SAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotConfigured
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.ProjectPath = absPath

	loadAPIKeysFromEnv(cfg)

	log.Debug("Loaded project config", "path", Path(absPath))
	return cfg, nil
}

// setDefaults sets default values in viper.
func setDefaults(v *viper.Viper, projectPath string) {
	v.SetDefault("project_path", projectPath)
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("document_language", DefaultDocumentLanguage)
	v.SetDefault("embedding_provider", DefaultEmbeddingProvider)
	v.SetDefault("ollama_url", DefaultOllamaURL)
}

// loadAPIKeysFromEnv fills credentials from environment variables when the
// config file does not carry them.
func loadAPIKeysFromEnv(cfg *Config) {
	if cfg.GoogleAPIKey == "" {
		cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.AnthropicAPIKey == "" {
		cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Save writes the configuration to .sage/config.yaml and makes sure the state
// directory is excluded from version control.
func (c *Config) Save() error {
	dir := c.StateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Credentials live in this file, keep it out of group/other reach.
	if err := os.WriteFile(Path(c.ProjectPath), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := ensureGitignore(c.ProjectPath); err != nil {
		log.Warn("Failed to update .gitignore", "error", err)
	}

	return nil
}

// ensureGitignore appends the state directory to the project .gitignore so
// credentials and the index never end up in version control.
func ensureGitignore(projectPath string) error {
	gitignorePath := filepath.Join(projectPath, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == StateDirName+"/" || trimmed == StateDirName {
			return nil
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	entry := "\n# sage configuration and index\n" + StateDirName + "/\n"
	if len(content) == 0 {
		entry = strings.TrimPrefix(entry, "\n")
	}
	_, err = f.WriteString(entry)
	return err
}

// StateDir returns the project-local state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.ProjectPath, StateDirName)
}

// DBPath returns the vector collection path.
func (c *Config) DBPath() string {
	return filepath.Join(c.StateDir(), DBFileName)
}

// MetadataPath returns the file metadata cache path.
func (c *Config) MetadataPath() string {
	return filepath.Join(c.StateDir(), MetadataFileName)
}

// IndexProviderModel resolves the provider/model pair used for indexing,
// falling back to the legacy single pair.
func (c *Config) IndexProviderModel() (string, string) {
	if c.IndexProvider != "" && c.IndexModel != "" {
		return c.IndexProvider, c.IndexModel
	}
	return c.Provider, c.Model
}

// ChatProviderModel resolves the provider/model pair used for chat,
// falling back to the legacy single pair.
func (c *Config) ChatProviderModel() (string, string) {
	if c.ChatProvider != "" && c.ChatModel != "" {
		return c.ChatProvider, c.ChatModel
	}
	return c.Provider, c.Model
}

// KeyFor returns the credential for a provider. The dedicated per-provider
// key wins; the legacy api_key applies only to the legacy provider.
func (c *Config) KeyFor(provider string) string {
	switch provider {
	case "google":
		if c.GoogleAPIKey != "" {
			return c.GoogleAPIKey
		}
	case "anthropic":
		if c.AnthropicAPIKey != "" {
			return c.AnthropicAPIKey
		}
	case "openai":
		if c.OpenAIAPIKey != "" {
			return c.OpenAIAPIKey
		}
	case "ollama":
		return ""
	}
	if c.Provider == provider && c.APIKey != "" {
		return c.APIKey
	}
	return ""
}
