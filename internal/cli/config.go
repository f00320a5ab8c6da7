package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/project-sage/sage/internal/ui"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the project configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Settable keys:
  provider, model, chat_provider, chat_model, index_provider, index_model,
  google_api_key, anthropic_api_key, openai_api_key,
  chunk_size, chunk_overlap, document_language, embedding_model, ollama_url

Changing index_provider or index_model invalidates the existing index;
rebuild it with 'sage index --force'.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	chatProvider, chatModel := cfg.ChatProviderModel()
	indexProvider, indexModel := cfg.IndexProviderModel()

	fmt.Println(ui.Header.Render("Configuration"))
	fmt.Println()
	fmt.Printf("  project_path:       %s\n", cfg.ProjectPath)
	fmt.Printf("  chat:               %s (%s)\n", chatProvider, chatModel)
	fmt.Printf("  indexing:           %s (%s)\n", indexProvider, indexModel)
	fmt.Printf("  chunk_size:         %d\n", cfg.ChunkSize)
	fmt.Printf("  chunk_overlap:      %d\n", cfg.ChunkOverlap)
	fmt.Printf("  document_language:  %s\n", cfg.DocumentLanguage)
	fmt.Printf("  embedding_provider: %s\n", cfg.EmbeddingProvider)
	if cfg.EmbeddingModel != "" {
		fmt.Printf("  embedding_model:    %s\n", cfg.EmbeddingModel)
	}
	fmt.Printf("  ollama_url:         %s\n", cfg.OllamaURL)
	fmt.Println()
	fmt.Printf("  google_api_key:     %s\n", redactKey(cfg.GoogleAPIKey))
	fmt.Printf("  anthropic_api_key:  %s\n", redactKey(cfg.AnthropicAPIKey))
	fmt.Printf("  openai_api_key:     %s\n", redactKey(cfg.OpenAIAPIKey))

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "chat_provider":
		cfg.ChatProvider = value
	case "chat_model":
		cfg.ChatModel = value
	case "index_provider":
		cfg.IndexProvider = value
	case "index_model":
		cfg.IndexModel = value
	case "google_api_key":
		cfg.GoogleAPIKey = value
	case "anthropic_api_key":
		cfg.AnthropicAPIKey = value
	case "openai_api_key":
		cfg.OpenAIAPIKey = value
	case "chunk_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("chunk_size must be a number")
		}
		cfg.ChunkSize = n
	case "chunk_overlap":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("chunk_overlap must be a number")
		}
		cfg.ChunkOverlap = n
	case "document_language":
		cfg.DocumentLanguage = value
	case "embedding_model":
		cfg.EmbeddingModel = value
	case "ollama_url":
		cfg.OllamaURL = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Println(ui.Success.Render(fmt.Sprintf("Set %s.", key)))

	switch key {
	case "index_provider", "index_model", "embedding_model":
		fmt.Println(ui.Warning.Render("The existing index no longer matches this configuration. Run 'sage index --force' to rebuild it."))
	}

	return nil
}

// redactKey hides all but the tail of a credential.
func redactKey(key string) string {
	if key == "" {
		return ui.Dim.Render("(not set)")
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
