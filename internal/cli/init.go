package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/project-sage/sage/internal/config"
	"github.com/project-sage/sage/internal/models"
	"github.com/project-sage/sage/internal/ui"
)

var (
	initProvider     string
	initModel        string
	initAPIKey       string
	initChunkSize    int
	initChunkOverlap int
	initLanguage     string
	initOllamaURL    string
	initForce        bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up sage for a project",
	Long: `Create the project configuration under .sage/.

The configuration file holds the provider selection, credentials and
processing settings, and the state directory is added to .gitignore so
nothing sensitive lands in version control.

Examples:
  # Default setup (Google Gemini)
  sage init

  # Use Anthropic with an explicit key
  sage init --provider anthropic --api-key sk-ant-...

  # Local-only with Ollama
  sage init --provider ollama`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initProvider, "provider", config.DefaultProvider, "LLM provider (google, anthropic, openai, ollama)")
	initCmd.Flags().StringVar(&initModel, "model", "", "chat model (defaults to the provider's recommendation)")
	initCmd.Flags().StringVar(&initAPIKey, "api-key", "", "API key for the provider")
	initCmd.Flags().IntVar(&initChunkSize, "chunk-size", config.DefaultChunkSize, "chunk size in characters")
	initCmd.Flags().IntVar(&initChunkOverlap, "chunk-overlap", config.DefaultChunkOverlap, "chunk overlap in characters")
	initCmd.Flags().StringVar(&initLanguage, "language", config.DefaultDocumentLanguage, "OCR language for scanned documents (tesseract code, e.g. eng, vie)")
	initCmd.Flags().StringVar(&initOllamaURL, "ollama-url", config.DefaultOllamaURL, "Ollama server URL")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return fmt.Errorf("failed to resolve project path: %w", err)
	}

	if config.Exists(abs) && !initForce {
		return fmt.Errorf("project is already configured (%s); use --force to overwrite", config.Path(abs))
	}

	cap, ok := models.Lookup(initProvider)
	if !ok {
		return fmt.Errorf("unknown provider: %s (choose from %v)", initProvider, models.Providers())
	}

	model := initModel
	if model == "" {
		model = cap.Recommended
	}
	if err := models.Validate(initProvider, model); err != nil {
		return err
	}

	cfg := config.Default(abs)
	cfg.Provider = initProvider
	cfg.Model = model
	cfg.ChunkSize = initChunkSize
	cfg.ChunkOverlap = initChunkOverlap
	cfg.DocumentLanguage = initLanguage
	cfg.OllamaURL = initOllamaURL

	if initAPIKey != "" {
		switch initProvider {
		case "google":
			cfg.GoogleAPIKey = initAPIKey
		case "anthropic":
			cfg.AnthropicAPIKey = initAPIKey
		case "openai":
			cfg.OpenAIAPIKey = initAPIKey
		default:
			return fmt.Errorf("provider %s does not take an API key", initProvider)
		}
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Println(ui.Success.Render("Project configured."))
	fmt.Println()
	fmt.Printf("  Provider: %s\n", initProvider)
	fmt.Printf("  Model:    %s\n", model)
	fmt.Printf("  Config:   %s\n", config.Path(abs))

	if cap.RequiresAPIKey && cfg.KeyFor(initProvider) == "" {
		envVar := map[string]string{
			"google":    "GOOGLE_API_KEY",
			"anthropic": "ANTHROPIC_API_KEY",
			"openai":    "OPENAI_API_KEY",
		}[initProvider]
		fmt.Println()
		fmt.Println(ui.Warning.Render(fmt.Sprintf("No API key configured. Set %s or re-run with --api-key.", envVar)))
	}

	if !cap.NativeEmbeddings {
		fmt.Println()
		fmt.Println(ui.Dim.Render(fmt.Sprintf("Note: %s has no embedding API; indexing borrows %s embeddings and needs that provider's key.",
			initProvider, cap.EmbeddingFallback)))
	}

	fmt.Println()
	fmt.Println("Next: run 'sage index' to index your documents.")
	return nil
}
