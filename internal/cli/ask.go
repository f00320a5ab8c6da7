package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/project-sage/sage/internal/answer"
	"github.com/project-sage/sage/internal/embeddings"
	"github.com/project-sage/sage/internal/models"
	"github.com/project-sage/sage/internal/store"
	"github.com/project-sage/sage/internal/ui"
)

var (
	askTopK     int
	askProvider string
	askModel    string
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed documents",
	Long: `Ask a natural-language question. The most relevant document chunks are
retrieved from the index and handed to the configured LLM, which answers
based only on that context and cites its sources.

The chat model can be changed per invocation without re-indexing.

Examples:
  sage ask "What is the total contract value?"
  sage ask --provider anthropic "Summarize the grid connection agreement"
  sage ask --top-k 10 "Which permits are still outstanding?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 5, "number of chunks to retrieve")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "chat provider for this question")
	askCmd.Flags().StringVar(&askModel, "model", "", "chat model for this question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	emb, err := embeddings.Resolve(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath(), string(emb.Provider()), emb.ModelName(), emb.Dimensions())
	if errors.Is(err, store.ErrEmbeddingMismatch) {
		fmt.Println(ui.Error.Render("Embedding configuration changed."))
		fmt.Println("Run 'sage index --force' to rebuild the index, then ask again.")
		return err
	}
	if err != nil {
		return err
	}
	defer st.Close()

	mgr := models.NewManager(cfg)
	if askProvider != "" || askModel != "" {
		provider := askProvider
		if provider == "" {
			provider, _ = mgr.Current()
		}
		if err := mgr.SwitchModel(provider, askModel); err != nil {
			return err
		}
	}

	client, err := mgr.Client()
	if err != nil {
		return err
	}

	queryVec, err := emb.EmbedQuery(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to embed question: %w", err)
	}

	docs, err := st.Search(queryVec, askTopK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	stopSpinner := make(chan struct{})
	spinnerDone := make(chan struct{})
	go showSpinner(fmt.Sprintf("Asking %s", client.ModelName()), stopSpinner, spinnerDone)

	result := answer.New(client).Answer(ctx, question, docs)

	close(stopSpinner)
	<-spinnerDone

	if ctx.Err() != nil {
		return nil
	}

	fmt.Println(ui.Header.Render("Answer"))
	fmt.Println()

	if result.Failed {
		fmt.Println(ui.Warning.Render(result.Answer))
	} else if rendered, renderErr := renderMarkdown(result.Answer); renderErr == nil {
		fmt.Print(rendered)
	} else {
		fmt.Println(result.Answer)
	}

	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println(ui.Dim.Render("Sources:"))
		for i, src := range result.Sources {
			fmt.Printf("  [%d] %s\n", i+1, src)
		}
	}

	return nil
}

// showSpinner displays an animated spinner until stopCh is closed.
func showSpinner(message string, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	defer close(doneCh)

	i := 0
	for {
		select {
		case <-stopCh:
			// Clear spinner line
			fmt.Print("\r\033[2K")
			return
		case <-ticker.C:
			fmt.Printf("\r%s %s", ui.Highlight.Render(frames[i]), message)
			i = (i + 1) % len(frames)
		}
	}
}

// renderMarkdown renders markdown content using glamour.
func renderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}
