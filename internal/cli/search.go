package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/project-sage/sage/internal/embeddings"
	"github.com/project-sage/sage/internal/store"
	"github.com/project-sage/sage/internal/ui"
)

var (
	searchLimit   int
	searchContent bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the indexed documents without generating an answer",
	Long: `Retrieve the document chunks most similar to the query and show them
with their similarity scores and folder context. Useful for checking what
'sage ask' would base its answer on.

Examples:
  sage search "grid connection agreement"
  sage search --content "environmental permit"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "m", 5, "maximum number of results")
	searchCmd.Flags().BoolVarP(&searchContent, "content", "c", false, "show chunk content")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

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
		fmt.Println("Run 'sage index --force' to rebuild the index, then search again.")
		return err
	}
	if err != nil {
		return err
	}
	defer st.Close()

	queryVec, err := emb.EmbedQuery(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := st.SearchWithScore(queryVec, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		fmt.Println("\nRun 'sage index' if you have not indexed this project yet.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(results))

	for i, r := range results {
		fmt.Printf("%s %s %s\n",
			ui.Highlight.Render(fmt.Sprintf("[%d]", i+1)),
			ui.FilePath.Render(r.Metadata.FileName),
			ui.FormatScore(r.Score),
		)
		fmt.Printf("    %s\n", ui.SourceRef.Render(fmt.Sprintf("chunk %d/%d · %s",
			r.Metadata.ChunkIndex+1, r.Metadata.TotalChunks, r.Metadata.FolderHierarchy)))
		if r.Metadata.PhaseDescription != "" {
			fmt.Printf("    %s\n", ui.Dim.Render(r.Metadata.PhaseDescription))
		}

		if searchContent {
			fmt.Println()
			fmt.Println(ui.ResultContent.Render(truncateContent(r.Content, 600)))
		}

		fmt.Println()
	}

	return nil
}

// truncateContent shortens chunk content for display, cutting on a rune
// boundary so multi-byte scripts stay intact.
func truncateContent(content string, maxLen int) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen]) + "..."
}
