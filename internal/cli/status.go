package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/project-sage/sage/internal/embeddings"
	"github.com/project-sage/sage/internal/extract"
	"github.com/project-sage/sage/internal/ingest"
	"github.com/project-sage/sage/internal/store"
	"github.com/project-sage/sage/internal/ui"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project's indexing and configuration status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println(ui.Header.Render("Project Status"))
	fmt.Println()
	fmt.Printf("  Project:  %s\n", cfg.ProjectPath)

	chatProvider, chatModel := cfg.ChatProviderModel()
	indexProvider, indexModel := cfg.IndexProviderModel()
	fmt.Printf("  Chat:     %s (%s)\n", chatProvider, chatModel)
	fmt.Printf("  Indexing: %s (%s)\n", indexProvider, indexModel)

	if extract.New(cfg.DocumentLanguage).OCR != nil {
		fmt.Printf("  OCR:      available (%s)\n", cfg.DocumentLanguage)
	} else {
		fmt.Printf("  OCR:      %s\n", ui.Dim.Render("unavailable (install poppler and tesseract for scanned PDFs)"))
	}

	fmt.Println()

	if _, statErr := os.Stat(cfg.DBPath()); statErr != nil {
		fmt.Println(ui.Dim.Render("No index yet. Run 'sage index' to build one."))
		return nil
	}

	emb, err := embeddings.Resolve(cfg)
	if err != nil {
		fmt.Println(ui.Warning.Render("Embedding backend unavailable: " + err.Error()))
		return nil
	}

	st, err := store.Open(cfg.DBPath(), string(emb.Provider()), emb.ModelName(), emb.Dimensions())
	if errors.Is(err, store.ErrEmbeddingMismatch) {
		fmt.Println(ui.Warning.Render("The index was built with a different embedding model."))
		fmt.Println("Run 'sage index --force' to rebuild it.")
		return nil
	}
	if err != nil {
		return err
	}
	defer st.Close()

	chunks, err := st.Count()
	if err != nil {
		return err
	}
	sources, err := st.SourceCount()
	if err != nil {
		return err
	}

	info := st.Info()
	fmt.Println(ui.Header.Render("Index"))
	fmt.Println()
	fmt.Printf("  Embeddings: %s (%s, %d dims)\n", info.EmbeddingProvider, info.EmbeddingModel, info.Dimensions)
	fmt.Printf("  Documents:  %d\n", sources)
	fmt.Printf("  Chunks:     %d\n", chunks)

	meta, err := ingest.LoadMetadata(cfg.MetadataPath())
	if err == nil && len(meta) > 0 {
		fmt.Printf("  Tracked:    %d files\n", len(meta))
	}

	return nil
}
