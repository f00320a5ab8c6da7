package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/project-sage/sage/internal/embeddings"
	"github.com/project-sage/sage/internal/ingest"
	"github.com/project-sage/sage/internal/store"
	"github.com/project-sage/sage/internal/ui"
)

var indexForce bool

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index project documents for question answering",
	Long: `Index the project's documents into the local vector store.

This command will:
1. Discover supported documents (PDF, DOCX, PPTX, XLSX, TXT, MD)
2. Extract their text, running OCR on scanned PDFs when available
3. Split the text into chunks enriched with folder context
4. Generate embeddings and store them in the local database

Only new and changed files are processed; use --force to rebuild the
entire index from scratch.

Examples:
  # Incremental index of the current project
  sage index

  # Full rebuild (required after changing the indexing provider)
  sage index --force`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "clear the index and reprocess every document")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	ing, err := ingest.New(cfg)
	if err != nil {
		return err
	}

	emb, err := embeddings.Resolve(cfg)
	if err != nil {
		return err
	}

	var st *store.SQLiteStore
	if indexForce {
		st, err = store.Reset(cfg.DBPath(), string(emb.Provider()), emb.ModelName(), emb.Dimensions())
		if err != nil {
			return err
		}
		ing.Forget()
	} else {
		st, err = store.Open(cfg.DBPath(), string(emb.Provider()), emb.ModelName(), emb.Dimensions())
		if errors.Is(err, store.ErrEmbeddingMismatch) {
			fmt.Println(ui.Error.Render("Embedding configuration changed."))
			fmt.Println("The existing index was built with a different embedding model and cannot be extended.")
			fmt.Println("Run 'sage index --force' to rebuild it with the current configuration.")
			return err
		}
		if err != nil {
			return err
		}
	}
	defer st.Close()

	files, err := ing.FindFiles(indexForce)
	if err != nil {
		return err
	}

	fmt.Println(ui.Header.Render("Indexing " + filepath.Base(cfg.ProjectPath)))
	fmt.Printf("Embeddings: %s (%s)\n\n", emb.Provider(), emb.ModelName())

	if len(files) == 0 {
		fmt.Println("All documents are up to date.")
		return nil
	}

	startTime := time.Now()
	totalChunks := 0
	indexed := 0
	var failed []string

	for i, path := range files {
		if ctx.Err() != nil {
			fmt.Println(ui.Warning.Render("Indexing cancelled"))
			break
		}

		rel, relErr := filepath.Rel(cfg.ProjectPath, path)
		if relErr != nil {
			rel = path
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(files), ui.FilePath.Render(rel))

		docs, err := ing.ProcessFile(path)
		if err != nil {
			log.Warn("Failed to process file", "file", rel, "error", err)
			failed = append(failed, rel)
			continue
		}

		texts := make([]string, len(docs))
		for j, doc := range docs {
			texts[j] = doc.Content
		}

		vectors, err := emb.EmbedBatch(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Warn("Failed to embed file", "file", rel, "error", err)
			failed = append(failed, rel)
			continue
		}
		if len(vectors) != len(docs) {
			log.Warn("Embedding count mismatch", "file", rel, "chunks", len(docs), "vectors", len(vectors))
			failed = append(failed, rel)
			continue
		}
		for j := range docs {
			docs[j].Embedding = vectors[j]
		}

		if err := st.AddDocuments(docs); err != nil {
			log.Warn("Failed to store chunks", "file", rel, "error", err)
			failed = append(failed, rel)
			continue
		}

		if err := ing.RecordFile(path, len(docs)); err != nil {
			log.Warn("Failed to record file", "file", rel, "error", err)
		}

		indexed++
		totalChunks += len(docs)
	}

	if err := ing.Save(); err != nil {
		log.Warn("Failed to save indexing metadata", "error", err)
	}

	duration := time.Since(startTime).Round(time.Millisecond)

	fmt.Println()
	fmt.Println(ui.Success.Render("Indexing complete!"))
	fmt.Println()
	fmt.Printf("  Documents: %d\n", indexed)
	fmt.Printf("  Chunks:    %d\n", totalChunks)
	fmt.Printf("  Duration:  %s\n", duration)

	if len(failed) > 0 {
		fmt.Println()
		fmt.Println(ui.Warning.Render(fmt.Sprintf("%d document(s) could not be indexed:", len(failed))))
		for _, f := range failed {
			fmt.Printf("  - %s\n", f)
		}
	}

	return nil
}
