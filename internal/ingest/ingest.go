// Package ingest walks the project tree, extracts and chunks documents, and
// tracks what has already been indexed so repeat runs only touch changes.
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/project-sage/sage/internal/chunker"
	"github.com/project-sage/sage/internal/config"
	"github.com/project-sage/sage/internal/extract"
	"github.com/project-sage/sage/internal/folderctx"
	"github.com/project-sage/sage/internal/store"
)

// Ingestor coordinates file discovery, extraction and chunking for a
// project.
type Ingestor struct {
	root      string
	metaPath  string
	meta      Metadata
	language  string
	extractor *extract.Extractor
	chunker   *chunker.Chunker
	matcher   *ignore.GitIgnore
}

// New creates an Ingestor for the configured project.
func New(cfg *config.Config) (*Ingestor, error) {
	ck, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	metaPath := cfg.MetadataPath()
	meta, err := LoadMetadata(metaPath)
	if err != nil {
		return nil, err
	}

	var matcher *ignore.GitIgnore
	gitignorePath := filepath.Join(cfg.ProjectPath, ".gitignore")
	if _, statErr := os.Stat(gitignorePath); statErr == nil {
		matcher, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			log.Debug("Failed to parse .gitignore, ignoring it", "error", err)
			matcher = nil
		}
	}

	return &Ingestor{
		root:      cfg.ProjectPath,
		metaPath:  metaPath,
		meta:      meta,
		language:  cfg.DocumentLanguage,
		extractor: extract.New(cfg.DocumentLanguage),
		chunker:   ck,
		matcher:   matcher,
	}, nil
}

// FindFiles returns the supported files that need indexing. Unless force is
// set, files whose content hash matches the last indexed hash are skipped.
func (in *Ingestor) FindFiles(force bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(in.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip hidden directories, including the project state dir.
			if path != in.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !extract.Supported(filepath.Ext(path)) {
			return nil
		}

		if in.matcher != nil {
			rel, relErr := filepath.Rel(in.root, path)
			if relErr == nil && in.matcher.MatchesPath(rel) {
				return nil
			}
		}

		if !force {
			hash, hashErr := hashFile(path)
			if hashErr == nil {
				if rec, ok := in.meta[path]; ok && rec.Hash == hash {
					return nil
				}
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk project: %w", err)
	}

	return files, nil
}

// ProcessFile extracts, contextualizes and chunks a single file. The
// returned documents carry no embeddings yet.
func (in *Ingestor) ProcessFile(path string) ([]store.Document, error) {
	text, err := in.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no extractable text")
	}

	fctx := folderctx.Extract(path, in.root)
	fileName := filepath.Base(path)

	prefix := fmt.Sprintf(
		"Document Context:\n- Project Phase: %s\n- Category: %s\n- Location: %s\n- File: %s\n\nContent:\n",
		fctx.PhaseDescription, fctx.ProjectCategory, fctx.FolderHierarchy, fileName,
	)

	chunks := in.chunker.Split(prefix + text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced")
	}

	docs := make([]store.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = store.Document{
			Content: chunk,
			Metadata: store.Metadata{
				Source:           path,
				FileName:         fileName,
				FileType:         strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
				MainPhase:        fctx.MainPhase,
				ProjectCategory:  fctx.ProjectCategory,
				SubCategory:      fctx.SubCategory,
				SpecificArea:     fctx.SpecificArea,
				FolderHierarchy:  fctx.FolderHierarchy,
				PhaseDescription: fctx.PhaseDescription,
				SearchContext:    fctx.SearchContext(),
				ChunkIndex:       i,
				TotalChunks:      len(chunks),
			},
		}
	}

	return docs, nil
}

// RecordFile marks a file as indexed with its current content hash.
func (in *Ingestor) RecordFile(path string, chunkCount int) error {
	hash, err := hashFile(path)
	if err != nil {
		return err
	}
	in.meta[path] = Record{
		Hash:        hash,
		ProcessedAt: time.Now().UTC(),
		ChunkCount:  chunkCount,
		Language:    in.language,
	}
	return nil
}

// Forget drops all indexing records, forcing the next run to reprocess
// everything.
func (in *Ingestor) Forget() {
	in.meta = Metadata{}
}

// IndexedCount returns the number of files with indexing records.
func (in *Ingestor) IndexedCount() int {
	return len(in.meta)
}

// Save persists the metadata file.
func (in *Ingestor) Save() error {
	return SaveMetadata(in.metaPath, in.meta)
}

// hashFile computes the content hash used for change detection.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}
