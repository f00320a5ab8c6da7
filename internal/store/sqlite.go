package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Register sqlite-vec extension
	sqlite_vec.Auto()
}

// SQLiteStore is the vector index backed by SQLite and sqlite-vec.
type SQLiteStore struct {
	db         *sql.DB
	provider   string
	model      string
	dimensions int
	mu         sync.RWMutex
}

// Open opens (or creates) the index at dbPath for the given embedding
// configuration. If the index already exists but was built with a different
// provider or model, Open fails with ErrEmbeddingMismatch; the caller must
// rebuild the index before indexing or searching.
func Open(dbPath, provider, model string, dimensions int) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	info, err := readCollectionInfo(db)
	if err != nil {
		// A fresh database has no tables yet.
		info = nil
	}

	if info != nil {
		if info.EmbeddingProvider != provider || info.EmbeddingModel != model {
			db.Close()
			log.Debug("Embedding configuration mismatch",
				"stored_provider", info.EmbeddingProvider, "stored_model", info.EmbeddingModel,
				"provider", provider, "model", model)
			return nil, ErrEmbeddingMismatch
		}
		// Trust the stored dimensions over the caller's guess; some backends
		// only learn their true dimensions after the first request.
		dimensions = info.Dimensions
	}

	if err := initSchema(db, dimensions); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if info == nil {
		if err := writeCollectionInfo(db, provider, model, dimensions); err != nil {
			db.Close()
			return nil, err
		}
	}

	log.Debug("Opened vector store", "path", dbPath, "provider", provider, "model", model, "dimensions", dimensions)

	return &SQLiteStore{
		db:         db,
		provider:   provider,
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Reset drops all data and recreates the schema for the store's embedding
// configuration. Used to rebuild after an embedding mismatch or a forced
// reindex.
func Reset(dbPath, provider, model string, dimensions int) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := dropSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(db, dimensions); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := writeCollectionInfo(db, provider, model, dimensions); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("Reset vector store", "path", dbPath, "provider", provider, "model", model)

	return &SQLiteStore{
		db:         db,
		provider:   provider,
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Info returns the embedding configuration the store was opened with.
func (s *SQLiteStore) Info() CollectionInfo {
	return CollectionInfo{
		EmbeddingProvider: s.provider,
		EmbeddingModel:    s.model,
		Dimensions:        s.dimensions,
	}
}

// AddDocuments inserts chunks with their embeddings. Chunks are grouped by
// source, and each source's previous chunks are removed in the same
// transaction, so re-indexing a file never leaves stale chunks behind.
func (s *SQLiteStore) AddDocuments(docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %d has no embedding", i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Group by source, preserving first-seen order.
	var sources []string
	bySource := make(map[string][]Document)
	for _, doc := range docs {
		src := doc.Metadata.Source
		if _, ok := bySource[src]; !ok {
			sources = append(sources, src)
		}
		bySource[src] = append(bySource[src], doc)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, src := range sources {
		if err := deleteSourceTx(tx, src); err != nil {
			return err
		}

		for i, doc := range bySource[src] {
			result, err := tx.Exec(`
				INSERT INTO chunks (
					content, source, file_name, file_type,
					main_phase, project_category, sub_category, specific_area,
					folder_hierarchy, phase_description, search_context,
					chunk_index, total_chunks
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				doc.Content, doc.Metadata.Source, doc.Metadata.FileName, doc.Metadata.FileType,
				doc.Metadata.MainPhase, doc.Metadata.ProjectCategory, doc.Metadata.SubCategory, doc.Metadata.SpecificArea,
				doc.Metadata.FolderHierarchy, doc.Metadata.PhaseDescription, doc.Metadata.SearchContext,
				doc.Metadata.ChunkIndex, doc.Metadata.TotalChunks,
			)
			if err != nil {
				return fmt.Errorf("failed to insert chunk %d of %s: %w", i, src, err)
			}

			chunkID, _ := result.LastInsertId()

			embeddingBlob := serializeEmbedding(doc.Embedding)
			_, err = tx.Exec("INSERT INTO chunk_vectors (chunk_id, embedding) VALUES (?, ?)", chunkID, embeddingBlob)
			if err != nil {
				return fmt.Errorf("failed to insert vector for chunk %d of %s: %w", i, src, err)
			}
		}
	}

	return tx.Commit()
}

// DeleteSource removes all chunks for a source file.
func (s *SQLiteStore) DeleteSource(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSourceTx(tx, source); err != nil {
		return err
	}

	return tx.Commit()
}

func deleteSourceTx(tx *sql.Tx, source string) error {
	_, err := tx.Exec("DELETE FROM chunk_vectors WHERE chunk_id IN (SELECT id FROM chunks WHERE source = ?)", source)
	if err != nil {
		return fmt.Errorf("failed to delete old vectors for %s: %w", source, err)
	}
	_, err = tx.Exec("DELETE FROM chunks WHERE source = ?", source)
	if err != nil {
		return fmt.Errorf("failed to delete old chunks for %s: %w", source, err)
	}
	return nil
}

// Search returns the topK most similar documents. An empty index returns an
// empty result, never an error.
func (s *SQLiteStore) Search(queryEmbedding []float32, topK int) ([]Document, error) {
	scored, err := s.SearchWithScore(queryEmbedding, topK)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, len(scored))
	for i, sd := range scored {
		docs[i] = sd.Document
	}
	return docs, nil
}

// SearchWithScore returns the topK most similar documents along with their
// similarity scores.
func (s *SQLiteStore) SearchWithScore(queryEmbedding []float32, topK int) ([]ScoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, err := s.countLocked()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []ScoredDocument{}, nil
	}

	queryBlob := serializeEmbedding(queryEmbedding)

	rows, err := s.db.Query(`
		SELECT
			c.content, c.source, c.file_name, c.file_type,
			c.main_phase, c.project_category, c.sub_category, c.specific_area,
			c.folder_hierarchy, c.phase_description, c.search_context,
			c.chunk_index, c.total_chunks,
			cv.distance
		FROM chunk_vectors cv
		JOIN chunks c ON c.id = cv.chunk_id
		WHERE cv.embedding MATCH ?
			AND k = ?
		ORDER BY cv.distance ASC
	`, queryBlob, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var results []ScoredDocument
	for rows.Next() {
		var doc ScoredDocument
		var distance float64

		if err := rows.Scan(
			&doc.Content, &doc.Metadata.Source, &doc.Metadata.FileName, &doc.Metadata.FileType,
			&doc.Metadata.MainPhase, &doc.Metadata.ProjectCategory, &doc.Metadata.SubCategory, &doc.Metadata.SpecificArea,
			&doc.Metadata.FolderHierarchy, &doc.Metadata.PhaseDescription, &doc.Metadata.SearchContext,
			&doc.Metadata.ChunkIndex, &doc.Metadata.TotalChunks,
			&distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}

		doc.Score = 1 - distance // Convert cosine distance to similarity

		results = append(results, doc)
	}
	if results == nil {
		results = []ScoredDocument{}
	}

	return results, rows.Err()
}

// Count returns the number of chunks in the index.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked()
}

func (s *SQLiteStore) countLocked() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// SourceCount returns the number of distinct indexed files.
func (s *SQLiteStore) SourceCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT source) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return count, nil
}

// Clear removes every chunk and vector from the index in a single
// transaction.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chunk_vectors"); err != nil {
		return fmt.Errorf("failed to clear vectors: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM chunks"); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}

	return tx.Commit()
}

// serializeEmbedding converts a float32 slice to bytes for sqlite-vec.
func serializeEmbedding(embedding []float32) []byte {
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
