// Package store persists document chunks and their embeddings in a local
// SQLite database with vector search via sqlite-vec.
package store

import "errors"

// ErrEmbeddingMismatch is returned when the store was built with a different
// embedding provider or model than the one now configured. Vectors from
// different models are not comparable, so the index must be rebuilt before it
// can be used again.
var ErrEmbeddingMismatch = errors.New("index was built with a different embedding model; run `sage index --force` to rebuild")

// Metadata carries the provenance and folder context attached to every chunk.
type Metadata struct {
	Source           string
	FileName         string
	FileType         string
	MainPhase        string
	ProjectCategory  string
	SubCategory      string
	SpecificArea     string
	FolderHierarchy  string
	PhaseDescription string
	SearchContext    string
	ChunkIndex       int
	TotalChunks      int
}

// Document is a single chunk with its embedding and metadata.
type Document struct {
	Content   string
	Embedding []float32
	Metadata  Metadata
}

// ScoredDocument is a search hit with its similarity score (1 - cosine
// distance, higher is more similar).
type ScoredDocument struct {
	Document
	Score float64
}

// CollectionInfo describes the embedding configuration the index was built
// with.
type CollectionInfo struct {
	EmbeddingProvider string
	EmbeddingModel    string
	Dimensions        int
	CreatedAt         string
}
