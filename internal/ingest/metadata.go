package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record tracks what we knew about a file the last time it was indexed.
type Record struct {
	Hash        string    `json:"hash"`
	ProcessedAt time.Time `json:"processed_at"`
	ChunkCount  int       `json:"chunk_count"`
	Language    string    `json:"language,omitempty"`
}

// Metadata maps absolute file paths to their last-indexed records.
type Metadata map[string]Record

// LoadMetadata reads the metadata file. A missing file is an empty metadata
// set, not an error.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Metadata{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if meta == nil {
		meta = Metadata{}
	}
	return meta, nil
}

// SaveMetadata writes the metadata file atomically enough for a single-user
// tool: write whole, then rename.
func SaveMetadata(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace metadata: %w", err)
	}
	return nil
}
