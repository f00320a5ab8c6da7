package store

import (
	"database/sql"
	"fmt"
)

const collectionInfoTable = `
CREATE TABLE IF NOT EXISTS collection_info (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	embedding_provider TEXT NOT NULL,
	embedding_model TEXT NOT NULL,
	dimensions INTEGER NOT NULL,
	created_at TEXT DEFAULT (datetime('now'))
);
`

const chunksTable = `
CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	source TEXT NOT NULL,
	file_name TEXT NOT NULL,
	file_type TEXT NOT NULL,
	main_phase TEXT NOT NULL,
	project_category TEXT NOT NULL,
	sub_category TEXT NOT NULL,
	specific_area TEXT NOT NULL,
	folder_hierarchy TEXT NOT NULL,
	phase_description TEXT NOT NULL,
	search_context TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	total_chunks INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
`

// createVectorTable creates the sqlite-vec virtual table for the given dimensions.
func createVectorTable(db *sql.DB, dimensions int) error {
	query := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunk_vectors USING vec0(
			chunk_id INTEGER PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		);
	`, dimensions)

	_, err := db.Exec(query)
	return err
}

// initSchema creates the tables. The vector table is created last because
// its dimensions come from the embedding model.
func initSchema(db *sql.DB, dimensions int) error {
	tables := []string{collectionInfoTable, chunksTable}
	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return createVectorTable(db, dimensions)
}

// dropSchema removes all tables so the index can be rebuilt from scratch.
func dropSchema(db *sql.DB) error {
	drops := []string{
		"DROP TABLE IF EXISTS chunk_vectors",
		"DROP TABLE IF EXISTS chunks",
		"DROP TABLE IF EXISTS collection_info",
	}
	for _, stmt := range drops {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}

// readCollectionInfo returns the stored embedding configuration, or nil if
// the collection has never been initialized.
func readCollectionInfo(db *sql.DB) (*CollectionInfo, error) {
	var info CollectionInfo
	err := db.QueryRow(`
		SELECT embedding_provider, embedding_model, dimensions, created_at
		FROM collection_info WHERE id = 1
	`).Scan(&info.EmbeddingProvider, &info.EmbeddingModel, &info.Dimensions, &info.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection info: %w", err)
	}
	return &info, nil
}

// writeCollectionInfo records the embedding configuration for a fresh
// collection.
func writeCollectionInfo(db *sql.DB, provider, model string, dimensions int) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO collection_info (id, embedding_provider, embedding_model, dimensions)
		VALUES (1, ?, ?, ?)
	`, provider, model, dimensions)
	if err != nil {
		return fmt.Errorf("failed to write collection info: %w", err)
	}
	return nil
}
