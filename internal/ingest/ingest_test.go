package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-sage/sage/internal/config"
)

// setupProject builds a small project tree and returns its configuration.
func setupProject(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "01.Origination&Dev/ACES/summary.txt", "The project summary with enough text to chunk.")
	writeFile(t, dir, "02.Execution/report.md", "# Construction report\n\nProgress is on schedule.")
	writeFile(t, dir, "notes.txt", "Loose notes at the project root.")
	writeFile(t, dir, "ignored.exe", "binary")
	writeFile(t, dir, ".hidden/secret.txt", "should be skipped")

	cfg := config.Default(dir)
	return cfg
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindFiles(t *testing.T) {
	cfg := setupProject(t)

	ing, err := New(cfg)
	require.NoError(t, err)

	files, err := ing.FindFiles(false)
	require.NoError(t, err)
	require.Len(t, files, 3)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Contains(t, names, "summary.txt")
	assert.Contains(t, names, "report.md")
	assert.Contains(t, names, "notes.txt")
	assert.NotContains(t, names, "ignored.exe")
	assert.NotContains(t, names, "secret.txt")
}

func TestFindFilesSkipsStateDir(t *testing.T) {
	cfg := setupProject(t)
	writeFile(t, cfg.ProjectPath, ".sage/leftover.txt", "internal state")

	ing, err := New(cfg)
	require.NoError(t, err)

	files, err := ing.FindFiles(false)
	require.NoError(t, err)
	for _, f := range files {
		assert.NotContains(t, f, config.StateDirName)
	}
}

func TestFindFilesHonorsGitignore(t *testing.T) {
	cfg := setupProject(t)
	writeFile(t, cfg.ProjectPath, ".gitignore", "drafts/\n")
	writeFile(t, cfg.ProjectPath, "drafts/wip.txt", "work in progress")

	ing, err := New(cfg)
	require.NoError(t, err)

	files, err := ing.FindFiles(false)
	require.NoError(t, err)
	for _, f := range files {
		assert.NotContains(t, f, "wip.txt")
	}
}

func TestIncrementalIndexing(t *testing.T) {
	cfg := setupProject(t)

	ing, err := New(cfg)
	require.NoError(t, err)

	files, err := ing.FindFiles(false)
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, f := range files {
		require.NoError(t, ing.RecordFile(f, 1))
	}
	require.NoError(t, ing.Save())

	// A fresh ingestor sees nothing to do.
	ing2, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, ing2.IndexedCount())

	files, err = ing2.FindFiles(false)
	require.NoError(t, err)
	assert.Empty(t, files)

	// Changing one file makes exactly that file show up again.
	changed := filepath.Join(cfg.ProjectPath, "notes.txt")
	require.NoError(t, os.WriteFile(changed, []byte("Loose notes, now edited."), 0o644))

	files, err = ing2.FindFiles(false)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, changed, files[0])

	// Force ignores the records entirely.
	files, err = ing2.FindFiles(true)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestForget(t *testing.T) {
	cfg := setupProject(t)

	ing, err := New(cfg)
	require.NoError(t, err)

	files, err := ing.FindFiles(false)
	require.NoError(t, err)
	for _, f := range files {
		require.NoError(t, ing.RecordFile(f, 2))
	}
	require.Equal(t, 3, ing.IndexedCount())

	ing.Forget()
	assert.Zero(t, ing.IndexedCount())

	files, err = ing.FindFiles(false)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestProcessFile(t *testing.T) {
	cfg := setupProject(t)

	ing, err := New(cfg)
	require.NoError(t, err)

	path := filepath.Join(cfg.ProjectPath, "01.Origination&Dev", "ACES", "summary.txt")
	docs, err := ing.ProcessFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	d := docs[0]
	assert.Equal(t, path, d.Metadata.Source)
	assert.Equal(t, "summary.txt", d.Metadata.FileName)
	assert.Equal(t, "txt", d.Metadata.FileType)
	assert.Equal(t, "01.Origination&Dev", d.Metadata.MainPhase)
	assert.Equal(t, "ACES", d.Metadata.ProjectCategory)
	assert.Equal(t, "Project Development and Origination Phase", d.Metadata.PhaseDescription)
	assert.Equal(t, 0, d.Metadata.ChunkIndex)
	assert.Equal(t, 1, d.Metadata.TotalChunks)
	assert.Empty(t, d.Embedding)

	// The folder context is prepended so it gets embedded with the content.
	assert.True(t, strings.HasPrefix(d.Content, "Document Context:\n"))
	assert.Contains(t, d.Content, "Project Phase: Project Development and Origination Phase")
	assert.Contains(t, d.Content, "File: summary.txt")
	assert.Contains(t, d.Content, "The project summary with enough text to chunk.")
}

func TestProcessFileChunksLargeDocuments(t *testing.T) {
	cfg := setupProject(t)
	cfg.ChunkSize = 200
	cfg.ChunkOverlap = 40

	big := strings.Repeat("A sentence about turbine layout and cabling. ", 50)
	writeFile(t, cfg.ProjectPath, "02.Execution/layout.txt", big)

	ing, err := New(cfg)
	require.NoError(t, err)

	docs, err := ing.ProcessFile(filepath.Join(cfg.ProjectPath, "02.Execution", "layout.txt"))
	require.NoError(t, err)
	require.Greater(t, len(docs), 1)

	for i, d := range docs {
		assert.Equal(t, i, d.Metadata.ChunkIndex)
		assert.Equal(t, len(docs), d.Metadata.TotalChunks)
	}
}

func TestProcessFileEmpty(t *testing.T) {
	cfg := setupProject(t)
	writeFile(t, cfg.ProjectPath, "empty.txt", "   \n  ")

	ing, err := New(cfg)
	require.NoError(t, err)

	_, err = ing.ProcessFile(filepath.Join(cfg.ProjectPath, "empty.txt"))
	assert.ErrorContains(t, err, "no extractable text")
}

func TestMetadataRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "metadata.json")

	meta, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Empty(t, meta)

	meta["/p/a.txt"] = Record{Hash: "abc", ChunkCount: 3, Language: "eng"}
	require.NoError(t, SaveMetadata(path, meta))

	loaded, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded["/p/a.txt"].Hash)
	assert.Equal(t, 3, loaded["/p/a.txt"].ChunkCount)
}
