package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUnconfigured(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	cfg := Default(dir)
	cfg.Provider = "anthropic"
	cfg.Model = "claude-sonnet-4-5"
	cfg.AnthropicAPIKey = "sk-ant-test"
	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", loaded.Provider)
	assert.Equal(t, "claude-sonnet-4-5", loaded.Model)
	assert.Equal(t, "sk-ant-test", loaded.AnthropicAPIKey)
	assert.Equal(t, DefaultChunkSize, loaded.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, loaded.ChunkOverlap)
}

func TestSavePermissionsAndGitignore(t *testing.T) {
	dir := t.TempDir()

	cfg := Default(dir)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(content), StateDirName+"/")

	// Saving again must not duplicate the entry.
	require.NoError(t, cfg.Save())
	content, err = os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), StateDirName+"/"))
}

func TestGitignoreAppendsToExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("node_modules/\n"), 0o644))

	cfg := Default(dir)
	require.NoError(t, cfg.Save())

	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "node_modules/")
	assert.Contains(t, string(content), StateDirName+"/")
}

func TestLegacyProviderFallback(t *testing.T) {
	cfg := Default("/p")
	cfg.Provider = "google"
	cfg.Model = "gemini-1.5-flash"

	p, m := cfg.IndexProviderModel()
	assert.Equal(t, "google", p)
	assert.Equal(t, "gemini-1.5-flash", m)

	p, m = cfg.ChatProviderModel()
	assert.Equal(t, "google", p)
	assert.Equal(t, "gemini-1.5-flash", m)

	// Dedicated pairs take precedence once set.
	cfg.ChatProvider = "anthropic"
	cfg.ChatModel = "claude-sonnet-4-5"
	p, m = cfg.ChatProviderModel()
	assert.Equal(t, "anthropic", p)
	assert.Equal(t, "claude-sonnet-4-5", m)

	// The index pair still falls back to the legacy pair.
	p, m = cfg.IndexProviderModel()
	assert.Equal(t, "google", p)
	assert.Equal(t, "gemini-1.5-flash", m)
}

func TestKeyFor(t *testing.T) {
	cfg := Default("/p")
	cfg.GoogleAPIKey = "g-key"
	cfg.Provider = "openai"
	cfg.APIKey = "legacy-key"

	assert.Equal(t, "g-key", cfg.KeyFor("google"))
	// The legacy key applies only to the legacy provider.
	assert.Equal(t, "legacy-key", cfg.KeyFor("openai"))
	assert.Empty(t, cfg.KeyFor("anthropic"))
	assert.Empty(t, cfg.KeyFor("ollama"))

	// A dedicated key wins over the legacy key.
	cfg.OpenAIAPIKey = "dedicated"
	assert.Equal(t, "dedicated", cfg.KeyFor("openai"))
}

func TestAPIKeysFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Default(dir).Save())

	t.Setenv("GOOGLE_API_KEY", "env-google")
	t.Setenv("OPENAI_API_KEY", "env-openai")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-google", cfg.GoogleAPIKey)
	assert.Equal(t, "env-openai", cfg.OpenAIAPIKey)
}

func TestStatePaths(t *testing.T) {
	cfg := Default("/p")

	assert.Equal(t, filepath.Join("/p", StateDirName), cfg.StateDir())
	assert.Equal(t, filepath.Join("/p", StateDirName, DBFileName), cfg.DBPath())
	assert.Equal(t, filepath.Join("/p", StateDirName, MetadataFileName), cfg.MetadataPath())
}
