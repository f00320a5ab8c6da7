package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-sage/sage/internal/config"
)

func TestGetModelDimensions(t *testing.T) {
	assert.Equal(t, 768, GetModelDimensions("text-embedding-004"))
	assert.Equal(t, 1536, GetModelDimensions("text-embedding-3-small"))
	assert.Equal(t, 768, GetModelDimensions("nomic-embed-text"))
	assert.Equal(t, 0, GetModelDimensions("unknown-model"))
}

func TestResolveGoogleRequiresKey(t *testing.T) {
	cfg := config.Default("/p")
	cfg.Provider = "google"

	_, err := Resolve(cfg)
	assert.ErrorContains(t, err, "Google API key")

	cfg.GoogleAPIKey = "key"
	svc, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, svc.Provider())
	assert.Equal(t, "text-embedding-004", svc.ModelName())
}

func TestResolveOpenAIRequiresKey(t *testing.T) {
	cfg := config.Default("/p")
	cfg.Provider = "openai"

	_, err := Resolve(cfg)
	assert.ErrorContains(t, err, "OpenAI API key")

	cfg.OpenAIAPIKey = "key"
	svc, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, svc.Provider())
	assert.Equal(t, "text-embedding-3-small", svc.ModelName())
}

func TestResolveAnthropicBorrowsOpenAI(t *testing.T) {
	cfg := config.Default("/p")
	cfg.Provider = "anthropic"
	cfg.AnthropicAPIKey = "ant-key"

	// Anthropic has no embedding API; without an OpenAI key there is no
	// usable backend.
	_, err := Resolve(cfg)
	assert.ErrorContains(t, err, "no native embeddings")

	cfg.OpenAIAPIKey = "oa-key"
	svc, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, svc.Provider())
}

func TestResolveOllamaFallsBackToLocal(t *testing.T) {
	cfg := config.Default("/p")
	cfg.Provider = "ollama"
	// Nothing listens here.
	cfg.OllamaURL = "http://127.0.0.1:1"

	svc, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, svc.Provider())
}

func TestResolveOllamaWhenReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/version" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	cfg := config.Default("/p")
	cfg.Provider = "ollama"
	cfg.OllamaURL = server.URL

	svc, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, svc.Provider())
	assert.Equal(t, "nomic-embed-text", svc.ModelName())
}

func TestResolveEmbeddingProviderOverride(t *testing.T) {
	cfg := config.Default("/p")
	cfg.Provider = "anthropic"
	cfg.EmbeddingProvider = "local"

	svc, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, svc.Provider())
}

func TestResolveUnknownProvider(t *testing.T) {
	cfg := config.Default("/p")
	cfg.Provider = "frontier"

	_, err := Resolve(cfg)
	assert.ErrorContains(t, err, "unsupported embedding provider")
}

func TestOllamaEmbedAppliesTaskPrefixes(t *testing.T) {
	var gotInputs [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotInputs = append(gotInputs, req.Input)

		resp := ollamaEmbedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i := range resp.Embeddings {
			resp.Embeddings[i] = []float32{0.1, 0.2, 0.3}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	svc, err := NewOllamaService(server.URL, "nomic-embed-text")
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.Embed(ctx, "document body")
	require.NoError(t, err)
	_, err = svc.EmbedQuery(ctx, "user question")
	require.NoError(t, err)

	require.Len(t, gotInputs, 2)
	assert.True(t, strings.HasPrefix(gotInputs[0][0], "search_document: "))
	assert.True(t, strings.HasPrefix(gotInputs[1][0], "search_query: "))
}

func TestOllamaEmbedBatchAndDimensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := ollamaEmbedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i := range resp.Embeddings {
			resp.Embeddings[i] = []float32{1, 2, 3, 4}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	svc, err := NewOllamaService(server.URL, "custom-model")
	require.NoError(t, err)
	// Unknown models start with the default guess.
	assert.Equal(t, 768, svc.Dimensions())

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)

	// Dimensions self-correct from the first response.
	assert.Equal(t, 4, svc.Dimensions())
}

func TestOllamaEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc, err := NewOllamaService(server.URL, "missing")
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "text")
	assert.ErrorContains(t, err, "status 404")
}
