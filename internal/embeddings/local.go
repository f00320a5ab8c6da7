package embeddings

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// localDimensions is the fixed dimensionality of the offline embedder. It
// must stay constant across sessions or existing collections become
// unsearchable.
const localDimensions = 512

// LocalService is a fully offline embedding backend: a hashed bag-of-words
// model. Each token is hashed into one of a fixed number of buckets and the
// resulting count vector is L2-normalized, so cosine distance over these
// vectors behaves like lexical term overlap.
//
// Quality is well below a learned model, but it needs no network access and
// no local model server, which makes it the fallback of last resort when
// Ollama is configured but unreachable.
type LocalService struct{}

// NewLocalService creates the offline embedding service.
func NewLocalService() *LocalService {
	return &LocalService{}
}

// Embed generates an embedding for document text.
func (s *LocalService) Embed(_ context.Context, text string) ([]float32, error) {
	return hashEmbed(text), nil
}

// EmbedQuery generates an embedding for query text. Documents and queries
// share the same space.
func (s *LocalService) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return hashEmbed(text), nil
}

// EmbedBatch generates embeddings for multiple document texts.
func (s *LocalService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashEmbed(text)
	}
	return out, nil
}

// Dimensions returns the embedding dimensions.
func (s *LocalService) Dimensions() int {
	return localDimensions
}

// Provider returns the provider name.
func (s *LocalService) Provider() Provider {
	return ProviderLocal
}

// ModelName returns the model name.
func (s *LocalService) ModelName() string {
	return "hashed-bow"
}

// hashEmbed tokenizes the text, hashes each token into a bucket, and
// L2-normalizes the bucket counts.
func hashEmbed(text string) []float32 {
	vec := make([]float32, localDimensions)

	for _, token := range tokenize(text) {
		bucket := xxhash.Sum64String(token) % localDimensions
		vec[bucket]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}

	return vec
}

// tokenize lowercases and splits on anything that is not a letter or digit,
// which keeps it script-agnostic.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
