package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const googleAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// Task types understood by the Gemini embedding API.
const (
	googleTaskDocument = "RETRIEVAL_DOCUMENT"
	googleTaskQuery    = "RETRIEVAL_QUERY"
)

// GoogleService implements the embedding service using the Gemini API.
type GoogleService struct {
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
}

type googleEmbedContent struct {
	Parts []googleEmbedPart `json:"parts"`
}

type googleEmbedPart struct {
	Text string `json:"text"`
}

type googleEmbedRequest struct {
	Model    string             `json:"model"`
	Content  googleEmbedContent `json:"content"`
	TaskType string             `json:"taskType,omitempty"`
}

type googleBatchEmbedRequest struct {
	Requests []googleEmbedRequest `json:"requests"`
}

type googleBatchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// NewGoogleService creates a new Gemini embedding service.
func NewGoogleService(apiKey, model string) (*GoogleService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Google API key is required")
	}

	dimensions := GetModelDimensions(model)
	if dimensions == 0 {
		dimensions = 768
		log.Debug("Unknown model dimensions, defaulting", "model", model, "dimensions", dimensions)
	}

	return &GoogleService{
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Embed generates an embedding for document text.
func (s *GoogleService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.embedTexts(ctx, []string{text}, googleTaskDocument)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedQuery generates an embedding for query text.
func (s *GoogleService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.embedTexts(ctx, []string{text}, googleTaskQuery)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple document texts.
func (s *GoogleService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return s.embedTexts(ctx, texts, googleTaskDocument)
}

// Dimensions returns the embedding dimensions.
func (s *GoogleService) Dimensions() int {
	return s.dimensions
}

// Provider returns the provider name.
func (s *GoogleService) Provider() Provider {
	return ProviderGoogle
}

// ModelName returns the model name.
func (s *GoogleService) ModelName() string {
	return s.model
}

// embedTexts performs the actual batch embedding request.
func (s *GoogleService) embedTexts(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	requests := make([]googleEmbedRequest, len(texts))
	for i, text := range texts {
		requests[i] = googleEmbedRequest{
			Model:    "models/" + s.model,
			Content:  googleEmbedContent{Parts: []googleEmbedPart{{Text: text}}},
			TaskType: taskType,
		}
	}

	jsonBody, err := json.Marshal(googleBatchEmbedRequest{Requests: requests})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", googleAPIBase, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug("Requesting embeddings from Google", "model", s.model, "count", len(texts))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google returned status %d: %s", resp.StatusCode, string(body))
	}

	var result googleBatchEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		embeddings[i] = e.Values
	}

	if len(embeddings) > 0 && len(embeddings[0]) > 0 {
		s.dimensions = len(embeddings[0])
	}

	return embeddings, nil
}
