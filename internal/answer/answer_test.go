package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-sage/sage/internal/llm"
	"github.com/project-sage/sage/internal/store"
)

// stubClient returns a fixed answer or error and records the prompt it saw.
type stubClient struct {
	response string
	err      error
	messages []llm.Message
}

func (s *stubClient) Complete(_ context.Context, messages []llm.Message, _ llm.CompletionOptions) (string, error) {
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubClient) Provider() llm.Provider { return "stub" }
func (s *stubClient) ModelName() string      { return "stub-model" }

func testDocs() []store.Document {
	return []store.Document{
		{
			Content: "The total contract value is $45,000,000 payable in milestones.",
			Metadata: store.Metadata{
				Source:      "/p/01.Origination&Dev/Contracts/epc.pdf",
				FileName:    "epc.pdf",
				ChunkIndex:  2,
				TotalChunks: 10,
			},
		},
		{
			Content: "Milestone one covers site preparation.",
			Metadata: store.Metadata{
				Source:      "/p/01.Origination&Dev/Contracts/epc.pdf",
				FileName:    "epc.pdf",
				ChunkIndex:  3,
				TotalChunks: 10,
			},
		},
		{
			Content: "The grid connection fee is separate.",
			Metadata: store.Metadata{
				Source:      "/p/01.Origination&Dev/Grid/connection.pdf",
				FileName:    "connection.pdf",
				ChunkIndex:  0,
				TotalChunks: 4,
			},
		},
	}
}

func TestAnswerWithContext(t *testing.T) {
	client := &stubClient{response: "The total contract value is $45,000,000 [Document 1]."}
	s := New(client)

	result := s.Answer(context.Background(), "What is the total contract value?", testDocs())

	assert.False(t, result.Failed)
	assert.Contains(t, result.Answer, "$45,000,000")
	assert.Equal(t, 3, result.DocumentsUsed)

	// Sources deduplicate by file, in retrieval order.
	assert.Equal(t, []string{
		"/p/01.Origination&Dev/Contracts/epc.pdf",
		"/p/01.Origination&Dev/Grid/connection.pdf",
	}, result.Sources)
}

func TestAnswerPromptContainsContext(t *testing.T) {
	client := &stubClient{response: "ok"}
	s := New(client)

	s.Answer(context.Background(), "What is the fee?", testDocs())

	require.Len(t, client.messages, 2)
	assert.Equal(t, "system", client.messages[0].Role)
	assert.Equal(t, "user", client.messages[1].Role)

	user := client.messages[1].Content
	assert.Contains(t, user, "Question: What is the fee?")
	assert.Contains(t, user, "[Document 1 - epc.pdf (chunk 3/10)]")
	assert.Contains(t, user, "[Document 3 - connection.pdf (chunk 1/4)]")
	assert.Contains(t, user, "The grid connection fee is separate.")
}

func TestAnswerNoDocuments(t *testing.T) {
	client := &stubClient{response: "should not be called"}
	s := New(client)

	result := s.Answer(context.Background(), "anything", nil)

	assert.Contains(t, result.Answer, "couldn't find any relevant information")
	assert.Empty(t, result.Sources)
	assert.Zero(t, result.DocumentsUsed)
	assert.Nil(t, client.messages, "the model must not be called without context")
}

func TestAnswerModelFailureKeepsSources(t *testing.T) {
	client := &stubClient{err: errors.New("rate limited")}
	s := New(client)

	result := s.Answer(context.Background(), "question", testDocs())

	assert.True(t, result.Failed)
	assert.Contains(t, result.Answer, "rate limited")
	assert.NotEmpty(t, result.Sources)
	assert.Equal(t, 3, result.DocumentsUsed)
}
