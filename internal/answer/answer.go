// Package answer turns retrieved document chunks into a grounded answer
// with source citations.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/project-sage/sage/internal/llm"
	"github.com/project-sage/sage/internal/store"
)

// noContextAnswer is returned when retrieval finds nothing relevant.
const noContextAnswer = "I couldn't find any relevant information in the indexed documents to answer your question. Try rephrasing the question or indexing more documents."

// Result is a synthesized answer with its provenance.
type Result struct {
	Answer        string   `json:"answer"`
	Sources       []string `json:"sources"`
	DocumentsUsed int      `json:"documents_used"`

	// Failed is set when the chat model could not produce an answer. The
	// sources are still populated so the user can read them directly.
	Failed bool `json:"failed,omitempty"`
}

// Synthesizer generates answers from retrieved chunks.
type Synthesizer struct {
	client llm.Client
}

// New creates a synthesizer backed by the given chat client.
func New(client llm.Client) *Synthesizer {
	return &Synthesizer{client: client}
}

// Answer generates an answer to the question using the retrieved documents
// as context. A model failure does not return an error: the result carries
// Failed=true and the sources, so retrieval work is never thrown away.
func (s *Synthesizer) Answer(ctx context.Context, question string, docs []store.Document) Result {
	if len(docs) == 0 {
		return Result{Answer: noContextAnswer}
	}

	sources := collectSources(docs)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("Question: %s\n\n%s", question, buildContext(docs))},
	}

	text, err := s.client.Complete(ctx, messages, llm.DefaultCompletionOptions())
	if err != nil {
		log.Debug("Answer generation failed", "error", err)
		return Result{
			Answer:        fmt.Sprintf("The language model could not generate an answer: %v\n\nThe most relevant documents are listed below.", err),
			Sources:       sources,
			DocumentsUsed: len(docs),
			Failed:        true,
		}
	}

	return Result{
		Answer:        text,
		Sources:       sources,
		DocumentsUsed: len(docs),
	}
}

// collectSources deduplicates source paths, preserving retrieval order.
func collectSources(docs []store.Document) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, doc := range docs {
		src := doc.Metadata.Source
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources
}

// buildContext creates the context block from retrieved documents.
func buildContext(docs []store.Document) string {
	var sb strings.Builder

	sb.WriteString("Here is the relevant document context:\n\n")

	for i, doc := range docs {
		sb.WriteString(fmt.Sprintf("[Document %d - %s (chunk %d/%d)]\n",
			i+1, doc.Metadata.FileName, doc.Metadata.ChunkIndex+1, doc.Metadata.TotalChunks))
		sb.WriteString(doc.Content)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// System prompt for document Q&A.
const systemPrompt = `You are a helpful assistant that answers questions about a project's documents.

Your role is to:
1. Answer the user's question using ONLY the provided document context
2. Cite documents with [Document N] notation when referencing them
3. Answer in English, translating information from documents in other languages
4. Be concise but complete
5. If the context does not contain enough information to answer, say so plainly instead of guessing

Format your answer in markdown when appropriate.`
