// Package chunker splits raw document text into overlapping segments while
// preserving semantic boundaries.
package chunker

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrBadOverlap is returned when the configured overlap is not smaller than
// the chunk size.
var ErrBadOverlap = errors.New("chunk overlap must be smaller than chunk size")

// defaultSeparators is the separator priority order: paragraph break, line
// break, sentence-ending punctuation (Latin and CJK), space, hard break.
var defaultSeparators = []string{
	"\n\n",
	"\n",
	". ",
	"。",
	"．",
	"! ",
	"? ",
	"！",
	"？",
	" ",
	"",
}

// Chunker splits text into chunks of at most Size runes with Overlap runes of
// trailing context shared between consecutive chunks.
type Chunker struct {
	size       int
	overlap    int
	separators []string
}

// New creates a Chunker. Overlap must be non-negative and strictly smaller
// than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, errors.New("chunk size must be positive")
	}
	if overlap < 0 || overlap >= size {
		return nil, ErrBadOverlap
	}
	return &Chunker{
		size:       size,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// Split splits text into chunks. The result is deterministic for a fixed
// input and configuration. Empty input yields no chunks; input within the
// chunk size yields a single chunk.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= c.size {
		return []string{text}
	}

	pieces := c.split(text, c.separators)
	return c.merge(pieces)
}

// split recursively breaks text on the first separator that appears, falling
// through the priority list for pieces that are still too large. Separators
// stay attached to the preceding piece so that concatenating all pieces
// reconstructs the input exactly.
func (c *Chunker) split(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= c.size {
		return []string{text}
	}
	if len(separators) == 0 {
		return []string{text}
	}

	sep := separators[0]
	rest := separators[1:]

	if sep == "" {
		return hardSplit(text, c.size)
	}

	parts := splitAfter(text, sep)
	if len(parts) == 1 {
		return c.split(text, rest)
	}

	var out []string
	for _, part := range parts {
		if utf8.RuneCountInString(part) > c.size {
			out = append(out, c.split(part, rest)...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// merge greedily joins pieces into chunks of at most size runes, carrying a
// tail of up to overlap runes of pieces into the next chunk.
func (c *Chunker) merge(pieces []string) []string {
	var chunks []string
	var current []string
	currentLen := 0

	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)

		if currentLen+pieceLen > c.size && currentLen > 0 {
			chunks = append(chunks, strings.Join(current, ""))

			// Drop leading pieces until the retained tail fits both the
			// overlap budget and the new piece.
			for currentLen > c.overlap || (currentLen+pieceLen > c.size && currentLen > 0) {
				currentLen -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}

		current = append(current, piece)
		currentLen += pieceLen
	}

	if currentLen > 0 {
		chunks = append(chunks, strings.Join(current, ""))
	}

	return chunks
}

// splitAfter splits text after every occurrence of sep, keeping sep attached
// to the preceding piece.
func splitAfter(text, sep string) []string {
	raw := strings.SplitAfter(text, sep)

	// SplitAfter can produce a trailing empty string when the text ends with
	// the separator.
	out := raw[:0]
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// hardSplit breaks text into windows of at most size runes.
func hardSplit(text string, size int) []string {
	var out []string
	runes := []rune(text)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
