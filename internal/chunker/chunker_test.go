package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	_, err := New(0, 0)
	assert.Error(t, err)

	_, err = New(100, 100)
	assert.ErrorIs(t, err, ErrBadOverlap)

	_, err = New(100, 150)
	assert.ErrorIs(t, err, ErrBadOverlap)

	_, err = New(100, -1)
	assert.ErrorIs(t, err, ErrBadOverlap)

	c, err := New(100, 20)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestSplitEmpty(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	assert.Nil(t, c.Split(""))
}

func TestSplitShortInput(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	text := "A short document that fits in one chunk."
	chunks := c.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitRespectsSize(t *testing.T) {
	c, err := New(80, 16)
	require.NoError(t, err)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 30)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 80, "chunk %d exceeds size", i)
		assert.NotEmpty(t, chunk)
	}
}

func TestSplitDeterministic(t *testing.T) {
	c, err := New(120, 30)
	require.NoError(t, err)

	text := strings.Repeat("Paragraph one about project financing.\n\nParagraph two about permits. ", 20)
	assert.Equal(t, c.Split(text), c.Split(text))
}

func TestSplitCoversInputWithoutOverlap(t *testing.T) {
	c, err := New(60, 0)
	require.NoError(t, err)

	text := strings.Repeat("Sentence one here. Sentence two here. ", 15)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	// With no overlap, concatenating the chunks reconstructs the input.
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitOverlapBound(t *testing.T) {
	c, err := New(60, 25)
	require.NoError(t, err)

	chunks := c.Split(numberedSentences(40))
	require.Greater(t, len(chunks), 2)

	for i := 0; i < len(chunks)-1; i++ {
		shared := sharedRegion(chunks[i], chunks[i+1])
		assert.LessOrEqual(t, utf8.RuneCountInString(shared), 25,
			"overlap between chunks %d and %d exceeds budget", i, i+1)
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	c, err := New(60, 30)
	require.NoError(t, err)

	chunks := c.Split(numberedSentences(40))
	require.Greater(t, len(chunks), 2)

	overlapping := 0
	for i := 0; i < len(chunks)-1; i++ {
		if sharedRegion(chunks[i], chunks[i+1]) != "" {
			overlapping++
		}
	}
	assert.Greater(t, overlapping, 0, "expected some chunks to share trailing context")
}

func TestSplitCJKSentences(t *testing.T) {
	c, err := New(20, 4)
	require.NoError(t, err)

	text := strings.Repeat("これは文章です。", 10)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 20)
	}
	// Sentence boundaries survive: chunks end on the CJK full stop.
	assert.True(t, strings.HasSuffix(chunks[0], "。"))
}

func TestSplitHardBreaksLongRuns(t *testing.T) {
	c, err := New(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("x", 500)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
	}
}

func TestSplitPiecesLargerThanOverlap(t *testing.T) {
	// When every split piece exceeds the overlap budget, no tail can be
	// carried between chunks: consecutive chunks are disjoint and their
	// concatenation reconstructs the input exactly.
	c, err := New(50, 10)
	require.NoError(t, err)

	var sb strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&sb, "Sentence number %d runs well past the overlap. ", i)
	}
	text := sb.String()

	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
	for i := 1; i < len(chunks); i++ {
		assert.Empty(t, sharedRegion(chunks[i-1], chunks[i]))
	}
}

// numberedSentences builds non-repeating prose so suffix/prefix comparisons
// can't match by accident.
func numberedSentences(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(fmt.Sprintf("Sentence %02d ends here. ", i))
	}
	return sb.String()
}

// sharedRegion returns the longest string that is both a suffix of a and a
// prefix of b.
func sharedRegion(a, b string) string {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(a, b[:k]) {
			return b[:k]
		}
	}
	return ""
}
