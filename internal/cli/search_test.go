package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateContent(t *testing.T) {
	assert.Equal(t, "short", truncateContent("  short  ", 10))

	long := strings.Repeat("abcde ", 20)
	got := truncateContent(long, 30)
	assert.Equal(t, strings.TrimSpace(long)[:30]+"...", got)

	// Multi-byte content must be cut on a rune boundary, never mid-sequence.
	cjk := strings.Repeat("風力発電所の概要。", 20)
	got = truncateContent(cjk, 30)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("風力発電所の概要。", 3)+"風力発"+"...", got)

	viet := strings.Repeat("hợp đồng đấu nối lưới điện ", 30)
	got = truncateContent(viet, 50)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 50, utf8.RuneCountInString(strings.TrimSuffix(got, "...")))
}
