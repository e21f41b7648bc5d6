package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortText(t *testing.T) {
	s := NewSplitter(500)
	chunks := s.Split("p1", "A small wooden train.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A small wooden train.", chunks[0].Content)
	assert.Equal(t, "p1", chunks[0].ProductID)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(500)
	assert.Empty(t, s.Split("p1", ""))
	assert.Empty(t, s.Split("p1", "   \n  "))
}

func TestSplitRespectsMaxLen(t *testing.T) {
	s := NewSplitter(40)
	text := strings.Repeat("The quick brown fox jumps over the dog. ", 20)
	chunks := s.Split("p1", text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), 40)
		assert.NotEmpty(t, c.Content)
	}
}

func TestSplitPrefersSentenceBreak(t *testing.T) {
	s := NewSplitter(50)
	text := "First sentence here. Second sentence that is a bit longer and spills over."
	chunks := s.Split("p1", text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "First sentence here.", chunks[0].Content)
}

func TestSplitFallsBackToNewline(t *testing.T) {
	s := NewSplitter(30)
	text := "no terminator on this line\nbut a newline splits it anyway"
	chunks := s.Split("p1", text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "no terminator on this line", chunks[0].Content)
}

func TestSplitHardCutWithoutSeparators(t *testing.T) {
	s := NewSplitter(10)
	text := strings.Repeat("x", 25)
	chunks := s.Split("p1", text)
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("x", 10), chunks[0].Content)
	assert.Equal(t, strings.Repeat("x", 5), chunks[2].Content)
}

// Concatenating all chunks reconstructs the source text modulo separator
// and whitespace characters.
func TestSplitReconstruction(t *testing.T) {
	s := NewSplitter(60)
	text := "A cat sat on a mat. It was happy.\nIt purred all day long. Then it slept soundly through the night."
	chunks := s.Split("p1", text)
	require.NotEmpty(t, chunks)

	strip := func(v string) string {
		return strings.Map(func(r rune) rune {
			switch r {
			case '.', '\n', ' ':
				return -1
			}
			return r
		}, v)
	}
	var b strings.Builder
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		b.WriteString(c.Content)
	}
	assert.Equal(t, strip(text), strip(b.String()))
}

func TestSplitOrderIsStable(t *testing.T) {
	s := NewSplitter(25)
	text := "one fish. two fish. red fish. blue fish."
	chunks := s.Split("p1", text)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.NotEqual(t, "", c.ID.String())
	}
}
