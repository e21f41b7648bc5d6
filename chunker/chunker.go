package chunker

import (
	"strings"

	"retailrag/types"

	"github.com/google/uuid"
)

const DefaultMaxLen = 500

// Splitter cuts long product descriptions into bounded chunks, preferring
// to break at a sentence terminator, then at a newline, before falling
// back to a hard cut at the length boundary. No overlap between chunks.
type Splitter struct {
	maxLen     int
	separators []string
}

func NewSplitter(maxLen int) *Splitter {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Splitter{
		maxLen:     maxLen,
		separators: []string{".", "\n"},
	}
}

// Split produces ordered chunks for one product. Whitespace-only input
// yields no chunks; rows with empty descriptions are excluded upstream
// by the dataset loader.
func (s *Splitter) Split(productID, text string) []types.Chunk {
	var chunks []types.Chunk
	rest := []rune(text)
	idx := 0
	for len(rest) > 0 {
		seg, rem := s.cut(rest)
		rest = rem
		content := strings.TrimSpace(string(seg))
		if content == "" {
			continue
		}
		chunks = append(chunks, types.Chunk{
			ID:        uuid.New(),
			ProductID: productID,
			Index:     idx,
			Content:   content,
		})
		idx++
	}
	return chunks
}

// cut takes the next segment off the front of text. Lengths are measured
// in runes so a hard cut never lands inside a multibyte character.
func (s *Splitter) cut(text []rune) ([]rune, []rune) {
	if len(text) <= s.maxLen {
		return text, nil
	}
	window := string(text[:s.maxLen])
	for _, sep := range s.separators {
		if i := strings.LastIndex(window, sep); i >= 0 {
			at := len([]rune(window[:i])) + len([]rune(sep))
			return text[:at], text[at:]
		}
	}
	return text[:s.maxLen], text[s.maxLen:]
}
