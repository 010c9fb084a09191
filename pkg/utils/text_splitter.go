package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"course-assistant-be/pkg/rag"
)

// DefaultSeparators go from the coarsest boundary to the finest. The empty
// separator splits on characters and must stay last.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// TextSplitter packs text into chunks of at most ChunkSize characters,
// preferring paragraph, line, sentence and word boundaries in that order.
// Consecutive chunks share up to ChunkOverlap characters.
type TextSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewTextSplitter(chunkSize, chunkOverlap int) (*TextSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", rag.ErrInvalidArgument, chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", rag.ErrInvalidArgument, chunkSize, chunkOverlap)
	}
	return &TextSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   DefaultSeparators,
	}, nil
}

// SplitText splits text into ordered, overlapping chunks.
func SplitText(text string, chunkSize int, overlap int) ([]string, error) {
	splitter, err := NewTextSplitter(chunkSize, overlap)
	if err != nil {
		return nil, err
	}
	return splitter.Split(text), nil
}

// Split is a pure function of its input; whitespace-only text yields no chunks.
func (s *TextSplitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	separators := s.Separators
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return s.split(text, separators)
}

func (s *TextSplitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var chunks []string
	var good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			chunks = append(chunks, s.merge(good)...)
			good = nil
		}
		if len(finer) == 0 {
			if trimmed := strings.TrimSpace(piece); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			continue
		}
		chunks = append(chunks, s.split(piece, finer)...)
	}
	if len(good) > 0 {
		chunks = append(chunks, s.merge(good)...)
	}
	return chunks
}

// merge packs pieces greedily. When the next piece does not fit, the current
// chunk is emitted and leading pieces are dropped until what remains fits in
// the overlap budget; the remainder opens the next chunk. The carried tail is
// also kept short enough that every chunk advances by at least
// ChunkSize-ChunkOverlap, so chunk boundaries cannot creep.
func (s *TextSplitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0
	stride := s.ChunkSize - s.ChunkOverlap

	for _, piece := range pieces {
		length := runeLen(piece)
		if total+length > s.ChunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			emitted := total
			for total > 0 && (total > s.ChunkOverlap || total+length > s.ChunkSize || emitted-total < stride) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += length
	}

	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeepingSeparator attaches each separator to the piece that follows it.
func splitKeepingSeparator(text, separator string) []string {
	if separator == "" {
		pieces := make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, separator)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = separator + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

// EstimateTokens approximates the token count as one token per four characters.
func EstimateTokens(text string) int {
	n := runeLen(text)
	return (n + 3) / 4
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
