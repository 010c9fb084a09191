package llm

import (
	"errors"
	"io"
	"strings"
	"sync"
)

// staticStream replays pre-computed text word by word.
type staticStream struct {
	mu     sync.Mutex
	tokens []string
	closed bool
}

// NewStaticStream returns a TokenStream over already known text.
func NewStaticStream(text string) TokenStream {
	var tokens []string
	if text != "" {
		tokens = strings.SplitAfter(text, " ")
	}
	return &staticStream{tokens: tokens}
}

// NewReplayStream returns a TokenStream that yields the given deltas unchanged.
func NewReplayStream(deltas []string) TokenStream {
	return &staticStream{tokens: append([]string(nil), deltas...)}
}

func (s *staticStream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.tokens) == 0 {
		return "", io.EOF
	}
	tok := s.tokens[0]
	s.tokens = s.tokens[1:]
	return tok, nil
}

func (s *staticStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Collect drains a stream into a string and closes it.
func Collect(stream TokenStream) (string, error) {
	defer stream.Close()
	var b strings.Builder
	for {
		tok, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(tok)
	}
}
