package rag

import (
	"github.com/tmc/langchaingo/textsplitter"
)

// Splitter cuts extracted document text into spans for embedding.
type Splitter interface {
	Split(text string) ([]string, error)
}

// WindowSplitter produces fixed-size overlapping windows over runes. Span i
// starts at i*(size-overlap); a span is produced for every start inside the
// text, so the final span may be shorter than size. Boundaries depend only on
// (text, size, overlap), which is what makes re-ingestion detection work.
type WindowSplitter struct {
	size    int
	overlap int
}

func NewWindowSplitter(size, overlap int) (*WindowSplitter, error) {
	if size <= 0 {
		return nil, &ValidationError{Field: "chunk_size", Message: "must be positive"}
	}
	if overlap < 0 || overlap >= size {
		return nil, &ValidationError{Field: "chunk_overlap", Message: "must be in [0, chunk_size)"}
	}
	return &WindowSplitter{size: size, overlap: overlap}, nil
}

func (s *WindowSplitter) Split(text string) ([]string, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}
	step := s.size - s.overlap
	spans := make([]string, 0, (len(runes)+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, string(runes[start:end]))
	}
	return spans, nil
}

// RecursiveSplitter delegates to langchaingo's recursive character splitter,
// which prefers paragraph and sentence boundaries. Selectable by config for
// prose-heavy documents; boundaries are still deterministic for a given text
// but do not follow the fixed-window stride.
type RecursiveSplitter struct {
	inner textsplitter.RecursiveCharacter
}

func NewRecursiveSplitter(size, overlap int) (*RecursiveSplitter, error) {
	if size <= 0 {
		return nil, &ValidationError{Field: "chunk_size", Message: "must be positive"}
	}
	if overlap < 0 || overlap >= size {
		return nil, &ValidationError{Field: "chunk_overlap", Message: "must be in [0, chunk_size)"}
	}
	return &RecursiveSplitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		),
	}, nil
}

func (s *RecursiveSplitter) Split(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	return s.inner.SplitText(text)
}

// BuildChunks assigns deterministic ids to the ordered spans of one document.
func BuildChunks(filename string, spans []string) []Chunk {
	chunks := make([]Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = Chunk{
			ID:       ChunkID(filename, i),
			Document: filename,
			Ordinal:  i,
			Text:     span,
		}
	}
	return chunks
}
