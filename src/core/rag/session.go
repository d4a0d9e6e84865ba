package rag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Compile-time sampling defaults. Reset always restores exactly these.
const (
	DefaultTemperature = 0.9
	DefaultTopP        = 0.9
	DefaultTopK        = 1
	DefaultMaxTokens   = 128
)

// SamplingParams are the generation controls forwarded on every query.
type SamplingParams struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
	MaxTokens   int     `json:"max_tokens"`
}

func DefaultSampling() SamplingParams {
	return SamplingParams{
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		TopK:        DefaultTopK,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Session is the per-conversation mutable state: sampling parameters plus the
// set of filenames ingested during this session. It is process-scoped and
// reinitialized on every session start; nothing here survives a restart.
//
// All methods take the internal lock, so a Session may be shared between the
// transport and the pipeline. Concurrent pipeline calls against one session
// are still a single-user assumption, not a supported mode.
type Session struct {
	ID string

	mu       sync.Mutex
	sampling SamplingParams
	files    map[string]struct{}
}

func NewSession() *Session {
	return &Session{
		ID:       uuid.NewString(),
		sampling: DefaultSampling(),
		files:    make(map[string]struct{}),
	}
}

// Sampling returns the current parameters. Callers read this fresh on every
// query so mid-conversation adjustments affect only subsequent calls.
func (s *Session) Sampling() SamplingParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampling
}

// Set applies one adjustment command. Out-of-range values are clamped rather
// than rejected; unknown fields are a ValidationError.
func (s *Session) Set(field string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case "temperature":
		s.sampling.Temperature = clamp01(value)
	case "top_p":
		s.sampling.TopP = clamp01(value)
	case "top_k":
		s.sampling.TopK = clampMin(int(value), 1)
	case "max_tokens":
		s.sampling.MaxTokens = clampMin(int(value), 1)
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("unknown setting %q", field)}
	}
	return nil
}

// Reset restores the compile-time defaults regardless of prior mutations.
// The ingested-file set is untouched; resetting settings does not forget
// documents.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampling = DefaultSampling()
}

// RegisterFile records a successfully ingested filename. Idempotent.
func (s *Session) RegisterFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = struct{}{}
}

// Files returns the ingested filenames in sorted order.
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearFiles forgets all registered filenames, used when the workspace
// collection is reset.
func (s *Session) ClearFiles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]struct{})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
