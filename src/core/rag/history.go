package rag

import (
	"context"
	"sync"
)

// MemoryHistory is the default HistoryStore: process-scoped, per-session turn
// lists guarded by one lock.
type MemoryHistory struct {
	mu    sync.Mutex
	turns map[string][]Turn
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{turns: make(map[string][]Turn)}
}

func (h *MemoryHistory) Append(ctx context.Context, sessionID string, turn Turn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns[sessionID] = append(h.turns[sessionID], turn)
	return nil
}

func (h *MemoryHistory) Recent(ctx context.Context, sessionID string, n int) ([]Turn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := h.turns[sessionID]
	if n <= 0 || n >= len(turns) {
		n = len(turns)
	}
	out := make([]Turn, n)
	copy(out, turns[len(turns)-n:])
	return out, nil
}

func (h *MemoryHistory) Clear(ctx context.Context, sessionID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, sessionID)
	return nil
}
