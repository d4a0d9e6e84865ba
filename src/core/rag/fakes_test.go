package rag_test

import (
	"context"
	"sync"

	"ragchat/src/core/rag"
)

// fakeEmbedder produces deterministic vectors and can be told to fail on a
// specific call, which is how the atomicity tests simulate a provider outage
// partway through a document.
type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	failOn int // 1-based call index at which Embed starts failing; 0 disables
	failAs error
	vecFn  func(text string) []float32
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{}
}

func (f *fakeEmbedder) Dimension() int { return 3 }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn > 0 && f.calls >= f.failOn {
		return nil, f.failAs
	}
	if f.vecFn != nil {
		return f.vecFn(text), nil
	}
	// Cheap deterministic spread over three axes.
	var sum int
	for _, r := range text {
		sum += int(r)
	}
	return []float32{float32(sum % 97), float32(sum % 89), float32(sum % 83)}, nil
}

// fakeGenerator streams a scripted token sequence. Abandonment cancels its
// context the same way the real client does, so Emit unblocks and the
// producer goroutine exits.
type fakeGenerator struct {
	tokens    []string
	streamErr error // terminal stream error after the scripted tokens
	genErr    error // returned by Generate before any stream exists
	holdOpen  bool  // keep the stream open after the scripted tokens until cancelled

	mu       sync.Mutex
	lastReq  rag.GenerateRequest
	released chan struct{}
}

func newFakeGenerator(tokens ...string) *fakeGenerator {
	return &fakeGenerator{tokens: tokens, released: make(chan struct{})}
}

func (g *fakeGenerator) LastRequest() rag.GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastReq
}

func (g *fakeGenerator) Generate(ctx context.Context, req rag.GenerateRequest) (*rag.Stream, error) {
	g.mu.Lock()
	g.lastReq = req
	g.mu.Unlock()

	if g.genErr != nil {
		return nil, g.genErr
	}

	ctx, cancel := context.WithCancel(ctx)
	released := g.released
	stream := rag.NewStream(func() {
		cancel()
		select {
		case <-released:
		default:
			close(released)
		}
	})

	go func() {
		for _, token := range g.tokens {
			if !stream.Emit(ctx, token) {
				stream.Finish(nil)
				return
			}
		}
		if g.holdOpen {
			// Like a live connection: no more tokens arrive, and
			// cancellation ends the stream without an error.
			<-ctx.Done()
			stream.Finish(nil)
			return
		}
		stream.Finish(g.streamErr)
	}()
	return stream, nil
}

// recordingNotifier captures ingestion notifications.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	counts []int
}

func (n *recordingNotifier) DocumentIngested(filename string, chunkCount int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, filename)
	n.counts = append(n.counts, chunkCount)
	return nil
}
