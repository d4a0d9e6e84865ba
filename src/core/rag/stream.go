package rag

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v3"
)

// Stream is a finite, non-restartable sequence of generated tokens. The
// producer emits tokens as they arrive and finishes exactly once; the
// consumer ranges over Tokens and checks Err after the channel closes.
// Close abandons the stream early and releases the producer's underlying
// resource (connection, response body); it is safe to call more than once.
type Stream struct {
	tokens  chan string
	release func()

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

// NewStream creates a stream whose Close invokes release. Producers hand the
// cancel function of their request context here so consumer abandonment
// unwinds the open connection.
func NewStream(release func()) *Stream {
	return &Stream{
		tokens:  make(chan string, 16),
		release: release,
	}
}

// Tokens returns the token channel. It is closed when generation finishes,
// fails, or is abandoned.
func (s *Stream) Tokens() <-chan string { return s.tokens }

// Err reports the terminal state. Valid after Tokens is closed; nil means the
// sequence completed (possibly truncated by the model, which is tolerated).
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close abandons the stream and releases the underlying resource.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

// Emit pushes one token to the consumer. Producer side only. Returns false
// when the context is done, at which point the producer must stop.
func (s *Stream) Emit(ctx context.Context, token string) bool {
	select {
	case s.tokens <- token:
		return true
	case <-ctx.Done():
		return false
	}
}

// Finish closes the token channel, recording the terminal error if any.
// Producer side only; must be called exactly once.
func (s *Stream) Finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.tokens)
}

const embedMaxRetries = 2

// embedWithRetry calls the embedder, retrying transient network failures a
// bounded number of times with exponential backoff. Quota, auth and model
// failures surface immediately; retrying them will not help.
func embedWithRetry(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	var vector []float32
	op := func() error {
		v, err := embedder.Embed(ctx, text)
		if err != nil {
			if !IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		vector = v
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), embedMaxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return vector, nil
}
