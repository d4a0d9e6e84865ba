package rag

import (
	"context"
	"strings"
	"sync"
	"time"

	"ragchat/src/log"
)

// PipelineConfig controls the read path.
type PipelineConfig struct {
	// RetrieveK is how many chunks are fetched for prompt context.
	RetrieveK int
	// HistoryTurns bounds the recent conversation included in prompts.
	HistoryTurns int
}

// Pipeline orchestrates one query: retrieve, assemble, generate, stream.
type Pipeline struct {
	retriever *Retriever
	builder   *PromptBuilder
	generator Generator
	history   HistoryStore
	cfg       PipelineConfig
}

func NewPipeline(retriever *Retriever, builder *PromptBuilder, generator Generator, history HistoryStore, cfg PipelineConfig) *Pipeline {
	if cfg.RetrieveK <= 0 {
		cfg.RetrieveK = 5
	}
	return &Pipeline{
		retriever: retriever,
		builder:   builder,
		generator: generator,
		history:   history,
		cfg:       cfg,
	}
}

// Answer is a streamed reply plus the chunks it was grounded on. Consumers
// range over Tokens, then check Err for the terminal state; Close abandons
// the answer early and releases the generation stream.
type Answer struct {
	Sources []ScoredChunk

	tokens chan string
	stream *Stream
	closed chan struct{}

	mu         sync.Mutex
	err        error
	closeOnce  sync.Once
	finishOnce sync.Once
}

func (a *Answer) Tokens() <-chan string { return a.tokens }

func (a *Answer) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Answer) Close() {
	a.closeOnce.Do(func() {
		close(a.closed)
		a.stream.Close()
	})
}

func (a *Answer) finish(err error) {
	a.finishOnce.Do(func() {
		a.mu.Lock()
		a.err = err
		a.mu.Unlock()
		close(a.tokens)
	})
}

// Ask runs one query against the session's current settings. Sampling
// parameters are read from the session at call time, never cached, so an
// adjustment between queries takes effect on the next one. Errors before
// generation starts are returned directly; failures mid-stream surface
// through Answer.Err after the token channel closes.
func (p *Pipeline) Ask(ctx context.Context, session *Session, query string) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Field: "query", Message: "must not be empty"}
	}

	params := session.Sampling()

	results, err := p.retriever.Retrieve(ctx, query, p.cfg.RetrieveK)
	if err != nil {
		return nil, err
	}

	turns, err := p.history.Recent(ctx, session.ID, p.cfg.HistoryTurns)
	if err != nil {
		// Losing history degrades the prompt, it does not fail the query.
		log.Error(err, "failed to load conversation history", "session", session.ID)
		turns = nil
	}

	prompt := p.builder.Build(query, results, turns)

	stream, err := p.generator.Generate(ctx, GenerateRequest{
		System: prompt.System,
		Prompt: prompt.User,
		Params: params,
	})
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Sources: results,
		tokens:  make(chan string),
		stream:  stream,
		closed:  make(chan struct{}),
	}
	go p.forward(ctx, session, query, answer)
	return answer, nil
}

// forward relays tokens from the generator to the consumer one at a time,
// never buffering the full reply. A completed answer is appended to history;
// an abandoned or failed one is not.
func (p *Pipeline) forward(ctx context.Context, session *Session, query string, answer *Answer) {
	defer answer.stream.Close()

	var reply strings.Builder
	for token := range answer.stream.Tokens() {
		reply.WriteString(token)
		select {
		case answer.tokens <- token:
		case <-answer.closed:
			answer.finish(nil)
			return
		case <-ctx.Done():
			answer.finish(ctx.Err())
			return
		}
	}

	err := answer.stream.Err()
	if err == nil && !answer.abandoned(ctx) {
		p.record(ctx, session.ID, query, reply.String())
	}
	answer.finish(err)
}

// abandoned reports whether the consumer walked away. Closing an answer
// cancels the generation, which can end the stream cleanly after the last
// delivered token; that interleaving is still an abandonment, not a
// completed exchange.
func (a *Answer) abandoned(ctx context.Context) bool {
	select {
	case <-a.closed:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (p *Pipeline) record(ctx context.Context, sessionID, query, reply string) {
	now := time.Now().UTC()
	if err := p.history.Append(ctx, sessionID, Turn{Role: RoleUser, Content: query, At: now}); err != nil {
		log.Error(err, "failed to record user turn", "session", sessionID)
		return
	}
	if err := p.history.Append(ctx, sessionID, Turn{Role: RoleAssistant, Content: reply, At: now}); err != nil {
		log.Error(err, "failed to record assistant turn", "session", sessionID)
	}
}
