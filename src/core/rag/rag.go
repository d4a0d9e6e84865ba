package rag

import (
	"context"
	"fmt"
	"time"
)

// Chunk is a contiguous span of a document's text, the atomic unit of
// retrieval. IDs are deterministic: "{filename}#{ordinal}".
type Chunk struct {
	ID       string `json:"id"`
	Document string `json:"document"`
	Ordinal  int    `json:"ordinal"`
	Text     string `json:"text"`
}

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// ChunkID derives the stable id for the ordinal-th chunk of a document.
// Re-ingesting the same filename produces the same ids, which is what makes
// ingestion idempotent.
func ChunkID(filename string, ordinal int) string {
	return fmt.Sprintf("%s#%d", filename, ordinal)
}

// Object is the persisted form of a chunk: its embedding plus payload.
type Object struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]interface{}
}

// Match is a raw nearest-neighbor result returned by a VectorStore.
type Match struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]interface{}
}

// Embedder turns text into a fixed-dimension vector. All vectors produced by
// one Embedder configuration must share the same dimension; mixing dimensions
// inside a collection is a configuration error surfaced by the store.
// Failures are reported as *EmbeddingError.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorStore is the persistence capability for chunk embeddings: a named
// collection of (id, vector, text, metadata) supporting batch upsert and
// k-nearest-neighbor queries.
//
// Writes and reads on the same collection may interleave without snapshot
// isolation: a query issued while an ingestion is mid-batch may or may not
// see the new chunks. That is acceptable for the local single-user scope.
type VectorStore interface {
	EnsureCollection(ctx context.Context, collection string, dimension int) error
	CollectionExists(ctx context.Context, collection string) (bool, error)
	DeleteCollection(ctx context.Context, collection string) error
	Upsert(ctx context.Context, collection string, objects []Object) error
	DeleteDocument(ctx context.Context, collection string, document string) error
	Query(ctx context.Context, collection string, vector []float32, k int) ([]Match, error)
}

// GenerateRequest carries one generation call: the assembled prompt plus the
// sampling parameters read from the session at call time.
type GenerateRequest struct {
	System string
	Prompt string
	Params SamplingParams
}

// Generator produces a streamed completion for a prompt. Failures before the
// stream starts are returned as *GenerationError; failures mid-stream are
// reported through Stream.Err after the token channel closes.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Stream, error)
}

// Turn is one utterance in the conversation history.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryStore keeps conversation turns per session. The default
// implementation is in-memory; a Redis-backed one lives in storage/redisctrl.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, turn Turn) error
	Recent(ctx context.Context, sessionID string, n int) ([]Turn, error)
	Clear(ctx context.Context, sessionID string) error
}

// RegisteredDocument is the durable record of one successful ingestion.
type RegisteredDocument struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	ChunkCount  int       `json:"chunk_count"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// DocumentRegistry records ingested documents beyond process memory. Optional.
type DocumentRegistry interface {
	Save(ctx context.Context, doc RegisteredDocument) error
	List(ctx context.Context) ([]RegisteredDocument, error)
}

// Archive keeps the original upload bytes for later reference. Optional.
type Archive interface {
	Put(ctx context.Context, filename string, data []byte) error
}

// Notifier announces ingestion completions to interested surfaces. Optional.
type Notifier interface {
	DocumentIngested(filename string, chunkCount int) error
}
