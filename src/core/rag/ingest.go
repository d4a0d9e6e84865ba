package rag

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	"ragchat/src/log"
)

// IngestConfig controls chunking and persistence for one workspace.
type IngestConfig struct {
	Collection string
	ChunkSize  int
	Overlap    int
	// Strategy selects the splitter: "window" (default, deterministic
	// fixed-window ids) or "recursive" (langchaingo, boundary-aware).
	Strategy string
	// MinChunkRunes drops spans shorter than this before persisting.
	// 0 disables the filter.
	MinChunkRunes int
}

// Ingestor drives the write path: validate, extract, chunk, embed, persist.
// Archive, registry and notifier are optional; a nil value disables that
// concern.
type Ingestor struct {
	embedder Embedder
	store    VectorStore
	session  *Session
	cfg      IngestConfig
	splitter Splitter

	archive  Archive
	registry DocumentRegistry
	notifier Notifier
	node     *snowflake.Node
}

func NewIngestor(embedder Embedder, store VectorStore, session *Session, cfg IngestConfig) (*Ingestor, error) {
	var (
		splitter Splitter
		err      error
	)
	switch cfg.Strategy {
	case "", "window":
		splitter, err = NewWindowSplitter(cfg.ChunkSize, cfg.Overlap)
	case "recursive":
		splitter, err = NewRecursiveSplitter(cfg.ChunkSize, cfg.Overlap)
	default:
		return nil, &ValidationError{Field: "strategy", Message: "must be \"window\" or \"recursive\""}
	}
	if err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	return &Ingestor{
		embedder: embedder,
		store:    store,
		session:  session,
		cfg:      cfg,
		splitter: splitter,
		node:     node,
	}, nil
}

// WithArchive keeps the original upload bytes in the given archive.
func (s *Ingestor) WithArchive(a Archive) *Ingestor { s.archive = a; return s }

// WithRegistry records successful ingestions durably.
func (s *Ingestor) WithRegistry(r DocumentRegistry) *Ingestor { s.registry = r; return s }

// WithNotifier publishes an event after each successful ingestion.
func (s *Ingestor) WithNotifier(n Notifier) *Ingestor { s.notifier = n; return s }

// Ingest processes one uploaded file and returns the number of chunks
// persisted. The vector write is a single batch after every chunk has been
// embedded, so an embedding failure leaves nothing of the document behind:
// atomicity holds at document granularity. Re-ingesting a filename replaces
// its previous chunks instead of duplicating them.
func (s *Ingestor) Ingest(ctx context.Context, filename string, data []byte) (int, error) {
	contentType, err := DetectFormat(filename)
	if err != nil {
		return 0, err
	}

	text, err := ExtractText(filename, data)
	if err != nil {
		return 0, err
	}

	spans, err := s.splitter.Split(text)
	if err != nil {
		return 0, err
	}
	spans = dropShortSpans(spans, s.cfg.MinChunkRunes)
	if len(spans) == 0 {
		return 0, &ExtractionError{Filename: filename, Err: ErrNoText}
	}

	if err := s.store.EnsureCollection(ctx, s.cfg.Collection, s.embedder.Dimension()); err != nil {
		return 0, err
	}

	// Embed everything before touching the store. A quota or auth failure
	// on chunk N must not leave chunks 0..N-1 persisted.
	chunks := BuildChunks(filename, spans)
	objects := make([]Object, len(chunks))
	for i, chunk := range chunks {
		vector, err := embedWithRetry(ctx, s.embedder, chunk.Text)
		if err != nil {
			return 0, err
		}
		objects[i] = Object{
			ID:     chunk.ID,
			Vector: vector,
			Text:   chunk.Text,
			Metadata: map[string]interface{}{
				"document": chunk.Document,
				"ordinal":  chunk.Ordinal,
			},
		}
	}

	// Replace any prior version of this document, then write the new chunks
	// in one batch keyed by their deterministic ids. The delete and the
	// upsert are two store calls, not one transaction: a store failure
	// between them loses the prior version. Atomicity is guaranteed against
	// embedding failures (nothing has been written yet), not against the
	// store failing mid-replacement.
	if err := s.store.DeleteDocument(ctx, s.cfg.Collection, filename); err != nil {
		return 0, err
	}
	if err := s.store.Upsert(ctx, s.cfg.Collection, objects); err != nil {
		return 0, err
	}

	s.session.RegisterFile(filename)

	// Best-effort side channels: the chunks are already durable, so archive,
	// registry and notification failures are logged, not surfaced.
	if s.archive != nil {
		if err := s.archive.Put(ctx, filename, data); err != nil {
			log.Error(err, "failed to archive upload", "filename", filename)
		}
	}
	if s.registry != nil {
		doc := RegisteredDocument{
			ID:          s.node.Generate().Int64(),
			Filename:    filename,
			ContentType: contentType,
			ChunkCount:  len(objects),
			IngestedAt:  time.Now().UTC(),
		}
		if err := s.registry.Save(ctx, doc); err != nil {
			log.Error(err, "failed to record ingested document", "filename", filename)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.DocumentIngested(filename, len(objects)); err != nil {
			log.Error(err, "failed to publish ingestion event", "filename", filename)
		}
	}

	return len(objects), nil
}

func dropShortSpans(spans []string, min int) []string {
	if min <= 0 {
		return spans
	}
	kept := spans[:0]
	for _, span := range spans {
		if len([]rune(strings.TrimSpace(span))) >= min {
			kept = append(kept, span)
		}
	}
	return kept
}
