package rag

import (
	"context"
	"sort"
)

// Retriever answers similarity lookups against one collection.
type Retriever struct {
	embedder   Embedder
	store      VectorStore
	collection string
	// minScore filters low-relevance chunks before prompt assembly.
	// 0 disables the floor, which is the default policy.
	minScore float64
}

func NewRetriever(embedder Embedder, store VectorStore, collection string, minScore float64) *Retriever {
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		minScore:   minScore,
	}
}

// Retrieve embeds the query and returns up to k chunks ordered by descending
// similarity, ties broken by ascending chunk id. A missing or empty
// collection yields an empty result, not an error: a fresh workspace with no
// ingested documents is a valid state.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, &ValidationError{Field: "k", Message: "must be positive"}
	}

	exists, err := r.store.CollectionExists(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	vector, err := embedWithRetry(ctx, r.embedder, query)
	if err != nil {
		return nil, err
	}

	matches, err := r.store.Query(ctx, r.collection, vector, k)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredChunk, 0, len(matches))
	for _, m := range matches {
		if r.minScore > 0 && m.Score < r.minScore {
			continue
		}
		results = append(results, ScoredChunk{Chunk: chunkFromMatch(m), Score: m.Score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func chunkFromMatch(m Match) Chunk {
	chunk := Chunk{ID: m.ID, Text: m.Text}
	if doc, ok := m.Metadata["document"].(string); ok {
		chunk.Document = doc
	}
	switch v := m.Metadata["ordinal"].(type) {
	case int:
		chunk.Ordinal = v
	case int64:
		chunk.Ordinal = int(v)
	case float64:
		chunk.Ordinal = int(v)
	}
	return chunk
}
