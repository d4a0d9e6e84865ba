package rag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/src/core/rag"
	"ragchat/src/storage/memory"
)

func seedStore(t *testing.T, store *memory.Store, objects ...rag.Object) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.EnsureCollection(ctx, testCollection, 3))
	require.NoError(t, store.Upsert(ctx, testCollection, objects))
}

func chunkObject(id, document string, ordinal int, text string, vector []float32) rag.Object {
	return rag.Object{
		ID:     id,
		Vector: vector,
		Text:   text,
		Metadata: map[string]interface{}{
			"document": document,
			"ordinal":  ordinal,
		},
	}
}

func TestRetrieveMissingCollection(t *testing.T) {
	embedder := newFakeEmbedder()
	retriever := rag.NewRetriever(embedder, memory.NewStore(), testCollection, 0)

	results, err := retriever.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveInvalidK(t *testing.T) {
	retriever := rag.NewRetriever(newFakeEmbedder(), memory.NewStore(), testCollection, 0)

	for _, k := range []int{0, -1} {
		_, err := retriever.Retrieve(context.Background(), "q", k)
		var validationErr *rag.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	}
}

func TestRetrieveOrdering(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.vecFn = func(string) []float32 { return []float32{1, 0, 0} }

	store := memory.NewStore()
	seedStore(t, store,
		chunkObject("a.txt#0", "a.txt", 0, "exact match", []float32{1, 0, 0}),
		chunkObject("a.txt#1", "a.txt", 1, "close match", []float32{1, 0.2, 0}),
		chunkObject("a.txt#2", "a.txt", 2, "orthogonal", []float32{0, 1, 0}),
	)

	retriever := rag.NewRetriever(embedder, store, testCollection, 0)
	results, err := retriever.Retrieve(context.Background(), "q", 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "a.txt#0", results[0].ID)
	assert.Equal(t, "a.txt#1", results[1].ID)
	assert.Equal(t, "a.txt#2", results[2].ID)
	assert.True(t, results[0].Score >= results[1].Score)
	assert.Equal(t, 1, results[1].Ordinal)
	assert.Equal(t, "a.txt", results[1].Document)
}

// Chunks with identical scores must come back in ascending id order so the
// same corpus always yields the same citation numbering.
func TestRetrieveTieBreak(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.vecFn = func(string) []float32 { return []float32{1, 0, 0} }

	vector := []float32{1, 1, 0}
	store := memory.NewStore()
	seedStore(t, store,
		chunkObject("b.txt#1", "b.txt", 1, "twin two", vector),
		chunkObject("b.txt#0", "b.txt", 0, "twin one", vector),
	)

	retriever := rag.NewRetriever(embedder, store, testCollection, 0)
	results, err := retriever.Retrieve(context.Background(), "q", 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "b.txt#0", results[0].ID)
	assert.Equal(t, "b.txt#1", results[1].ID)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestRetrieveTruncatesToK(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.vecFn = func(string) []float32 { return []float32{1, 0, 0} }

	store := memory.NewStore()
	seedStore(t, store,
		chunkObject("c.txt#0", "c.txt", 0, "one", []float32{1, 0, 0}),
		chunkObject("c.txt#1", "c.txt", 1, "two", []float32{1, 0.1, 0}),
		chunkObject("c.txt#2", "c.txt", 2, "three", []float32{1, 0.2, 0}),
	)

	retriever := rag.NewRetriever(embedder, store, testCollection, 0)
	results, err := retriever.Retrieve(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrieveScoreFloor(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.vecFn = func(string) []float32 { return []float32{1, 0, 0} }

	store := memory.NewStore()
	seedStore(t, store,
		chunkObject("d.txt#0", "d.txt", 0, "aligned", []float32{1, 0, 0}),
		chunkObject("d.txt#1", "d.txt", 1, "orthogonal", []float32{0, 1, 0}),
	)

	retriever := rag.NewRetriever(embedder, store, testCollection, 0.5)
	results, err := retriever.Retrieve(context.Background(), "q", 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "d.txt#0", results[0].ID)
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.failOn = 1
	embedder.failAs = &rag.EmbeddingError{Reason: rag.ReasonAuth, Err: assert.AnError}

	store := memory.NewStore()
	seedStore(t, store, chunkObject("e.txt#0", "e.txt", 0, "content", []float32{1, 0, 0}))

	retriever := rag.NewRetriever(embedder, store, testCollection, 0)
	_, err := retriever.Retrieve(context.Background(), "q", 5)

	require.Error(t, err)
	assert.Equal(t, rag.ReasonAuth, rag.FailureReason(err))
}
