// Package memory is a brute-force cosine-similarity vector store. It is the
// zero-infrastructure default backend and the store used by tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"ragchat/src/core/rag"
)

type collection struct {
	dimension int
	objects   map[string]rag.Object
}

// Store keeps collections in process memory. Contents do not survive a
// restart; the durable backend is storage/weaviate.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) EnsureCollection(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return &rag.StoreError{Op: "ensure", Err: fmt.Errorf("invalid dimension %d", dimension)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		if c.dimension != dimension {
			return &rag.StoreError{Op: "ensure",
				Err: fmt.Errorf("collection %s holds %d-dimensional vectors, embedder produces %d", name, c.dimension, dimension)}
		}
		return nil
	}
	s.collections[name] = &collection{dimension: dimension, objects: make(map[string]rag.Object)}
	return nil
}

func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *Store) Upsert(ctx context.Context, name string, objects []rag.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return &rag.StoreError{Op: "upsert", Err: fmt.Errorf("collection %s does not exist", name)}
	}
	for _, o := range objects {
		if len(o.Vector) != c.dimension {
			return &rag.StoreError{Op: "upsert",
				Err: fmt.Errorf("vector for %s has dimension %d, collection %s expects %d", o.ID, len(o.Vector), name, c.dimension)}
		}
	}
	for _, o := range objects {
		c.objects[o.ID] = o
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, name string, document string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil
	}
	for id, o := range c.objects {
		if doc, ok := o.Metadata["document"].(string); ok && doc == document {
			delete(c.objects, id)
		}
	}
	return nil
}

func (s *Store) Query(ctx context.Context, name string, vector []float32, k int) ([]rag.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	if len(vector) != c.dimension {
		return nil, &rag.StoreError{Op: "query",
			Err: fmt.Errorf("query vector has dimension %d, collection %s expects %d", len(vector), name, c.dimension)}
	}

	matches := make([]rag.Match, 0, len(c.objects))
	for _, o := range c.objects {
		matches = append(matches, rag.Match{
			ID:       o.ID,
			Score:    cosine(vector, o.Vector),
			Text:     o.Text,
			Metadata: o.Metadata,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Count reports the number of stored chunks in a collection. Not part of the
// store capability; used by the workspace command and tests.
func (s *Store) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0
	}
	return len(c.objects)
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
