// Package weaviate adapts a Weaviate instance to the vector-store
// capability. Each collection maps to one class storing chunk payloads with
// externally supplied vectors (vectorizer "none").
package weaviate

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"ragchat/src/core/rag"
)

// chunkNamespace seeds deterministic object ids: the same chunk id always
// maps to the same Weaviate uuid, so batch upserts overwrite rather than
// duplicate on re-ingestion.
var chunkNamespace = uuid.MustParse("9f2c6cf0-5b1a-4b6e-8f0d-2d5a7c3e9b41")

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// EnsureCollection creates the class if it is missing. Weaviate does not pin
// a vector dimension at the schema level; dimension consistency is owned by
// the embedder configuration.
func (s *Store) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:       className(collection),
		Vectorizer:  "none",
		Description: fmt.Sprintf("chunk embeddings, dimension %d", dimension),
		Properties: []*models.Property{
			{Name: "chunkId", DataType: []string{"string"}},
			{Name: "document", DataType: []string{"string"}},
			{Name: "ordinal", DataType: []string{"int"}},
			{Name: "content", DataType: []string{"text"}},
		},
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		// Concurrent EnsureCollection calls can race on creation.
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return &rag.StoreError{Op: "ensure", Err: err}
	}
	return nil
}

func (s *Store) CollectionExists(ctx context.Context, collection string) (bool, error) {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, &rag.StoreError{Op: "schema", Err: err}
	}
	for _, class := range schema.Classes {
		if class.Class == className(collection) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	if err := s.client.Schema().ClassDeleter().WithClassName(className(collection)).Do(ctx); err != nil {
		return &rag.StoreError{Op: "delete collection", Err: err}
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, collection string, objects []rag.Object) error {
	objs := make([]*models.Object, len(objects))
	for i, o := range objects {
		properties := map[string]interface{}{
			"chunkId": o.ID,
			"content": o.Text,
		}
		for key, value := range o.Metadata {
			properties[key] = value
		}
		objs[i] = &models.Object{
			Class:      className(collection),
			ID:         strfmt.UUID(uuid.NewSHA1(chunkNamespace, []byte(o.ID)).String()),
			Vector:     o.Vector,
			Properties: properties,
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objs...).Do(ctx)
	if err != nil {
		return &rag.StoreError{Op: "upsert", Err: err}
	}
	if len(resp) == 0 {
		return &rag.StoreError{Op: "upsert", Err: fmt.Errorf("batch returned no results")}
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, collection string, document string) error {
	where := filters.Where().
		WithPath([]string{"document"}).
		WithOperator(filters.Equal).
		WithValueString(document)

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(className(collection)).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return &rag.StoreError{Op: "delete document", Err: err}
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, vector []float32, k int) ([]rag.Match, error) {
	fields := []graphql.Field{
		{Name: "chunkId"},
		{Name: "document"},
		{Name: "ordinal"},
		{Name: "content"},
		{Name: "_additional { certainty distance }"},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	result, err := s.client.GraphQL().Get().
		WithClassName(className(collection)).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, &rag.StoreError{Op: "query", Err: err}
	}
	if len(result.Errors) > 0 {
		return nil, &rag.StoreError{Op: "query", Err: fmt.Errorf("%s", result.Errors[0].Message)}
	}

	var matches []rag.Match
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	objects, ok := data[className(collection)].([]interface{})
	if !ok {
		return nil, nil
	}
	for _, obj := range objects {
		props, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}
		match := rag.Match{Metadata: map[string]interface{}{}}
		if id, ok := props["chunkId"].(string); ok {
			match.ID = id
		}
		if content, ok := props["content"].(string); ok {
			match.Text = content
		}
		if doc, ok := props["document"].(string); ok {
			match.Metadata["document"] = doc
		}
		if ordinal, ok := props["ordinal"].(float64); ok {
			match.Metadata["ordinal"] = ordinal
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				match.Score = certainty
			} else if distance, ok := additional["distance"].(float64); ok {
				match.Score = 1 - distance
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// className maps a collection name onto a valid Weaviate class name, which
// must start with an upper-case letter.
func className(collection string) string {
	if collection == "" {
		return "Workspace"
	}
	runes := []rune(collection)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
