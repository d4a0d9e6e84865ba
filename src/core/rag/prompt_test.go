package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptBuilderCitations(t *testing.T) {
	b := NewPromptBuilder(6)
	results := []ScoredChunk{
		{Chunk: Chunk{ID: "doc.txt#0", Document: "doc.txt", Text: "alpha passage"}, Score: 0.9},
		{Chunk: Chunk{ID: "doc.txt#3", Document: "doc.txt", Text: "beta passage"}, Score: 0.7},
	}

	p := b.Build("what is alpha?", results, nil)

	assert.Contains(t, p.User, "[1] (doc.txt#0) alpha passage")
	assert.Contains(t, p.User, "[2] (doc.txt#3) beta passage")
	assert.Contains(t, p.User, "Question: what is alpha?")
	assert.True(t, strings.HasSuffix(p.User, "Answer:"))
	assert.Contains(t, p.System, "[n] markers")
}

func TestPromptBuilderNoContext(t *testing.T) {
	b := NewPromptBuilder(6)
	p := b.Build("anything?", nil, nil)

	assert.Contains(t, p.User, "No relevant context")
	assert.NotContains(t, p.User, "Context:")
}

func TestPromptBuilderHistoryWindow(t *testing.T) {
	b := NewPromptBuilder(2)
	turns := []Turn{
		{Role: RoleUser, Content: "first question"},
		{Role: RoleAssistant, Content: "first answer"},
		{Role: RoleUser, Content: "second question"},
		{Role: RoleAssistant, Content: "second answer"},
	}

	p := b.Build("third question", nil, turns)

	assert.NotContains(t, p.User, "first question")
	assert.Contains(t, p.User, "User: second question")
	assert.Contains(t, p.User, "Assistant: second answer")
}

func TestPromptBuilderFlattensPassages(t *testing.T) {
	b := NewPromptBuilder(6)
	results := []ScoredChunk{
		{Chunk: Chunk{ID: "doc.txt#0", Text: "line one\nline two\t\tindented"}, Score: 0.9},
	}

	p := b.Build("q", results, nil)

	assert.Contains(t, p.User, "[1] (doc.txt#0) line one line two indented")
}

func TestPromptBuilderSectionOrder(t *testing.T) {
	b := NewPromptBuilder(6)
	results := []ScoredChunk{{Chunk: Chunk{ID: "a#0", Text: "ctx"}, Score: 1}}
	turns := []Turn{{Role: RoleUser, Content: "prior"}}

	p := b.Build("now", results, turns)

	ctxIdx := strings.Index(p.User, "Context:")
	convIdx := strings.Index(p.User, "Recent conversation:")
	qIdx := strings.Index(p.User, "Question:")
	assert.True(t, ctxIdx >= 0 && convIdx > ctxIdx && qIdx > convIdx)
}
