package rag

import (
	"fmt"
	"strings"
)

const systemInstruction = `You are a document assistant. Answer the question using only the context passages supplied below. Cite the passages you use by their [n] markers. If the answer is not contained in the context, say so explicitly instead of guessing.`

const noContextNotice = `No relevant context was found in the knowledge base. Tell the user that you have no relevant context for this question and suggest uploading a document.`

// Prompt is one assembled generation request: a fixed system instruction plus
// the user-visible text (context passages, recent turns, question).
type Prompt struct {
	System string
	User   string
}

// PromptBuilder assembles prompts in a fixed order: system rule, cited
// context passages, recent conversation, query. It never fails: an empty
// retrieval still produces a valid prompt instructing the model to say that
// no relevant context was found.
type PromptBuilder struct {
	maxTurns int
}

func NewPromptBuilder(maxTurns int) *PromptBuilder {
	return &PromptBuilder{maxTurns: maxTurns}
}

func (b *PromptBuilder) Build(query string, results []ScoredChunk, turns []Turn) Prompt {
	var sb strings.Builder

	if len(results) == 0 {
		sb.WriteString(noContextNotice)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("Context:\n")
		for i, result := range results {
			fmt.Fprintf(&sb, "[%d] (%s) %s\n", i+1, result.ID, sanitize(result.Text))
		}
		sb.WriteString("\n")
	}

	if len(turns) > 0 {
		if b.maxTurns > 0 && len(turns) > b.maxTurns {
			turns = turns[len(turns)-b.maxTurns:]
		}
		sb.WriteString("Recent conversation:\n")
		for _, turn := range turns {
			label := "User"
			if turn.Role == RoleAssistant {
				label = "Assistant"
			}
			fmt.Fprintf(&sb, "%s: %s\n", label, turn.Content)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Question: %s\n\nAnswer:", query)

	return Prompt{System: systemInstruction, User: sb.String()}
}

// sanitize flattens a passage onto one line so the citation markers stay
// readable.
func sanitize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
