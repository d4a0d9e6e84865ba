package http

import (
	"github.com/gin-gonic/gin"

	"ragchat/src/core/rag"
)

type chatRequest struct {
	Query string `json:"query" binding:"required"`
}

type sourcePayload struct {
	Rank     int     `json:"rank"`
	ChunkID  string  `json:"chunk_id"`
	Document string  `json:"document"`
	Score    float64 `json:"score"`
}

// Chat streams an answer over SSE: one "sources" event, then a "token" event
// per fragment, then either "done" or a terminal "error" event.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, &rag.ValidationError{Field: "query", Message: "query is required"})
		return
	}

	ans, err := h.pipeline.Ask(c.Request.Context(), h.session, req.Query)
	if err != nil {
		sendError(c, err)
		return
	}
	defer ans.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	sources := make([]sourcePayload, len(ans.Sources))
	for i, s := range ans.Sources {
		sources[i] = sourcePayload{
			Rank:     i + 1,
			ChunkID:  s.Chunk.ID,
			Document: s.Chunk.Document,
			Score:    s.Score,
		}
	}
	c.SSEvent("sources", sources)
	c.Writer.Flush()

	for token := range ans.Tokens() {
		c.SSEvent("token", token)
		c.Writer.Flush()

		// A broken client connection cancels the request context; stop
		// pulling tokens so the generation gets released.
		select {
		case <-c.Request.Context().Done():
			return
		default:
		}
	}

	if err := ans.Err(); err != nil {
		c.SSEvent("error", gin.H{
			"reason":  string(rag.FailureReason(err)),
			"message": err.Error(),
		})
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", gin.H{})
	c.Writer.Flush()
}
