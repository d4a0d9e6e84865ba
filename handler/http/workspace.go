package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResetWorkspace drops the vector collection, the session file list and the
// conversation history. Sampling settings are left as configured.
func (h *Handler) ResetWorkspace(c *gin.Context) {
	ctx := c.Request.Context()

	exists, err := h.store.CollectionExists(ctx, h.collection)
	if err != nil {
		sendError(c, err)
		return
	}
	if exists {
		if err := h.store.DeleteCollection(ctx, h.collection); err != nil {
			sendError(c, err)
			return
		}
	}

	h.session.ClearFiles()

	if h.history != nil {
		if err := h.history.Clear(ctx, h.session.ID); err != nil {
			sendError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
