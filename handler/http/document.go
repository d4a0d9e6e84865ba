package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragchat/src/core/rag"
)

// UploadDocument ingests a multipart upload. The document becomes queryable
// only after every chunk is embedded and stored.
func (h *Handler) UploadDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		sendError(c, &rag.ValidationError{Field: "file", Message: "no file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(c, err)
		return
	}

	count, err := h.ingestor.Ingest(c.Request.Context(), header.Filename, data)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"filename":    header.Filename,
		"chunk_count": count,
	})
}

// ListDocuments reports the files ingested in this session, enriched with
// registry records when a registry is configured.
func (h *Handler) ListDocuments(c *gin.Context) {
	files := h.session.Files()

	if h.registry == nil {
		c.JSON(http.StatusOK, gin.H{"documents": files})
		return
	}

	records, err := h.registry.List(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"documents": files,
		"registry":  records,
	})
}
