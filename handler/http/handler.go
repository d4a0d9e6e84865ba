package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragchat/src/core/rag"
)

type Handler struct {
	pipeline *rag.Pipeline
	ingestor *rag.Ingestor
	session  *rag.Session
	store    rag.VectorStore
	history  rag.HistoryStore
	registry rag.DocumentRegistry

	collection string
}

func NewHandler(pipeline *rag.Pipeline, ingestor *rag.Ingestor, session *rag.Session, store rag.VectorStore, history rag.HistoryStore, registry rag.DocumentRegistry, collection string) *Handler {
	return &Handler{
		pipeline:   pipeline,
		ingestor:   ingestor,
		session:    session,
		store:      store,
		history:    history,
		registry:   registry,
		collection: collection,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	// Document routes
	v1.POST("/documents", h.UploadDocument)
	v1.GET("/documents", h.ListDocuments)

	// Chat routes
	v1.POST("/chat", h.Chat)

	// Settings routes
	v1.GET("/settings", h.GetSettings)
	v1.PUT("/settings", h.UpdateSetting)
	v1.POST("/settings/reset", h.ResetSettings)

	// Workspace routes
	v1.POST("/workspace/reset", h.ResetWorkspace)

	// System routes
	v1.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func sendError(c *gin.Context, err error) {
	var (
		status = http.StatusInternalServerError
		code   = "INTERNAL_ERROR"
		hint   string
	)

	var validationErr *rag.ValidationError
	var formatErr *rag.UnsupportedFormatError
	var extractionErr *rag.ExtractionError
	var embeddingErr *rag.EmbeddingError
	var generationErr *rag.GenerationError
	var storeErr *rag.StoreError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		code = "INVALID_REQUEST"
	case errors.As(err, &formatErr):
		status = http.StatusUnsupportedMediaType
		code = "UNSUPPORTED_FORMAT"
	case errors.As(err, &extractionErr):
		status = http.StatusUnprocessableEntity
		code = "EXTRACTION_FAILED"
	case rag.IsQuota(err):
		status = http.StatusTooManyRequests
		code = "QUOTA_EXCEEDED"
		hint = "Wait for the quota window to reset or upgrade the provider plan before retrying."
	case errors.As(err, &embeddingErr):
		status = http.StatusBadGateway
		code = "EMBEDDING_FAILED"
	case errors.As(err, &generationErr):
		status = http.StatusBadGateway
		code = "GENERATION_FAILED"
	case errors.As(err, &storeErr):
		status = http.StatusBadGateway
		code = "STORE_FAILED"
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
		Hint:    hint,
	})
}

func (h *Handler) CheckHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
