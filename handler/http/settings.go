package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ragchat/src/core/rag"
)

type updateSettingRequest struct {
	Field string  `json:"field" binding:"required"`
	Value float64 `json:"value"`
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Sampling())
}

// UpdateSetting adjusts one sampling parameter. Out-of-range values are
// clamped rather than rejected; the response shows the effective settings.
func (h *Handler) UpdateSetting(c *gin.Context) {
	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, &rag.ValidationError{Field: "field", Message: "field is required"})
		return
	}

	if err := h.session.Set(req.Field, req.Value); err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.session.Sampling())
}

// ResetSettings restores the sampling defaults without touching the
// session's ingested files.
func (h *Handler) ResetSettings(c *gin.Context) {
	h.session.Reset()
	c.JSON(http.StatusOK, h.session.Sampling())
}
