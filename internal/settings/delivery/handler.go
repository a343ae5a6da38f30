package delivery

import (
	"errors"
	"net/http"

	"gemini-task-backend/internal/settings/usecase"

	"github.com/gin-gonic/gin"
)

// SettingsHandler handles per-user settings requests
type SettingsHandler struct {
	settingsUsecase usecase.SettingsUsecase
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsUsecase usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{settingsUsecase: settingsUsecase}
}

// UpdatePromptRequest is the body of PUT /api/settings/prompt
type UpdatePromptRequest struct {
	SystemPrompt *string `json:"systemPrompt" binding:"required"`
}

// GetPrompt returns the user's system prompt
// GET /api/settings/prompt
func (h *SettingsHandler) GetPrompt(c *gin.Context) {
	userID := c.GetString("userID")

	prompt, isDefault, err := h.settingsUsecase.GetSystemPrompt(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"systemPrompt": prompt,
		"isDefault":    isDefault,
	})
}

// UpdatePrompt stores the user's system prompt
// PUT /api/settings/prompt
func (h *SettingsHandler) UpdatePrompt(c *gin.Context) {
	userID := c.GetString("userID")

	var req UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settingsUsecase.SaveSystemPrompt(c.Request.Context(), userID, *req.SystemPrompt); err != nil {
		if errors.Is(err, usecase.ErrPromptTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.GetPrompt(c)
}
