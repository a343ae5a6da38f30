package delivery

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"gemini-task-backend/internal/chat/domain"
	"gemini-task-backend/internal/chat/usecase"
	"gemini-task-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves the structured model endpoints
type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatUsecase usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase}
}

// Chat handles one conversation turn
// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	userID := c.GetString("userID")

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.chatUsecase.Converse(c.Request.Context(), userID, req)
	if err != nil {
		writeUpstreamError(c, "chat", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Suggest highlights one task to work on
// POST /api/suggest
func (h *ChatHandler) Suggest(c *gin.Context) {
	userID := c.GetString("userID")

	var req domain.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestion, err := h.chatUsecase.Suggest(c.Request.Context(), userID, req.Tasks)
	if err != nil {
		writeUpstreamError(c, "suggest", err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// Rank asks the model to prioritise the collection and saves the result
// POST /api/rank
func (h *ChatHandler) Rank(c *gin.Context) {
	userID := c.GetString("userID")

	var req domain.RankRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.chatUsecase.Rank(c.Request.Context(), userID, req.Tasks)
	if err != nil {
		writeUpstreamError(c, "rank", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// writeUpstreamError forwards a provider's status and detail; anything else is
// a 500 whose cause stays in the log
func writeUpstreamError(c *gin.Context, op string, err error) {
	log.Printf("[Chat] %s failed for user %s: %v", op, c.GetString("userID"), err)

	var provErr *ai.ProviderError
	if errors.As(err, &provErr) && provErr.StatusCode >= 400 && provErr.StatusCode <= 599 {
		detail := provErr.Detail
		if detail == nil && provErr.Message != "" {
			detail = gin.H{"error": gin.H{"message": provErr.Message}}
		}
		c.JSON(provErr.StatusCode, gin.H{
			"error":  fmt.Sprintf("Request failed with status code %d", provErr.StatusCode),
			"detail": detail,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  fmt.Sprintf("%s request failed", op),
		"detail": nil,
	})
}
