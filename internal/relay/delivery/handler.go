package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RawGenerator forwards a prompt and returns the provider's status and body
type RawGenerator interface {
	GenerateRaw(ctx context.Context, prompt string) (status int, body []byte, err error)
}

// RelayHandler forwards prompts to the LLM provider without interpreting them
type RelayHandler struct {
	generator RawGenerator
}

// NewRelayHandler creates a new RelayHandler
func NewRelayHandler(generator RawGenerator) *RelayHandler {
	return &RelayHandler{generator: generator}
}

// UpstreamFailedMessage is returned when the provider could not be reached.
// Transport errors stay in the log.
const UpstreamFailedMessage = "upstream request failed"

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Generate relays a prompt and returns the provider body verbatim
// POST /api/generate
func (h *RelayHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, body, err := h.generator.GenerateRaw(c.Request.Context(), req.Prompt)
	if err != nil {
		log.Printf("[Relay] Provider request failed for user %s: %v", c.GetString("userID"), err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  UpstreamFailedMessage,
			"detail": nil,
		})
		return
	}

	if status < 200 || status > 299 {
		log.Printf("[Relay] Provider returned status %d for user %s", status, c.GetString("userID"))
		c.JSON(status, gin.H{
			"error":  fmt.Sprintf("Request failed with status code %d", status),
			"detail": detailOf(body),
		})
		return
	}

	c.Data(status, "application/json; charset=utf-8", body)
}

// detailOf keeps JSON error bodies structured and wraps anything else as a string
func detailOf(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
