package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds the LLM settings that can change without a restart
type RuntimeConfig struct {
	mu            sync.RWMutex
	ollamaBaseURL string
	ollamaModel   string
}

// NewRuntimeConfig initializes runtime config from static config
func NewRuntimeConfig(ollamaBaseURL, ollamaModel string) *RuntimeConfig {
	return &RuntimeConfig{ollamaBaseURL: ollamaBaseURL, ollamaModel: ollamaModel}
}

// OllamaBaseURL returns the current runtime Ollama base URL
func (r *RuntimeConfig) OllamaBaseURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ollamaBaseURL
}

// OllamaModel returns the current runtime Ollama model
func (r *RuntimeConfig) OllamaModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ollamaModel
}

func (r *RuntimeConfig) update(baseURL, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ollamaBaseURL = baseURL
	if model != "" {
		r.ollamaModel = model
	}
}

// OllamaPinger checks whether an Ollama server answers
type OllamaPinger interface {
	Ping(ctx context.Context, baseURL string) error
}

type AISettingsHandler struct {
	runtime *RuntimeConfig
	pinger  OllamaPinger
}

func NewAISettingsHandler(runtime *RuntimeConfig, pinger OllamaPinger) *AISettingsHandler {
	return &AISettingsHandler{runtime: runtime, pinger: pinger}
}

// UpdateAISettingsRequest represents the request body for updating AI settings
type UpdateAISettingsRequest struct {
	OllamaBaseURL string `json:"ollama_base_url" binding:"required,url"`
	OllamaModel   string `json:"ollama_model,omitempty"`
}

// GetAISettings returns current Ollama configuration
// GET /api/settings/ai
func (h *AISettingsHandler) GetAISettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ollama_base_url": h.runtime.OllamaBaseURL(),
		"ollama_model":    h.runtime.OllamaModel(),
	})
}

// UpdateAISettings updates Ollama configuration at runtime
// PUT /api/settings/ai
func (h *AISettingsHandler) UpdateAISettings(c *gin.Context) {
	var req UpdateAISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.runtime.update(req.OllamaBaseURL, req.OllamaModel)

	c.JSON(http.StatusOK, gin.H{
		"message":         "AI settings updated successfully",
		"ollama_base_url": h.runtime.OllamaBaseURL(),
		"ollama_model":    h.runtime.OllamaModel(),
	})
}

// TestOllamaConnection tests if the Ollama server is reachable
// POST /api/settings/ai/test
func (h *AISettingsHandler) TestOllamaConnection(c *gin.Context) {
	var req struct {
		OllamaBaseURL string `json:"ollama_base_url"`
	}
	// No body means the current config
	_ = c.ShouldBindJSON(&req)
	if req.OllamaBaseURL == "" {
		req.OllamaBaseURL = h.runtime.OllamaBaseURL()
	}

	if err := h.pinger.Ping(c.Request.Context(), req.OllamaBaseURL); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":       true,
		"ollama_base_url": req.OllamaBaseURL,
	})
}
