package delivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gemini-task-backend/internal/settings/domain"
	"gemini-task-backend/internal/settings/repository"
	"gemini-task-backend/internal/settings/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type promptResponse struct {
	SystemPrompt string `json:"systemPrompt"`
	IsDefault    bool   `json:"isDefault"`
}

func TestPromptEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSettingsHandler(usecase.NewSettingsUsecase(repository.NewMemorySettingsRepository()))

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", "u1") })
	r.GET("/api/settings/prompt", h.GetPrompt)
	r.PUT("/api/settings/prompt", h.UpdatePrompt)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/settings/prompt", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got promptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.IsDefault)
	assert.Equal(t, domain.DefaultSystemPrompt, got.SystemPrompt)

	req := httptest.NewRequest(http.MethodPut, "/api/settings/prompt", strings.NewReader(`{"systemPrompt":"簡潔に答えて"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.IsDefault)
	assert.Equal(t, "簡潔に答えて", got.SystemPrompt)

	req = httptest.NewRequest(http.MethodPut, "/api/settings/prompt", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
