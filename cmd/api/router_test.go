package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authUsecase "gemini-task-backend/internal/auth/usecase"
	settingsRepo "gemini-task-backend/internal/settings/repository"
	taskRepo "gemini-task-backend/internal/task/repository"
	"gemini-task-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-secret"

type countingGenerator struct{ calls int }

func (g *countingGenerator) GenerateText(context.Context, string) (string, error) {
	g.calls++
	return `{"action":"clarify","message":"いつ？","options":["今日"]}`, nil
}

type okRaw struct{}

func (okRaw) GenerateRaw(context.Context, string) (int, []byte, error) {
	return http.StatusOK, []byte(`{"candidates":[]}`), nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context, string) error { return p.err }

func newTestHandler(t *testing.T) (*Handler, *countingGenerator) {
	t.Helper()
	return newTestHandlerFor(t, config.EnvDevelopment)
}

func newTestHandlerFor(t *testing.T, env string) (*Handler, *countingGenerator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := authUsecase.NewJWTVerifier(testSecret)
	require.NoError(t, err)

	gen := &countingGenerator{}
	cfg := &config.Config{
		AppEnv:         env,
		FrontendOrigin: "http://localhost:5173",
		AIProvider:     "ollama",
		OllamaBaseURL:  "http://localhost:11434",
		OllamaModel:    "llama3",
	}
	h, err := NewHandler(t.Context(), cfg, Dependencies{
		Verifier:     verifier,
		TaskRepo:     taskRepo.NewMemoryTaskRepository(),
		SettingsRepo: settingsRepo.NewMemorySettingsRepository(),
		RawGenerator: okRaw{},
		Generator:    gen,
	})
	require.NoError(t, err)
	return h, gen
}

func request(t *testing.T, r http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token, err := authUsecase.IssueToken(testSecret, "u1", "u1@example.com", time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	h, _ := newTestHandler(t)
	w := request(t, h.Router(), http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAPIRoutesRequireToken(t *testing.T) {
	h, gen := newTestHandler(t)
	r := h.Router()

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/generate"},
		{http.MethodPost, "/api/chat"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodGet, "/api/settings/prompt"},
		{http.MethodGet, "/api/settings/ai"},
	} {
		w := request(t, r, tc.method, tc.path, `{"message":"x","prompt":"x"}`, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String(), tc.path)
	}
	assert.Zero(t, gen.calls)
}

func TestChatAndGenerateWithToken(t *testing.T) {
	h, gen := newTestHandler(t)
	r := h.Router()

	w := request(t, r, http.MethodPost, "/api/chat", `{"message":"レポート"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"action":"clarify"`)
	assert.Equal(t, 1, gen.calls)

	w = request(t, r, http.MethodPost, "/api/generate", `{"prompt":"hi"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"candidates":[]}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAISettings(t *testing.T) {
	h, _ := newTestHandler(t)
	r := h.Router()

	w := request(t, r, http.MethodPut, "/api/settings/ai", `{"ollama_base_url":"http://ollama:11434","ollama_model":"qwen"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://ollama:11434", h.runtime.OllamaBaseURL())
	assert.Equal(t, "qwen", h.runtime.OllamaModel())

	w = request(t, r, http.MethodPut, "/api/settings/ai", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAISettings_ProductionHasNoRoutes(t *testing.T) {
	h, _ := newTestHandlerFor(t, config.EnvProduction)
	r := h.Router()

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/settings/ai", ""},
		{http.MethodPut, "/api/settings/ai", `{"ollama_base_url":"http://169.254.169.254","ollama_model":"x"}`},
		{http.MethodPost, "/api/settings/ai/test", ""},
	} {
		w := request(t, r, tc.method, tc.path, tc.body, true)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.path)
	}
	assert.Equal(t, "http://localhost:11434", h.runtime.OllamaBaseURL())

	// the per-user prompt settings stay available
	w := request(t, r, http.MethodGet, "/api/settings/prompt", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTestOllamaConnection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	runtime := NewRuntimeConfig("http://localhost:11434", "llama3")

	for _, tc := range []struct {
		name string
		err  error
		code int
	}{
		{"reachable", nil, http.StatusOK},
		{"unreachable", errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/test", NewAISettingsHandler(runtime, fakePinger{err: tc.err}).TestOllamaConnection)
			w := request(t, r, http.MethodPost, "/test", "", false)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}
