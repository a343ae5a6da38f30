package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authdelivery "gemini-task-backend/internal/auth/delivery"
	authusecase "gemini-task-backend/internal/auth/usecase"
	"gemini-task-backend/internal/chat/domain"
	"gemini-task-backend/internal/chat/usecase"
	settingsrepo "gemini-task-backend/internal/settings/repository"
	settingsusecase "gemini-task-backend/internal/settings/usecase"
	taskrepo "gemini-task-backend/internal/task/repository"
	taskusecase "gemini-task-backend/internal/task/usecase"
	"gemini-task-backend/pkg/ai"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGenerator struct {
	reply string
	err   error
	calls int
}

func (g *countingGenerator) GenerateText(context.Context, string) (string, error) {
	g.calls++
	return g.reply, g.err
}

func newRouter(t *testing.T, gen ai.TextGenerator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := authusecase.NewJWTVerifier("test-secret")
	require.NoError(t, err)

	tasks := taskusecase.NewTaskUsecase(taskrepo.NewMemoryTaskRepository())
	settings := settingsusecase.NewSettingsUsecase(settingsrepo.NewMemorySettingsRepository())
	h := NewChatHandler(usecase.NewChatUsecase(gen, tasks, settings))

	r := gin.New()
	api := r.Group("/api", authdelivery.AuthMiddleware(verifier))
	api.POST("/chat", h.Chat)
	api.POST("/suggest", h.Suggest)
	api.POST("/rank", h.Rank)
	return r
}

func post(t *testing.T, r http.Handler, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		token, err := authusecase.IssueToken("test-secret", "u1", "", time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChat_WithoutTokenNeverReachesModel(t *testing.T) {
	gen := &countingGenerator{reply: `{"action":"clarify","message":"?"}`}
	r := newRouter(t, gen)

	w := post(t, r, "/api/chat", `{"message":"牛乳を買う","context":""}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
	assert.Zero(t, gen.calls)
}

func TestChat_CreateComplete(t *testing.T) {
	gen := &countingGenerator{reply: `{"action":"create","message":"追加します","extractedTask":{"title":"報告書を提出","priority":"high"},"complete":true}`}
	r := newRouter(t, gen)

	w := post(t, r, "/api/chat", `{"message":"明日までに報告書を提出","context":""}`, true)
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.ChatResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.ActionCreate, result.Action)
	assert.True(t, result.Complete)
	assert.Equal(t, "報告書を提出", result.ExtractedTask.Title)
}

func TestChat_DegradedShape(t *testing.T) {
	r := newRouter(t, &countingGenerator{reply: "ちょっと分かりません"})

	w := post(t, r, "/api/chat", `{"message":"えーと"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"ちょっと分かりません","extractedTask":{},"complete":false,"options":[]}`, w.Body.String())
}

func TestChat_ProviderStatusSurfaced(t *testing.T) {
	gen := &countingGenerator{err: &ai.ProviderError{Provider: ai.ProviderGemini, StatusCode: 429, Message: "quota exceeded"}}
	r := newRouter(t, gen)

	w := post(t, r, "/api/chat", `{"message":"x"}`, true)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Request failed with status code 429","detail":{"error":{"message":"quota exceeded"}}}`, w.Body.String())
}

func TestChat_TransportErrorStaysInLog(t *testing.T) {
	gen := &countingGenerator{err: errors.New(`Post "http://127.0.0.1:1/?key=SECRET": connection refused`)}
	r := newRouter(t, gen)

	w := post(t, r, "/api/chat", `{"message":"x"}`, true)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "SECRET")
	assert.JSONEq(t, `{"error":"chat request failed","detail":null}`, w.Body.String())
}

func TestChat_MissingMessage(t *testing.T) {
	gen := &countingGenerator{}
	w := post(t, newRouter(t, gen), "/api/chat", `{"context":"x"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, gen.calls)
}

func TestSuggest_EmptyListReturnsWelcome(t *testing.T) {
	gen := &countingGenerator{}
	r := newRouter(t, gen)

	w := post(t, r, "/api/suggest", `{"tasks":[]}`, true)
	require.Equal(t, http.StatusOK, w.Code)

	var s domain.Suggestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, domain.WelcomeMessage, s.Comment)
	assert.Empty(t, s.SuggestedTaskID)
	assert.Zero(t, gen.calls)
}

func TestRank_EmptyBodyRanksStoredCollection(t *testing.T) {
	gen := &countingGenerator{}
	r := newRouter(t, gen)

	w := post(t, r, "/api/rank", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[],"degraded":false}`, w.Body.String())
	assert.Zero(t, gen.calls)
}
