package delivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gemini-task-backend/internal/task/domain"
	"gemini-task-backend/internal/task/repository"
	"gemini-task-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, seed ...domain.Task) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryTaskRepository()
	if len(seed) > 0 {
		require.NoError(t, repo.Save(t.Context(), "u1", seed))
	}
	h := NewTaskHandler(usecase.NewTaskUsecase(repo))

	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	api.GET("/tasks", h.GetTasks)
	api.PUT("/tasks", h.ReplaceTasks)
	api.POST("/tasks", h.CreateTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
	api.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
	api.POST("/tasks/:id/priority", h.AdjustPriority)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndListTasks(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/tasks", `{"task":"牛乳を買う","dueDate":"今日"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "牛乳を買う", created.Title)
	assert.Equal(t, domain.DefaultAIPriority, created.AIPriority)
	assert.Equal(t, domain.TaskStatusTodo, created.Status)

	w = do(r, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Tasks []domain.Task `json:"tasks"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, created.ID, list.Tasks[0].ID)

	w = do(r, http.MethodPost, "/api/tasks", `{"dueDate":"今日"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTaskStatus(t *testing.T) {
	r := newTestRouter(t, domain.Task{ID: "t1", Title: "x", Status: domain.TaskStatusTodo})

	w := do(r, http.MethodPatch, "/api/tasks/t1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"done"`)

	w = do(r, http.MethodPatch, "/api/tasks/t1/status", `{"status":"todo"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"todo"`)

	w = do(r, http.MethodPatch, "/api/tasks/t1/status", `{"status":"later"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/api/tasks/nope/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdjustPriority(t *testing.T) {
	r := newTestRouter(t, domain.Task{ID: "t1", Title: "x", AIPriority: 50})

	w := do(r, http.MethodPost, "/api/tasks/t1/priority", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userPriority":60`)

	w = do(r, http.MethodPost, "/api/tasks/t1/priority", `{"delta":-500}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userPriority":0`)

	w = do(r, http.MethodPost, "/api/tasks/t1/priority", `{"delta":9223372036854775807}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userPriority":100`)
}

func TestUpdateAndDeleteTask(t *testing.T) {
	r := newTestRouter(t, domain.Task{ID: "t1", Title: "x", AIPriority: 50})

	w := do(r, http.MethodPut, "/api/tasks/t1", `{"task":"y","tags":["家"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"task":"y"`)

	w = do(r, http.MethodPut, "/api/tasks/t1", `{"task":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/api/tasks/t1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/api/tasks/t1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplaceTasks(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPut, "/api/tasks", `{"tasks":[{"id":"a","task":"one","aiPriority":10},{"id":"b","task":"two","aiPriority":90}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Tasks []domain.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Tasks, 2)
	assert.Equal(t, "b", list.Tasks[0].ID)

	w = do(r, http.MethodPut, "/api/tasks", `{"tasks":[{"id":"a","task":""}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
