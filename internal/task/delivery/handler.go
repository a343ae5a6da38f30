package delivery

import (
	"errors"
	"net/http"

	"gemini-task-backend/internal/task/domain"
	"gemini-task-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

// CreateTaskRequest represents the request body for adding a task by hand
type CreateTaskRequest struct {
	Title    string   `json:"task" binding:"required"`
	DueDate  *string  `json:"dueDate"`
	Priority string   `json:"priority"`
	Reason   *string  `json:"reason"`
	Tags     []string `json:"tags"`
}

// ReplaceTasksRequest carries a whole collection
type ReplaceTasksRequest struct {
	Tasks []domain.Task `json:"tasks" binding:"required"`
}

// AdjustPriorityRequest is a signed bump of the user priority axis
type AdjustPriorityRequest struct {
	Delta *int `json:"delta"`
}

// GetTasks returns the collection ordered by effective rank
// GET /api/tasks
func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID := c.GetString("userID")

	tasks, err := h.taskUsecase.ListTasks(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// ReplaceTasks overwrites the collection
// PUT /api/tasks
func (h *TaskHandler) ReplaceTasks(c *gin.Context) {
	userID := c.GetString("userID")

	var req ReplaceTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := h.taskUsecase.ReplaceTasks(c.Request.Context(), userID, req.Tasks)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// CreateTask adds a task by hand. It starts unranked at the default AI priority.
// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID := c.GetString("userID")

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.CreateTask(c.Request.Context(), userID, usecase.NewTaskInput{
		Title:    req.Title,
		DueDate:  req.DueDate,
		Priority: domain.ParsePriority(req.Priority),
		Reason:   req.Reason,
		Tags:     req.Tags,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask updates an existing task
// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID := c.GetString("userID")
	taskID := c.Param("id")

	var updates usecase.TaskUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if updates.Title != nil && *updates.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidTitle.Error()})
		return
	}

	task, err := h.taskUsecase.UpdateTask(c.Request.Context(), userID, taskID, updates.ToPatch())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID := c.GetString("userID")
	taskID := c.Param("id")

	if err := h.taskUsecase.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// UpdateTaskStatus toggles the status, or sets it when the body names one
// PATCH /api/tasks/:id/status
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID := c.GetString("userID")
	taskID := c.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var (
		task *domain.Task
		err  error
	)
	if req.Status == "" {
		task, err = h.taskUsecase.ToggleStatus(c.Request.Context(), userID, taskID)
	} else {
		task, err = h.taskUsecase.SetStatus(c.Request.Context(), userID, taskID, domain.TaskStatus(req.Status))
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// AdjustPriority moves the user priority by delta, one step up when omitted
// POST /api/tasks/:id/priority
func (h *TaskHandler) AdjustPriority(c *gin.Context) {
	userID := c.GetString("userID")
	taskID := c.Param("id")

	var req AdjustPriorityRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	delta := domain.DefaultAdjustStep
	if req.Delta != nil {
		delta = *req.Delta
	}

	task, err := h.taskUsecase.AdjustPriority(c.Request.Context(), userID, taskID, delta)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, domain.ErrInvalidTitle), errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
