package usecase

import (
	"context"

	"gemini-task-backend/internal/task/domain"
)

// TaskUsecase defines the interface for task business logic. Every mutation
// is a read-modify-write of the user's whole collection.
type TaskUsecase interface {
	// ListTasks returns the collection ordered by effective rank
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)

	// ReplaceTasks overwrites the collection with the caller's copy
	ReplaceTasks(ctx context.Context, userID string, tasks []domain.Task) ([]domain.Task, error)

	// CreateTask appends a new task
	CreateTask(ctx context.Context, userID string, input NewTaskInput) (*domain.Task, error)

	// UpdateTask applies a patch to one task
	UpdateTask(ctx context.Context, userID, taskID string, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes one task
	DeleteTask(ctx context.Context, userID, taskID string) error

	// ToggleStatus flips a task between todo and done
	ToggleStatus(ctx context.Context, userID, taskID string) (*domain.Task, error)

	// SetStatus moves a task to an explicit status
	SetStatus(ctx context.Context, userID, taskID string, status domain.TaskStatus) (*domain.Task, error)

	// AdjustPriority bumps the user axis by delta, clamped to its range
	AdjustPriority(ctx context.Context, userID, taskID string, delta int) (*domain.Task, error)

	// ApplyRanking merges AI priorities and returns the re-sorted collection
	ApplyRanking(ctx context.Context, userID string, assignments []domain.RankAssignment) ([]domain.Task, error)
}

// NewTaskInput is what a manual add or a resolved chat turn provides.
// A zero AIPriority means "not ranked yet".
type NewTaskInput struct {
	Title      string
	DueDate    *string
	Priority   domain.Priority
	AIPriority int
	Reason     *string
	Tags       []string
}

// TaskUpdateRequest represents the fields that can be updated over HTTP
type TaskUpdateRequest struct {
	Title        *string  `json:"task,omitempty"`
	DueDate      *string  `json:"dueDate,omitempty"`
	UserPriority *int     `json:"userPriority,omitempty"`
	Reason       *string  `json:"reason,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// ToPatch converts the request. Neither the band nor aiPriority can be set
// by hand: both only come from model responses.
func (r TaskUpdateRequest) ToPatch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:        r.Title,
		DueDate:      r.DueDate,
		UserPriority: r.UserPriority,
		Reason:       r.Reason,
		Tags:         r.Tags,
	}
}
