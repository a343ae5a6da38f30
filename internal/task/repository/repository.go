package repository

import (
	"context"

	"gemini-task-backend/internal/task/domain"
)

// TaskRepository owns a user's task collection. The collection is one
// document: callers always read it whole and write it whole, and the last
// write wins.
type TaskRepository interface {
	// Load returns the user's collection, or an empty one if nothing was saved yet.
	Load(ctx context.Context, userID string) ([]domain.Task, error)

	// Save replaces the user's collection.
	Save(ctx context.Context, userID string, tasks []domain.Task) error
}
