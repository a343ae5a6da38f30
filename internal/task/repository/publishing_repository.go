package repository

import (
	"context"
	"log"

	"gemini-task-backend/internal/task/domain"
)

// EventPublisher announces that a user's collection changed.
type EventPublisher interface {
	PublishTasksSaved(ctx context.Context, userID string, taskCount int) error
}

// publishingTaskRepository wraps a TaskRepository and emits an event after
// every successful save. Publish failures are logged and never fail the save.
type publishingTaskRepository struct {
	TaskRepository
	publisher EventPublisher
}

// WithEventPublisher decorates repo so that saves are announced through publisher
func WithEventPublisher(repo TaskRepository, publisher EventPublisher) TaskRepository {
	if publisher == nil {
		return repo
	}
	return &publishingTaskRepository{TaskRepository: repo, publisher: publisher}
}

func (r *publishingTaskRepository) Save(ctx context.Context, userID string, tasks []domain.Task) error {
	if err := r.TaskRepository.Save(ctx, userID, tasks); err != nil {
		return err
	}
	if err := r.publisher.PublishTasksSaved(ctx, userID, len(tasks)); err != nil {
		log.Printf("[TaskRepo] Failed to publish save event for user %s: %v", userID, err)
	}
	return nil
}
