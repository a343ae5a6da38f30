package repository

import (
	"context"
	"sync"

	"gemini-task-backend/internal/task/domain"
)

// memoryTaskRepository keeps encoded documents in a map. It serialises like
// the real stores so round trips behave the same.
type memoryTaskRepository struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryTaskRepository creates an in-process TaskRepository for local runs and tests
func NewMemoryTaskRepository() TaskRepository {
	return &memoryTaskRepository{docs: make(map[string][]byte)}
}

func (r *memoryTaskRepository) Load(_ context.Context, userID string) ([]domain.Task, error) {
	r.mu.RLock()
	raw, ok := r.docs[userID]
	r.mu.RUnlock()
	if !ok {
		return []domain.Task{}, nil
	}
	return domain.DecodeTasks(raw)
}

func (r *memoryTaskRepository) Save(_ context.Context, userID string, tasks []domain.Task) error {
	raw, err := domain.EncodeTasks(tasks)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.docs[userID] = raw
	r.mu.Unlock()
	return nil
}
