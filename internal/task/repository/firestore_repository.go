package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gemini-task-backend/internal/task/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TasksCollection is the Firestore collection holding one document per user.
const TasksCollection = "tasks"

// firestoreTaskRepository stores tasks/{uid} as {list: Task[]}
type firestoreTaskRepository struct {
	client *firestore.Client
}

// NewFirestoreTaskRepository creates a Firestore-backed TaskRepository
func NewFirestoreTaskRepository(client *firestore.Client) TaskRepository {
	return &firestoreTaskRepository{client: client}
}

func (r *firestoreTaskRepository) Load(ctx context.Context, userID string) ([]domain.Task, error) {
	snap, err := r.client.Collection(TasksCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []domain.Task{}, nil
		}
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	// Go through JSON so documents written by older clients get repaired the
	// same way regardless of the backend.
	raw, err := json.Marshal(snap.Data()["list"])
	if err != nil {
		return nil, fmt.Errorf("failed to read task document: %w", err)
	}
	return domain.DecodeTasks(raw)
}

func (r *firestoreTaskRepository) Save(ctx context.Context, userID string, tasks []domain.Task) error {
	_, err := r.client.Collection(TasksCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"list": domain.Normalize(tasks),
	})
	if err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}
