package repository

import (
	"context"
	"fmt"

	"gemini-task-backend/internal/settings/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SettingsCollection holds userSettings/{uid} documents
const SettingsCollection = "userSettings"

type firestoreSettingsRepository struct {
	client *firestore.Client
}

// NewFirestoreSettingsRepository creates a Firestore-backed SettingsRepository
func NewFirestoreSettingsRepository(client *firestore.Client) SettingsRepository {
	return &firestoreSettingsRepository{client: client}
}

func (r *firestoreSettingsRepository) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	snap, err := r.client.Collection(SettingsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &domain.UserSettings{}, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var settings domain.UserSettings
	if err := snap.DataTo(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &settings, nil
}

func (r *firestoreSettingsRepository) SaveSystemPrompt(ctx context.Context, userID, prompt string) error {
	_, err := r.client.Collection(SettingsCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"systemPrompt": prompt,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
