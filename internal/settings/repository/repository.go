package repository

import (
	"context"

	"gemini-task-backend/internal/settings/domain"
)

// SettingsRepository persists one settings document per user
type SettingsRepository interface {
	// Get returns the stored settings, or a zero value when none exist
	Get(ctx context.Context, userID string) (*domain.UserSettings, error)
	// SaveSystemPrompt merges the prompt into the user's document
	SaveSystemPrompt(ctx context.Context, userID, prompt string) error
}
