package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"gemini-task-backend/internal/settings/domain"
	"gemini-task-backend/internal/settings/repository"
)

// ErrPromptTooLong is returned when a stored persona would exceed the limit
var ErrPromptTooLong = errors.New("system prompt is too long")

// SettingsUsecase manages per-user settings
type SettingsUsecase interface {
	// GetSystemPrompt returns the stored persona, or the default with isDefault set
	GetSystemPrompt(ctx context.Context, userID string) (prompt string, isDefault bool, err error)
	// SaveSystemPrompt stores a persona. A blank prompt resets to the default.
	SaveSystemPrompt(ctx context.Context, userID, prompt string) error
	// ResolveSystemPrompt never fails: store errors fall back to the default
	ResolveSystemPrompt(ctx context.Context, userID string) string
}

type settingsUsecase struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsUsecase creates a new SettingsUsecase
func NewSettingsUsecase(settingsRepo repository.SettingsRepository) SettingsUsecase {
	return &settingsUsecase{settingsRepo: settingsRepo}
}

func (u *settingsUsecase) GetSystemPrompt(ctx context.Context, userID string) (string, bool, error) {
	settings, err := u.settingsRepo.Get(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if settings.SystemPrompt == nil || strings.TrimSpace(*settings.SystemPrompt) == "" {
		return domain.DefaultSystemPrompt, true, nil
	}
	return *settings.SystemPrompt, false, nil
}

func (u *settingsUsecase) SaveSystemPrompt(ctx context.Context, userID, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if utf8.RuneCountInString(prompt) > domain.MaxSystemPromptLength {
		return ErrPromptTooLong
	}
	if err := u.settingsRepo.SaveSystemPrompt(ctx, userID, prompt); err != nil {
		log.Printf("[SettingsUsecase] Failed to save system prompt for user %s: %v", userID, err)
		return err
	}
	return nil
}

func (u *settingsUsecase) ResolveSystemPrompt(ctx context.Context, userID string) string {
	prompt, _, err := u.GetSystemPrompt(ctx, userID)
	if err != nil {
		log.Printf("[SettingsUsecase] Failed to load system prompt for user %s, using default: %v", userID, err)
		return domain.DefaultSystemPrompt
	}
	return prompt
}
