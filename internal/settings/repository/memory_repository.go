package repository

import (
	"context"
	"sync"

	"gemini-task-backend/internal/settings/domain"
)

type memorySettingsRepository struct {
	mu      sync.RWMutex
	prompts map[string]string
}

// NewMemorySettingsRepository creates an in-process SettingsRepository
func NewMemorySettingsRepository() SettingsRepository {
	return &memorySettingsRepository{prompts: make(map[string]string)}
}

func (r *memorySettingsRepository) Get(_ context.Context, userID string) (*domain.UserSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prompt, ok := r.prompts[userID]
	if !ok {
		return &domain.UserSettings{}, nil
	}
	return &domain.UserSettings{SystemPrompt: &prompt}, nil
}

func (r *memorySettingsRepository) SaveSystemPrompt(_ context.Context, userID, prompt string) error {
	r.mu.Lock()
	r.prompts[userID] = prompt
	r.mu.Unlock()
	return nil
}
