package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gemini-task-backend/internal/settings/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserSetting is the relational form of userSettings/{uid}
type UserSetting struct {
	UserID       string `gorm:"primaryKey"`
	SystemPrompt *string
	UpdatedAt    time.Time
}

type gormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a GORM-backed SettingsRepository
func NewGormSettingsRepository(db *gorm.DB) (SettingsRepository, error) {
	if err := db.AutoMigrate(&UserSetting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate user settings: %w", err)
	}
	return &gormSettingsRepository{db: db}, nil
}

func (r *gormSettingsRepository) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	var row UserSetting
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.UserSettings{}, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &domain.UserSettings{SystemPrompt: row.SystemPrompt}, nil
}

func (r *gormSettingsRepository) SaveSystemPrompt(ctx context.Context, userID, prompt string) error {
	row := &UserSetting{UserID: userID, SystemPrompt: &prompt, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"system_prompt", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
