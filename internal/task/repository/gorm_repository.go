package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gemini-task-backend/internal/task/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskCollection is the relational form of the per-user document: one row
// per user with the whole list as JSONB.
type TaskCollection struct {
	UserID    string `gorm:"primaryKey"`
	List      []byte `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM-based TaskRepository
func NewGormTaskRepository(db *gorm.DB) (TaskRepository, error) {
	if err := db.AutoMigrate(&TaskCollection{}); err != nil {
		return nil, fmt.Errorf("failed to migrate task collections: %w", err)
	}
	return &gormTaskRepository{db: db}, nil
}

func (r *gormTaskRepository) Load(ctx context.Context, userID string) ([]domain.Task, error) {
	var row TaskCollection
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []domain.Task{}, nil
		}
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return domain.DecodeTasks(row.List)
}

func (r *gormTaskRepository) Save(ctx context.Context, userID string, tasks []domain.Task) error {
	raw, err := domain.EncodeTasks(tasks)
	if err != nil {
		return err
	}

	row := &TaskCollection{
		UserID:    userID,
		List:      raw,
		UpdatedAt: time.Now(),
	}

	// Atomic upsert: INSERT ... ON CONFLICT (user_id) DO UPDATE
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"list", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}
