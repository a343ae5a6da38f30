package usecase

import (
	"context"
	"log"
	"strings"

	"gemini-task-backend/internal/task/domain"
	"gemini-task-backend/internal/task/repository"

	"github.com/google/uuid"
)

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo repository.TaskRepository
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(taskRepo repository.TaskRepository) TaskUsecase {
	return &taskUsecase{
		taskRepo: taskRepo,
	}
}

func (u *taskUsecase) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks, err := u.taskRepo.Load(ctx, userID)
	if err != nil {
		log.Printf("[TaskUsecase] Failed to load tasks for user %s: %v", userID, err)
		return nil, err
	}
	return domain.SortByEffectiveRank(tasks), nil
}

func (u *taskUsecase) ReplaceTasks(ctx context.Context, userID string, tasks []domain.Task) ([]domain.Task, error) {
	for _, t := range tasks {
		if strings.TrimSpace(t.Title) == "" {
			return nil, domain.ErrInvalidTitle
		}
		if t.Status != "" && t.Status != domain.TaskStatusTodo && t.Status != domain.TaskStatusDone {
			return nil, domain.ErrInvalidStatus
		}
	}

	normalized := domain.Normalize(tasks)
	if err := u.save(ctx, userID, normalized); err != nil {
		return nil, err
	}
	return domain.SortByEffectiveRank(normalized), nil
}

func (u *taskUsecase) CreateTask(ctx context.Context, userID string, input NewTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	tasks, err := u.taskRepo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	aiPriority := input.AIPriority
	if aiPriority == 0 {
		aiPriority = domain.DefaultAIPriority
	}
	band := input.Priority
	if !domain.IsValidPriority(string(band)) {
		band = domain.BandForAIPriority(aiPriority)
	}

	task := domain.Task{
		ID:         uuid.New().String(),
		Title:      title,
		DueDate:    input.DueDate,
		AIPriority: domain.ClampAIPriority(aiPriority),
		Priority:   band,
		Status:     domain.TaskStatusTodo,
		Reason:     input.Reason,
		Tags:       input.Tags,
	}
	task = domain.Normalize([]domain.Task{task})[0]

	tasks = append(tasks, task)
	if err := u.save(ctx, userID, tasks); err != nil {
		return nil, err
	}
	return &task, nil
}

func (u *taskUsecase) UpdateTask(ctx context.Context, userID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	return u.mutate(ctx, userID, taskID, patch.Apply)
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID, taskID string) error {
	tasks, err := u.taskRepo.Load(ctx, userID)
	if err != nil {
		return err
	}
	idx := domain.FindIndex(tasks, taskID)
	if idx < 0 {
		return domain.ErrTaskNotFound
	}
	tasks = append(tasks[:idx], tasks[idx+1:]...)
	return u.save(ctx, userID, tasks)
}

func (u *taskUsecase) ToggleStatus(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	return u.mutate(ctx, userID, taskID, func(t domain.Task) domain.Task {
		if t.Status == domain.TaskStatusDone {
			t.Status = domain.TaskStatusTodo
		} else {
			t.Status = domain.TaskStatusDone
		}
		return t
	})
}

func (u *taskUsecase) SetStatus(ctx context.Context, userID, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	if status != domain.TaskStatusTodo && status != domain.TaskStatusDone {
		return nil, domain.ErrInvalidStatus
	}
	return u.mutate(ctx, userID, taskID, func(t domain.Task) domain.Task {
		t.Status = status
		return t
	})
}

func (u *taskUsecase) AdjustPriority(ctx context.Context, userID, taskID string, delta int) (*domain.Task, error) {
	return u.mutate(ctx, userID, taskID, func(t domain.Task) domain.Task {
		v := domain.AdjustUserPriority(t.UserPriority, delta)
		t.UserPriority = &v
		return t
	})
}

func (u *taskUsecase) ApplyRanking(ctx context.Context, userID string, assignments []domain.RankAssignment) ([]domain.Task, error) {
	tasks, err := u.taskRepo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged, unknown := domain.ApplyRanking(tasks, assignments)
	for _, id := range unknown {
		log.Printf("[TaskUsecase] Ranking referenced unknown task %s for user %s, skipped", id, userID)
	}

	sorted := domain.SortByEffectiveRank(merged)
	if err := u.save(ctx, userID, sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}

func (u *taskUsecase) mutate(ctx context.Context, userID, taskID string, fn func(domain.Task) domain.Task) (*domain.Task, error) {
	tasks, err := u.taskRepo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := domain.FindIndex(tasks, taskID)
	if idx < 0 {
		return nil, domain.ErrTaskNotFound
	}

	tasks[idx] = fn(tasks[idx])
	if err := u.save(ctx, userID, tasks); err != nil {
		return nil, err
	}
	updated := tasks[idx]
	return &updated, nil
}

// save writes the collection. Failures are logged and returned; nothing is
// retried or queued.
func (u *taskUsecase) save(ctx context.Context, userID string, tasks []domain.Task) error {
	if err := u.taskRepo.Save(ctx, userID, tasks); err != nil {
		log.Printf("[TaskUsecase] Failed to save tasks for user %s: %v", userID, err)
		return err
	}
	return nil
}
