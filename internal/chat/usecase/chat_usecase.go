package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gemini-task-backend/internal/chat/domain"
	settingsusecase "gemini-task-backend/internal/settings/usecase"
	taskdomain "gemini-task-backend/internal/task/domain"
	taskusecase "gemini-task-backend/internal/task/usecase"
	"gemini-task-backend/pkg/ai"
)

// ChatUsecase drives the prompt, model and parser round trip for each mode
type ChatUsecase interface {
	// Converse handles one chat turn and returns the parsed or degraded result
	Converse(ctx context.Context, userID string, req domain.ChatRequest) (*domain.ChatResult, error)

	// Suggest picks one task to focus on; an empty list never reaches the model
	Suggest(ctx context.Context, userID string, tasks []taskdomain.Task) (*domain.Suggestion, error)

	// Rank asks the model for aiPriority values and persists the merged collection.
	// Nil tasks ranks the stored collection; otherwise the given list replaces it.
	Rank(ctx context.Context, userID string, tasks []taskdomain.Task) (*domain.RankResult, error)
}

type chatUsecase struct {
	generator       ai.TextGenerator
	taskUsecase     taskusecase.TaskUsecase
	settingsUsecase settingsusecase.SettingsUsecase
}

// NewChatUsecase creates a new ChatUsecase
func NewChatUsecase(generator ai.TextGenerator, taskUsecase taskusecase.TaskUsecase, settingsUsecase settingsusecase.SettingsUsecase) ChatUsecase {
	return &chatUsecase{
		generator:       generator,
		taskUsecase:     taskUsecase,
		settingsUsecase: settingsUsecase,
	}
}

func (u *chatUsecase) Converse(ctx context.Context, userID string, req domain.ChatRequest) (*domain.ChatResult, error) {
	mode := domain.ModeConverse
	if strings.TrimSpace(req.Context) == "" {
		mode = domain.ModeExtract
	}

	existing := req.ExistingTasks
	if existing == nil {
		tasks, err := u.taskUsecase.ListTasks(ctx, userID)
		if err != nil {
			log.Printf("[ChatUsecase] Continuing without existing tasks for user %s: %v", userID, err)
		}
		existing = tasks
	}
	existing = taskdomain.TodoTasks(existing)

	prompt, err := BuildPrompt(PromptInput{
		Mode:      mode,
		Persona:   u.persona(ctx, userID, req.SystemPrompt),
		Tasks:     existing,
		History:   req.Context,
		Utterance: req.Message,
	})
	if err != nil {
		return nil, err
	}

	text, err := u.generator.GenerateText(ctx, prompt)
	if err != nil {
		if reason, blocked := blockedReason(err); blocked {
			degraded := domain.Degraded(blockedMessage(reason))
			return &degraded, nil
		}
		return nil, err
	}

	result := ParseChatResponse(text, existing)
	if result.IsDegraded() {
		log.Printf("[ChatUsecase] Degraded chat reply for user %s", userID)
	}
	return &result, nil
}

func (u *chatUsecase) Suggest(ctx context.Context, userID string, tasks []taskdomain.Task) (*domain.Suggestion, error) {
	todo := taskdomain.TodoTasks(tasks)
	if len(todo) == 0 {
		return &domain.Suggestion{Comment: domain.WelcomeMessage}, nil
	}

	prompt, err := BuildPrompt(PromptInput{
		Mode:    domain.ModeSuggest,
		Persona: u.persona(ctx, userID, nil),
		Tasks:   taskdomain.SortByEffectiveRank(todo),
	})
	if err != nil {
		return nil, err
	}

	text, err := u.generator.GenerateText(ctx, prompt)
	if err != nil {
		if reason, blocked := blockedReason(err); blocked {
			return &domain.Suggestion{Comment: blockedMessage(reason)}, nil
		}
		return nil, err
	}

	suggestion := ParseSuggestResponse(text, todo)
	return &suggestion, nil
}

func (u *chatUsecase) Rank(ctx context.Context, userID string, tasks []taskdomain.Task) (*domain.RankResult, error) {
	given := tasks != nil
	if !given {
		stored, err := u.taskUsecase.ListTasks(ctx, userID)
		if err != nil {
			return nil, err
		}
		tasks = stored
	}
	if len(tasks) == 0 {
		return &domain.RankResult{Tasks: []taskdomain.Task{}}, nil
	}

	prompt, err := BuildPrompt(PromptInput{
		Mode:    domain.ModeRank,
		Persona: u.persona(ctx, userID, nil),
		Tasks:   tasks,
	})
	if err != nil {
		return nil, err
	}

	text, err := u.generator.GenerateText(ctx, prompt)
	if err != nil {
		if reason, blocked := blockedReason(err); blocked {
			return &domain.RankResult{
				Tasks:    taskdomain.SortByEffectiveRank(tasks),
				Message:  blockedMessage(reason),
				Degraded: true,
			}, nil
		}
		return nil, err
	}

	assignments, ok := ParseRankResponse(text, tasks)
	if !ok || len(assignments) == 0 {
		log.Printf("[ChatUsecase] Rank reply for user %s had no usable entries", userID)
		return &domain.RankResult{
			Tasks:    taskdomain.SortByEffectiveRank(tasks),
			Message:  strings.TrimSpace(text),
			Degraded: true,
		}, nil
	}

	var ranked []taskdomain.Task
	if given {
		merged, _ := taskdomain.ApplyRanking(tasks, assignments)
		ranked, err = u.taskUsecase.ReplaceTasks(ctx, userID, merged)
	} else {
		ranked, err = u.taskUsecase.ApplyRanking(ctx, userID, assignments)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save ranking: %w", err)
	}
	return &domain.RankResult{Tasks: ranked}, nil
}

// persona prefers the request's prompt, then the stored one, then the default
func (u *chatUsecase) persona(ctx context.Context, userID string, requested *string) string {
	if requested != nil && strings.TrimSpace(*requested) != "" {
		return *requested
	}
	return u.settingsUsecase.ResolveSystemPrompt(ctx, userID)
}

func blockedReason(err error) (string, bool) {
	var blocked *ai.BlockedError
	if errors.As(err, &blocked) {
		return blocked.FinishReason, true
	}
	return "", false
}

func blockedMessage(reason string) string {
	return fmt.Sprintf("LLMからの返答がありませんでした。理由: %s", reason)
}
