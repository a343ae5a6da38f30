package domain

import (
	"fmt"
	"strings"
	"time"

	taskdomain "gemini-task-backend/internal/task/domain"
)

// Mode selects which prompt is built and which response shape is expected
type Mode string

const (
	ModeRank     Mode = "rank"
	ModeExtract  Mode = "extract"
	ModeConverse Mode = "converse"
	ModeSuggest  Mode = "suggest"
)

// Action is the model's decision for one chat turn
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionClarify Action = "clarify"
)

// Sender identifies who wrote a Message
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// DefaultHistoryWindow is how many earlier messages go into a prompt
const DefaultHistoryWindow = 5

// WelcomeMessage is returned by suggest when there is nothing to suggest
const WelcomeMessage = "ようこそ！まだタスクがありません。チャットで最初のタスクを追加してみましょう。"

// Message is one turn of a conversation. Messages are only ever appended.
type Message struct {
	ID            string         `json:"id"`
	Sender        Sender         `json:"sender"`
	Content       string         `json:"content"`
	Timestamp     time.Time      `json:"timestamp"`
	SuggestedTask *ExtractedTask `json:"suggestedTask,omitempty"`
	Options       []string       `json:"options,omitempty"`
}

// FormatHistory renders the last n messages as "ユーザー: ..." / "AI: ..." lines
func FormatHistory(messages []Message, n int) string {
	if n <= 0 || len(messages) == 0 {
		return ""
	}
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "AI"
		if m.Sender == SenderUser {
			speaker = "ユーザー"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, m.Content))
	}
	return strings.Join(lines, "\n")
}

// ChatRequest is the body of POST /api/chat. Context is the rendered history;
// an empty context means this is the first turn.
type ChatRequest struct {
	Message       string            `json:"message" binding:"required"`
	Context       string            `json:"context"`
	SystemPrompt  *string           `json:"systemPrompt,omitempty"`
	ExistingTasks []taskdomain.Task `json:"existingTasks,omitempty"`
}

// ExtractedTask is the partial task a model sends back. Every field is
// optional so the same shape carries a draft, a finished task or a patch.
type ExtractedTask struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title,omitempty"`
	DueDate  *string  `json:"dueDate,omitempty"`
	Priority string   `json:"priority,omitempty" validate:"omitempty,oneof=high medium low"`
	Reason   *string  `json:"reason,omitempty"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,dive,required"`
}

// IsEmpty reports whether the model sent no fields at all
func (e ExtractedTask) IsEmpty() bool {
	return e.ID == "" && e.Title == "" && e.DueDate == nil && e.Priority == "" &&
		e.Reason == nil && len(e.Tags) == 0
}

// AIPriority maps the band onto the numeric axis (high 80, medium 50, low 20)
func (e ExtractedTask) AIPriority() int {
	return taskdomain.AIPriorityForBand(taskdomain.ParsePriority(e.Priority))
}

// ToPatch keeps only the fields the model actually changed
func (e ExtractedTask) ToPatch() taskdomain.TaskPatch {
	var patch taskdomain.TaskPatch
	if title := strings.TrimSpace(e.Title); title != "" {
		patch.Title = &title
	}
	patch.DueDate = e.DueDate
	if taskdomain.IsValidPriority(e.Priority) {
		band := taskdomain.Priority(e.Priority)
		patch.Priority = &band
	}
	patch.Reason = e.Reason
	if e.Tags != nil {
		patch.Tags = e.Tags
	}
	return patch
}

// ChatResult is what /api/chat returns. A degraded result has no action and
// carries the raw model text as Message.
type ChatResult struct {
	Message       string         `json:"message"`
	Action        Action         `json:"action,omitempty"`
	ExtractedTask ExtractedTask  `json:"extractedTask"`
	UpdatedTask   *ExtractedTask `json:"updatedTask,omitempty"`
	Complete      bool           `json:"complete"`
	Options       []string       `json:"options"`
}

// IsDegraded reports whether the model output could not be used
func (r ChatResult) IsDegraded() bool {
	return r.Action == ""
}

// Degraded builds the message-only fallback for raw model text
func Degraded(raw string) ChatResult {
	return ChatResult{
		Message:       strings.TrimSpace(raw),
		ExtractedTask: ExtractedTask{},
		Complete:      false,
		Options:       []string{},
	}
}

// SuggestRequest is the body of POST /api/suggest
type SuggestRequest struct {
	Tasks []taskdomain.Task `json:"tasks"`
}

// Suggestion highlights one task to focus on. SuggestedTaskID is empty when
// the list was empty or the model named no known task.
type Suggestion struct {
	SuggestedTaskID string `json:"suggestedTaskId"`
	Comment         string `json:"comment"`
}

// RankRequest is the body of POST /api/rank. Nil tasks means the stored collection.
type RankRequest struct {
	Tasks []taskdomain.Task `json:"tasks,omitempty"`
}

// RankResult is the collection after a ranking pass. Degraded means the model
// output was unusable and the collection was left as it was.
type RankResult struct {
	Tasks    []taskdomain.Task `json:"tasks"`
	Message  string            `json:"message,omitempty"`
	Degraded bool              `json:"degraded"`
}
