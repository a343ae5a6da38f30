package domain

// DefaultSystemPrompt is used whenever a user has not stored a persona of their own.
const DefaultSystemPrompt = "あなたは優秀なタスク管理アシスタントです。ユーザーのタスク管理を効率的にサポートしてください。"

// MaxSystemPromptLength bounds what a user can store, in runes.
const MaxSystemPromptLength = 4000

// UserSettings is the per-user settings document.
// A nil SystemPrompt means the user never saved one.
type UserSettings struct {
	SystemPrompt *string `json:"systemPrompt" firestore:"systemPrompt"`
}
