package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"gemini-task-backend/internal/chat/domain"
	settingsdomain "gemini-task-backend/internal/settings/domain"
	taskdomain "gemini-task-backend/internal/task/domain"
)

// PromptInput is everything a prompt is built from. Building is pure: equal
// inputs always produce the same text.
type PromptInput struct {
	Mode      domain.Mode
	Persona   string
	Tasks     []taskdomain.Task
	History   string
	Utterance string
}

// promptTask is the slice of a task the model is shown
type promptTask struct {
	ID       string   `json:"id"`
	Title    string   `json:"task"`
	DueDate  *string  `json:"dueDate"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
}

const rankRules = `以下のタスク一覧に対し、緊急度・重要度・期限などを考慮して aiPriority（重要度）を付けてください。
ルール:
- aiPriority は必ず 1（最も低い）〜100（最も高い）の範囲の整数にすること
- "task" にはタスク一覧の文字列をそのまま書くこと（言い換えない）
- 一覧のすべてのタスクを一度ずつ含めること
- JSON 配列のみを返し、説明文やコードブロックは付けないこと`

const rankShape = `[
  {"task": "メール返信", "aiPriority": 90},
  {"task": "昼ごはん", "aiPriority": 20}
]`

const chatRules = `ユーザーの発言から、タスクの追加・既存タスクの更新・確認の質問のいずれか一つを判断してください。
ルール:
- 既存タスクの内容に言及している場合は "update" とし、既存タスクの "id" をそのまま使うこと
- 新しいタスクの場合は "create" とし、タイトルが分かれば "complete": true にすること
- 必要な情報が足りない場合は "clarify" とし、質問を "message" に、選択肢を "options" に入れること
- "priority" は "high"・"medium"・"low" のいずれか
- "dueDate" は発言の表現のまま（例: "明日"、"2024-05-01"）
- "tags" は発言中のハッシュタグなど短いラベルの配列
- "update" では変更するフィールドだけを含めること
- JSON オブジェクトを一つだけ返し、前後に文章を付けないこと`

const chatShape = `{
  "action": "create" | "update" | "clarify",
  "message": "ユーザーへの返答",
  "extractedTask": {"title": "...", "dueDate": "...", "priority": "high" | "medium" | "low", "reason": "...", "tags": ["..."]},
  "updatedTask": {"id": "既存タスクのid", "title": "...", "dueDate": "...", "priority": "...", "reason": "...", "tags": ["..."]},
  "complete": true | false,
  "options": ["選択肢1", "選択肢2"]
}`

const suggestRules = `以下のタスク一覧から、ユーザーが今すぐ取り組むべきタスクを一つ選び、短い励ましのコメントを添えてください。
ルール:
- "suggestedTaskId" にはタスク一覧の "id" をそのまま書くこと
- "comment" は日本語で 1〜2 文
- JSON オブジェクトを一つだけ返すこと`

const suggestShape = `{"suggestedTaskId": "タスクのid", "comment": "コメント"}`

// BuildPrompt renders the prompt for in.Mode. Sections are emitted in a fixed
// order: persona, rules, task data, response shape, then history and the
// utterance last.
func BuildPrompt(in PromptInput) (string, error) {
	persona := strings.TrimSpace(in.Persona)
	if persona == "" {
		persona = settingsdomain.DefaultSystemPrompt
	}

	var rules, shape, data string
	switch in.Mode {
	case domain.ModeRank:
		titles := make([]string, 0, len(in.Tasks))
		for _, t := range in.Tasks {
			titles = append(titles, t.Title)
		}
		raw, err := json.Marshal(titles)
		if err != nil {
			return "", fmt.Errorf("failed to encode task titles: %w", err)
		}
		rules, shape, data = rankRules, rankShape, string(raw)

	case domain.ModeExtract, domain.ModeConverse:
		raw, err := encodePromptTasks(taskdomain.TodoTasks(in.Tasks))
		if err != nil {
			return "", err
		}
		rules, shape, data = chatRules, chatShape, raw

	case domain.ModeSuggest:
		raw, err := encodePromptTasks(in.Tasks)
		if err != nil {
			return "", err
		}
		rules, shape, data = suggestRules, suggestShape, raw

	default:
		return "", fmt.Errorf("unknown prompt mode %q", in.Mode)
	}

	var sb strings.Builder
	sb.WriteString("あなたはタスク管理AIです。\n")
	sb.WriteString(persona)
	sb.WriteString("\n\n")
	sb.WriteString(rules)
	sb.WriteString("\n\nタスク: ")
	sb.WriteString(data)
	sb.WriteString("\n\n返答の形式:\n")
	sb.WriteString(shape)

	if in.Mode == domain.ModeConverse {
		if history := strings.TrimSpace(in.History); history != "" {
			sb.WriteString("\n\nこれまでの会話:\n")
			sb.WriteString(history)
		}
	}
	if in.Mode == domain.ModeExtract || in.Mode == domain.ModeConverse {
		sb.WriteString("\n\nユーザー: ")
		sb.WriteString(strings.TrimSpace(in.Utterance))
	}
	sb.WriteString("\n")

	return sb.String(), nil
}

func encodePromptTasks(tasks []taskdomain.Task) (string, error) {
	view := make([]promptTask, 0, len(tasks))
	for _, t := range tasks {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		view = append(view, promptTask{
			ID:       t.ID,
			Title:    t.Title,
			DueDate:  t.DueDate,
			Priority: string(t.Priority),
			Tags:     tags,
		})
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks: %w", err)
	}
	return string(raw), nil
}
