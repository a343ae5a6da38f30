package usecase

import (
	"encoding/json"
	"log"
	"math"
	"strconv"
	"strings"

	"gemini-task-backend/internal/chat/domain"
	taskdomain "gemini-task-backend/internal/task/domain"
	"gemini-task-backend/pkg/fuzzy"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ExtractJSON returns the first balanced JSON value opened by open ('{' or '[')
// anywhere in text. Brackets inside string literals are ignored and a
// balanced candidate that is not valid JSON is skipped.
func ExtractJSON(text string, open byte) (string, bool) {
	var closer byte
	switch open {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	default:
		return "", false
	}

	for start := strings.IndexByte(text, open); start >= 0; {
		if end := matchClose(text, start, open, closer); end > 0 {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchClose returns the index of the bracket closing text[start], or -1
func matchClose(text string, start int, open, closer byte) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

type chatPayload struct {
	Action        domain.Action         `json:"action" validate:"required,oneof=create update clarify"`
	Message       string                `json:"message"`
	ExtractedTask *domain.ExtractedTask `json:"extractedTask"`
	UpdatedTask   *domain.ExtractedTask `json:"updatedTask"`
	Complete      bool                  `json:"complete"`
	Options       []string              `json:"options" validate:"omitempty,dive,required"`
}

// ParseChatResponse turns model text into a ChatResult. Anything unusable
// yields domain.Degraded(raw); this never fails.
func ParseChatResponse(raw string, existing []taskdomain.Task) domain.ChatResult {
	candidate, ok := ExtractJSON(raw, '{')
	if !ok {
		return domain.Degraded(raw)
	}

	var payload chatPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		log.Printf("[ResponseParser] Chat JSON did not match the expected shape: %v", err)
		return domain.Degraded(raw)
	}
	payload.Action = domain.Action(strings.ToLower(strings.TrimSpace(string(payload.Action))))
	lowerBand(payload.ExtractedTask)
	lowerBand(payload.UpdatedTask)

	if err := validate.Struct(payload); err != nil {
		log.Printf("[ResponseParser] Chat JSON failed validation: %v", err)
		return domain.Degraded(raw)
	}

	result := domain.ChatResult{
		Message:       strings.TrimSpace(payload.Message),
		Action:        payload.Action,
		ExtractedTask: domain.ExtractedTask{},
		Options:       payload.Options,
	}
	if result.Options == nil {
		result.Options = []string{}
	}
	if payload.ExtractedTask != nil {
		result.ExtractedTask = *payload.ExtractedTask
	}

	switch payload.Action {
	case domain.ActionCreate:
		result.ExtractedTask.Title = strings.TrimSpace(result.ExtractedTask.Title)
		// complete without a title cannot be saved; keep asking instead
		result.Complete = payload.Complete && result.ExtractedTask.Title != ""

	case domain.ActionUpdate:
		target := payload.UpdatedTask
		if target == nil {
			target = payload.ExtractedTask
		}
		if target == nil {
			return domain.Degraded(raw)
		}
		id, found := resolveTaskID(*target, existing)
		if !found {
			log.Printf("[ResponseParser] Update referenced unknown task %q", target.ID)
			return domain.Degraded(raw)
		}
		updated := *target
		updated.ID = id
		result.UpdatedTask = &updated
		result.Complete = true

	case domain.ActionClarify:
		if result.Message == "" {
			return domain.Degraded(raw)
		}
	}

	return result
}

func lowerBand(t *domain.ExtractedTask) {
	if t != nil {
		t.Priority = strings.ToLower(strings.TrimSpace(t.Priority))
	}
}

// resolveTaskID accepts a known id, or failing that a title that names one task
func resolveTaskID(t domain.ExtractedTask, existing []taskdomain.Task) (string, bool) {
	if t.ID != "" && taskdomain.FindIndex(existing, t.ID) >= 0 {
		return t.ID, true
	}
	for _, query := range []string{t.ID, t.Title} {
		if idx := matchTitle(query, existing); idx >= 0 {
			return existing[idx].ID, true
		}
	}
	return "", false
}

func matchTitle(query string, tasks []taskdomain.Task) int {
	if strings.TrimSpace(query) == "" || len(tasks) == 0 {
		return -1
	}
	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}
	idx, _ := fuzzy.BestMatch(query, titles)
	return idx
}

type rankEntry struct {
	Task       string          `json:"task" validate:"required"`
	AIPriority json.RawMessage `json:"aiPriority"`
	Priority   json.RawMessage `json:"priority"`
}

// ParseRankResponse reads a ranking array and matches names to tasks.
// Values are clamped to [1,100]. A name repeated for tasks that share a
// title ranks each of them in turn; other unmatched or repeated names are
// logged and skipped. ok is false when no usable array was found.
func ParseRankResponse(raw string, tasks []taskdomain.Task) (assignments []taskdomain.RankAssignment, ok bool) {
	candidate, found := ExtractJSON(raw, '[')
	if !found {
		return nil, false
	}

	var entries []rankEntry
	if err := json.Unmarshal([]byte(candidate), &entries); err != nil {
		log.Printf("[ResponseParser] Rank JSON did not match the expected shape: %v", err)
		return nil, false
	}

	seen := make(map[string]bool, len(entries))
	assignments = make([]taskdomain.RankAssignment, 0, len(entries))
	for _, e := range entries {
		if err := validate.Struct(e); err != nil {
			log.Printf("[ResponseParser] Skipping rank entry without a task name")
			continue
		}
		value, valid := rankValue(e.AIPriority)
		if !valid {
			// older prompts asked for "priority"
			value, valid = rankValue(e.Priority)
		}
		if !valid {
			log.Printf("[ResponseParser] Skipping rank entry %q without a priority", e.Task)
			continue
		}

		idx := matchTitle(e.Task, tasks)
		if idx < 0 {
			log.Printf("[ResponseParser] Rank entry %q matches no task, skipped", e.Task)
			continue
		}
		idx = unrankedNamesake(idx, tasks, seen)
		if idx < 0 {
			log.Printf("[ResponseParser] Rank entry %q repeats a task, skipped", e.Task)
			continue
		}
		id := tasks[idx].ID
		seen[id] = true
		assignments = append(assignments, taskdomain.RankAssignment{
			TaskID:     id,
			AIPriority: taskdomain.ClampAIPriority(value),
		})
	}
	return assignments, true
}

// unrankedNamesake returns idx when that task is still unranked, otherwise
// the first unranked task whose title normalizes the same, or -1. Tasks that
// share a title are ranked in list order.
func unrankedNamesake(idx int, tasks []taskdomain.Task, seen map[string]bool) int {
	if !seen[tasks[idx].ID] {
		return idx
	}
	title := fuzzy.Normalize(tasks[idx].Title)
	for i, t := range tasks {
		if !seen[t.ID] && fuzzy.Normalize(t.Title) == title {
			return i
		}
	}
	return -1
}

// rankValue reads a number, a numeric string or a band name
func rankValue(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return roundClamped(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return roundClamped(n)
	}
	if taskdomain.IsValidPriority(s) {
		return taskdomain.AIPriorityForBand(taskdomain.Priority(s)), true
	}
	return 0, false
}

// roundClamped clamps before converting so huge values cannot overflow int
func roundClamped(f float64) (int, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	f = math.Max(taskdomain.MinAIPriority, math.Min(taskdomain.MaxAIPriority, f))
	return int(math.Round(f)), true
}

type suggestPayload struct {
	SuggestedTaskID string `json:"suggestedTaskId"`
	Comment         string `json:"comment" validate:"required"`
}

// ParseSuggestResponse reads a suggestion. A suggestion naming no known task
// keeps its comment with an empty id; unusable text becomes the comment.
func ParseSuggestResponse(raw string, tasks []taskdomain.Task) domain.Suggestion {
	degraded := domain.Suggestion{Comment: strings.TrimSpace(raw)}

	candidate, ok := ExtractJSON(raw, '{')
	if !ok {
		return degraded
	}
	var payload suggestPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return degraded
	}
	if err := validate.Struct(payload); err != nil {
		return degraded
	}

	s := domain.Suggestion{Comment: strings.TrimSpace(payload.Comment)}
	switch {
	case taskdomain.FindIndex(tasks, payload.SuggestedTaskID) >= 0:
		s.SuggestedTaskID = payload.SuggestedTaskID
	default:
		if idx := matchTitle(payload.SuggestedTaskID, tasks); idx >= 0 {
			s.SuggestedTaskID = tasks[idx].ID
		} else {
			log.Printf("[ResponseParser] Suggestion named unknown task %q", payload.SuggestedTaskID)
		}
	}
	return s
}
