package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// storedTask accepts every shape the web client has written over time:
// documents with "title" instead of "task", a numeric "priority" from before
// aiPriority existed, missing ids and float encoded numbers.
type storedTask struct {
	ID           string          `json:"id"`
	Task         string          `json:"task"`
	Title        string          `json:"title"`
	DueDate      *string         `json:"dueDate"`
	AIPriority   *float64        `json:"aiPriority"`
	UserPriority *float64        `json:"userPriority"`
	Priority     json.RawMessage `json:"priority"`
	Status       string          `json:"status"`
	Reason       *string         `json:"reason"`
	Tags         []string        `json:"tags"`
}

// DecodeTasks reads a stored list and repairs legacy entries.
func DecodeTasks(raw []byte) ([]Task, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []Task{}, nil
	}

	var stored []storedTask
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode task list: %w", err)
	}

	tasks := make([]Task, 0, len(stored))
	for _, s := range stored {
		tasks = append(tasks, s.normalize())
	}
	return tasks, nil
}

// EncodeTasks writes the list in its canonical stored form.
func EncodeTasks(tasks []Task) ([]byte, error) {
	return json.Marshal(Normalize(tasks))
}

// Normalize fills the fields every stored task must carry.
func Normalize(tasks []Task) []Task {
	out := Clone(tasks)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.New().String()
		}
		if out[i].Tags == nil {
			out[i].Tags = []string{}
		}
		if out[i].Status == "" {
			out[i].Status = TaskStatusTodo
		}
		if out[i].AIPriority == 0 {
			out[i].AIPriority = DefaultAIPriority
		}
		out[i].AIPriority = ClampAIPriority(out[i].AIPriority)
		if out[i].UserPriority != nil {
			v := ClampUserPriority(*out[i].UserPriority)
			out[i].UserPriority = &v
		}
		if !IsValidPriority(string(out[i].Priority)) {
			out[i].Priority = BandForAIPriority(out[i].AIPriority)
		}
	}
	return out
}

func (s storedTask) normalize() Task {
	t := Task{
		ID:      s.ID,
		Title:   s.Task,
		DueDate: s.DueDate,
		Status:  TaskStatus(s.Status),
		Reason:  s.Reason,
		Tags:    s.Tags,
	}
	if t.Title == "" {
		t.Title = s.Title
	}
	if t.Status != TaskStatusDone {
		t.Status = TaskStatusTodo
	}

	var legacyNumeric *float64
	if len(s.Priority) > 0 {
		var band string
		var num float64
		switch {
		case json.Unmarshal(s.Priority, &band) == nil:
			t.Priority = Priority(strings.ToLower(band))
		case json.Unmarshal(s.Priority, &num) == nil:
			legacyNumeric = &num
		}
	}

	switch {
	case s.AIPriority != nil:
		t.AIPriority = int(math.Round(*s.AIPriority))
	case legacyNumeric != nil:
		t.AIPriority = int(math.Round(*legacyNumeric))
	case IsValidPriority(string(t.Priority)):
		t.AIPriority = AIPriorityForBand(t.Priority)
	default:
		t.AIPriority = DefaultAIPriority
	}

	if s.UserPriority != nil {
		v := int(math.Round(*s.UserPriority))
		t.UserPriority = &v
	}

	return Normalize([]Task{t})[0]
}
