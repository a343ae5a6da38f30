package domain

import "errors"

// Priority is the coarse band kept for older clients that display high/medium/low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusTodo TaskStatus = "todo"
	TaskStatusDone TaskStatus = "done"
)

const (
	MinAIPriority     = 1
	MaxAIPriority     = 100
	DefaultAIPriority = 50

	MinUserPriority     = 0
	MaxUserPriority     = 100
	NeutralUserPriority = 50

	// DefaultAdjustStep is the size of one user "bump" up or down.
	DefaultAdjustStep = 10
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidTitle  = errors.New("task title must not be empty")
	ErrInvalidStatus = errors.New("task status must be todo or done")
)

// Task is one entry of a user's task collection. JSON keys match the documents
// written by the web client, so the title is stored under "task".
// Optional fields are pointers without omitempty: an unset value is written as
// an explicit null instead of disappearing from the document.
type Task struct {
	ID           string     `json:"id" firestore:"id"`
	Title        string     `json:"task" firestore:"task"`
	DueDate      *string    `json:"dueDate" firestore:"dueDate"`
	AIPriority   int        `json:"aiPriority" firestore:"aiPriority"`
	UserPriority *int       `json:"userPriority" firestore:"userPriority"`
	Priority     Priority   `json:"priority" firestore:"priority"`
	Status       TaskStatus `json:"status" firestore:"status"`
	Reason       *string    `json:"reason" firestore:"reason"`
	Tags         []string   `json:"tags" firestore:"tags"`
}

// IsTodo reports whether the task is still open.
func (t Task) IsTodo() bool {
	return t.Status != TaskStatusDone
}

// FindIndex returns the position of the task with the given id, or -1.
func FindIndex(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// TodoTasks returns the open tasks in their original order.
func TodoTasks(tasks []Task) []Task {
	todo := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsTodo() {
			todo = append(todo, t)
		}
	}
	return todo
}

// Clone copies a task collection deeply enough that callers can mutate the
// copy without touching the original.
func Clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.DueDate != nil {
			v := *t.DueDate
			t.DueDate = &v
		}
		if t.UserPriority != nil {
			v := *t.UserPriority
			t.UserPriority = &v
		}
		if t.Reason != nil {
			v := *t.Reason
			t.Reason = &v
		}
		if t.Tags != nil {
			t.Tags = append([]string(nil), t.Tags...)
		}
		out[i] = t
	}
	return out
}

// ParsePriority maps free text onto a band, defaulting to medium.
func ParsePriority(p string) Priority {
	switch p {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// IsValidPriority reports whether p is one of the three bands.
func IsValidPriority(p string) bool {
	switch Priority(p) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
