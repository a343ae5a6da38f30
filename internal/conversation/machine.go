package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	chatdomain "gemini-task-backend/internal/chat/domain"
	taskdomain "gemini-task-backend/internal/task/domain"

	"github.com/google/uuid"
)

// State is where a conversation stands between turns
type State string

const (
	StateIdle       State = "idle"
	StateClarifying State = "clarifying"
	StateResolved   State = "resolved"
)

const (
	// ApologyMessage is appended whenever a turn fails on the network or auth path
	ApologyMessage = "すみません、エラーが発生しました。もう一度お試しください。"

	createdFormat = "タスク「%s」を追加しました！"
	updatedFormat = "タスク「%s」を更新しました！"
)

var (
	ErrEmptyMessage   = errors.New("message must not be empty")
	ErrNoSuchOption   = errors.New("no such quick reply option")
	ErrInvalidSession = errors.New("session needs a user id and credentials")
)

// TokenSource hands out the current bearer credential
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Session is the injected per-user context
type Session struct {
	UserID      string
	Credentials TokenSource
	Theme       string
}

// Relay performs one chat round trip
type Relay interface {
	Chat(ctx context.Context, token string, req chatdomain.ChatRequest) (*chatdomain.ChatResult, error)
}

// Store reads and writes a user's whole task collection
type Store interface {
	Load(ctx context.Context, userID string) ([]taskdomain.Task, error)
	Save(ctx context.Context, userID string, tasks []taskdomain.Task) error
}

// Outcome describes what one turn did
type Outcome struct {
	State    State
	Messages []chatdomain.Message
	Created  *taskdomain.Task
	Updated  *taskdomain.Task
	Degraded bool
}

// Option configures a Machine
type Option func(*Machine)

// WithHistoryWindow sets how many earlier messages are sent as context
func WithHistoryWindow(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.window = n
		}
	}
}

// WithTransitionHook registers fn to be called on every state change
func WithTransitionHook(fn func(from, to State)) Option {
	return func(m *Machine) { m.hook = fn }
}

// WithClock replaces time.Now for message timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// Machine runs one user's conversation. It is not safe for concurrent use;
// a session is driven one turn at a time.
type Machine struct {
	session Session
	relay   Relay
	store   Store

	window  int
	hook    func(from, to State)
	now     func() time.Time
	state   State
	history []chatdomain.Message
	options []string
}

// New creates a Machine in the idle state
func New(session Session, relay Relay, store Store, opts ...Option) (*Machine, error) {
	if strings.TrimSpace(session.UserID) == "" || session.Credentials == nil {
		return nil, ErrInvalidSession
	}
	m := &Machine{
		session: session,
		relay:   relay,
		store:   store,
		window:  chatdomain.DefaultHistoryWindow,
		now:     time.Now,
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Machine) State() State { return m.state }

// History returns a copy of every message so far
func (m *Machine) History() []chatdomain.Message {
	return append([]chatdomain.Message(nil), m.history...)
}

// Options returns the quick replies offered by the last clarifying turn
func (m *Machine) Options() []string {
	return append([]string(nil), m.options...)
}

// SelectOption sends the quick reply at index as the user's next message
func (m *Machine) SelectOption(ctx context.Context, index int) (*Outcome, error) {
	if m.state != StateClarifying || index < 0 || index >= len(m.options) {
		return nil, ErrNoSuchOption
	}
	return m.Send(ctx, m.options[index])
}

// Send runs one turn: the text goes to the relay with the recent history and
// the parsed result decides the next state. Failures are reported to the user
// as a single apology message and the machine returns to idle.
func (m *Machine) Send(ctx context.Context, text string) (*Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	out := &Outcome{}
	history := chatdomain.FormatHistory(m.history, m.window)
	m.appendMessage(out, chatdomain.Message{Sender: chatdomain.SenderUser, Content: text})

	token, err := m.session.Credentials.Token(ctx)
	if err != nil {
		return m.fail(out, fmt.Errorf("failed to get credentials: %w", err))
	}

	existing, err := m.store.Load(ctx, m.session.UserID)
	if err != nil {
		return m.fail(out, fmt.Errorf("failed to load tasks: %w", err))
	}

	result, err := m.relay.Chat(ctx, token, chatdomain.ChatRequest{
		Message:       text,
		Context:       history,
		ExistingTasks: taskdomain.TodoTasks(existing),
	})
	if err != nil {
		return m.fail(out, err)
	}

	switch {
	case result.IsDegraded():
		out.Degraded = true
		m.appendMessage(out, chatdomain.Message{Sender: chatdomain.SenderAI, Content: result.Message})

	case result.Action == chatdomain.ActionCreate && result.Complete:
		m.transition(StateResolved)
		m.replyIfAny(out, result.Message)
		task := newTask(result.ExtractedTask)
		if err := m.apply(ctx, func(tasks []taskdomain.Task) ([]taskdomain.Task, error) {
			return append(tasks, task), nil
		}); err != nil {
			return m.fail(out, err)
		}
		out.Created = &task
		m.options = nil
		m.appendMessage(out, chatdomain.Message{Sender: chatdomain.SenderAI, Content: fmt.Sprintf(createdFormat, task.Title)})
		m.transition(StateIdle)

	case result.Action == chatdomain.ActionUpdate && result.UpdatedTask != nil:
		m.transition(StateResolved)
		m.replyIfAny(out, result.Message)
		patch := result.UpdatedTask.ToPatch()
		var updated taskdomain.Task
		if err := m.apply(ctx, func(tasks []taskdomain.Task) ([]taskdomain.Task, error) {
			idx := taskdomain.FindIndex(tasks, result.UpdatedTask.ID)
			if idx < 0 {
				return nil, taskdomain.ErrTaskNotFound
			}
			tasks[idx] = patch.Apply(tasks[idx])
			updated = tasks[idx]
			return tasks, nil
		}); err != nil {
			return m.fail(out, err)
		}
		out.Updated = &updated
		m.options = nil
		m.appendMessage(out, chatdomain.Message{Sender: chatdomain.SenderAI, Content: fmt.Sprintf(updatedFormat, updated.Title)})
		m.transition(StateIdle)

	default:
		// clarify, or a create that still lacks something
		msg := chatdomain.Message{
			Sender:  chatdomain.SenderAI,
			Content: result.Message,
			Options: result.Options,
		}
		if !result.ExtractedTask.IsEmpty() {
			suggested := result.ExtractedTask
			msg.SuggestedTask = &suggested
		}
		m.options = append([]string(nil), result.Options...)
		m.appendMessage(out, msg)
		m.transition(StateClarifying)
	}

	out.State = m.state
	return out, nil
}

// apply is a whole-collection read-modify-write against the store
func (m *Machine) apply(ctx context.Context, mutate func([]taskdomain.Task) ([]taskdomain.Task, error)) error {
	tasks, err := m.store.Load(ctx, m.session.UserID)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	next, err := mutate(taskdomain.Clone(tasks))
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, m.session.UserID, next); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

func (m *Machine) fail(out *Outcome, err error) (*Outcome, error) {
	log.Printf("[Conversation] Turn failed for user %s: %v", m.session.UserID, err)
	m.appendMessage(out, chatdomain.Message{Sender: chatdomain.SenderAI, Content: ApologyMessage})
	m.options = nil
	m.transition(StateIdle)
	out.State = m.state
	return out, err
}

func (m *Machine) replyIfAny(out *Outcome, content string) {
	if strings.TrimSpace(content) != "" {
		m.appendMessage(out, chatdomain.Message{Sender: chatdomain.SenderAI, Content: content})
	}
}

func (m *Machine) appendMessage(out *Outcome, msg chatdomain.Message) {
	msg.ID = uuid.New().String()
	msg.Timestamp = m.now()
	m.history = append(m.history, msg)
	out.Messages = append(out.Messages, msg)
}

func (m *Machine) transition(to State) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	if m.hook != nil {
		m.hook(from, to)
	}
}

// newTask turns a finished extraction into a todo task ranked by its band
func newTask(e chatdomain.ExtractedTask) taskdomain.Task {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return taskdomain.Task{
		ID:         uuid.New().String(),
		Title:      strings.TrimSpace(e.Title),
		DueDate:    e.DueDate,
		AIPriority: e.AIPriority(),
		Priority:   taskdomain.ParsePriority(e.Priority),
		Status:     taskdomain.TaskStatusTodo,
		Reason:     e.Reason,
		Tags:       append([]string(nil), tags...),
	}
}
