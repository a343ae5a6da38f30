package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	chatdomain "gemini-task-backend/internal/chat/domain"
	taskdomain "gemini-task-backend/internal/task/domain"
	"gemini-task-backend/pkg/gemini"
)

// TokenSource returns the current bearer credential
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that never refreshes
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// StatusError is a non-2xx answer from the relay
type StatusError struct {
	StatusCode int
	Message    string
	Detail     json.RawMessage
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("relay returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("relay returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the relay HTTP API. Every call takes the bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for baseURL (BE_DOMAIN)
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Chat sends one conversation turn
func (c *Client) Chat(ctx context.Context, token string, req chatdomain.ChatRequest) (*chatdomain.ChatResult, error) {
	var out chatdomain.ChatResult
	if err := c.do(ctx, token, http.MethodPost, "/api/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate relays a raw prompt and returns the provider body
func (c *Client) Generate(ctx context.Context, token, prompt string) ([]byte, error) {
	var out json.RawMessage
	if err := c.do(ctx, token, http.MethodPost, "/api/generate", map[string]string{"prompt": prompt}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Suggest asks which task to focus on
func (c *Client) Suggest(ctx context.Context, token string, tasks []taskdomain.Task) (*chatdomain.Suggestion, error) {
	if tasks == nil {
		tasks = []taskdomain.Task{}
	}
	var out chatdomain.Suggestion
	if err := c.do(ctx, token, http.MethodPost, "/api/suggest", chatdomain.SuggestRequest{Tasks: tasks}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rank ranks the stored collection
func (c *Client) Rank(ctx context.Context, token string) (*chatdomain.RankResult, error) {
	var out chatdomain.RankResult
	if err := c.do(ctx, token, http.MethodPost, "/api/rank", chatdomain.RankRequest{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type taskList struct {
	Tasks []taskdomain.Task `json:"tasks"`
}

// ListTasks returns the collection ordered by effective rank
func (c *Client) ListTasks(ctx context.Context, token string) ([]taskdomain.Task, error) {
	var out taskList
	if err := c.do(ctx, token, http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// ReplaceTasks overwrites the collection
func (c *Client) ReplaceTasks(ctx context.Context, token string, tasks []taskdomain.Task) ([]taskdomain.Task, error) {
	if tasks == nil {
		tasks = []taskdomain.Task{}
	}
	var out taskList
	if err := c.do(ctx, token, http.MethodPut, "/api/tasks", taskList{Tasks: tasks}, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// ToggleStatus flips a task between todo and done
func (c *Client) ToggleStatus(ctx context.Context, token, taskID string) (*taskdomain.Task, error) {
	var out taskdomain.Task
	if err := c.do(ctx, token, http.MethodPatch, "/api/tasks/"+taskID+"/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdjustPriority bumps the user priority of a task by delta
func (c *Client) AdjustPriority(ctx context.Context, token, taskID string, delta int) (*taskdomain.Task, error) {
	var out taskdomain.Task
	body := map[string]int{"delta": delta}
	if err := c.do(ctx, token, http.MethodPost, "/api/tasks/"+taskID+"/priority", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, token, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// statusError reads {error, detail}; detail.error.message wins when present
func statusError(status int, body []byte) *StatusError {
	e := &StatusError{StatusCode: status}
	var payload struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		e.Message = strings.TrimSpace(string(body))
		return e
	}
	e.Message = payload.Error
	if len(payload.Detail) > 0 && string(payload.Detail) != "null" {
		e.Detail = payload.Detail
		if msg := gemini.ErrorMessage(payload.Detail); msg != "" {
			e.Message = msg
		}
	}
	return e
}

// TaskStore adapts the relay's task endpoints to a per-user store. The user
// is whoever the token identifies; the userID argument is not sent.
type TaskStore struct {
	client *Client
	tokens TokenSource
}

// NewTaskStore creates a TaskStore backed by the relay
func NewTaskStore(client *Client, tokens TokenSource) *TaskStore {
	return &TaskStore{client: client, tokens: tokens}
}

func (s *TaskStore) Load(ctx context.Context, _ string) ([]taskdomain.Task, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListTasks(ctx, token)
}

func (s *TaskStore) Save(ctx context.Context, _ string, tasks []taskdomain.Task) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}
	_, err = s.client.ReplaceTasks(ctx, token, tasks)
	return err
}
