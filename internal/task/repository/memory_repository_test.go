package repository

import (
	"context"
	"errors"
	"testing"

	"gemini-task-backend/internal/task/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestMemoryRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaskRepository()

	tasks := []domain.Task{
		{
			ID: "1", Title: "報告書を提出", DueDate: strPtr("明日"), AIPriority: 80,
			Priority: domain.PriorityHigh, Status: domain.TaskStatusTodo,
			Reason: strPtr("締切"), Tags: []string{"仕事"},
		},
		{
			ID: "2", Title: "昼ごはん", AIPriority: 20, UserPriority: intPtr(70),
			Priority: domain.PriorityLow, Status: domain.TaskStatusDone, Tags: []string{},
		},
		{
			ID: "3", Title: "散歩", AIPriority: 50, Priority: domain.PriorityMedium, Status: domain.TaskStatusTodo,
		},
	}

	require.NoError(t, repo.Save(ctx, "user-1", tasks))

	loaded, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	assert.Equal(t, tasks[0], loaded[0])
	assert.Equal(t, tasks[1], loaded[1])
	// nil tags come back as an explicit empty set; unset pointers stay nil.
	assert.Equal(t, []string{}, loaded[2].Tags)
	assert.Nil(t, loaded[2].UserPriority)
	assert.Nil(t, loaded[2].DueDate)
}

func TestMemoryRepository_UnknownUserIsEmpty(t *testing.T) {
	loaded, err := NewMemoryTaskRepository().Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestMemoryRepository_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaskRepository()

	require.NoError(t, repo.Save(ctx, "u", []domain.Task{{ID: "a", Title: "first"}}))
	require.NoError(t, repo.Save(ctx, "u", []domain.Task{{ID: "b", Title: "second"}}))

	loaded, err := repo.Load(ctx, "u")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "b", loaded[0].ID)
}

type fakePublisher struct {
	calls []string
	err   error
}

func (f *fakePublisher) PublishTasksSaved(_ context.Context, userID string, _ int) error {
	f.calls = append(f.calls, userID)
	return f.err
}

type failingRepository struct{ TaskRepository }

func (failingRepository) Save(context.Context, string, []domain.Task) error {
	return errors.New("store down")
}

func TestWithEventPublisher(t *testing.T) {
	ctx := context.Background()

	pub := &fakePublisher{}
	repo := WithEventPublisher(NewMemoryTaskRepository(), pub)
	require.NoError(t, repo.Save(ctx, "u", []domain.Task{{ID: "a", Title: "x"}}))
	assert.Equal(t, []string{"u"}, pub.calls)

	// publish errors never fail the save
	pub.err = errors.New("pubsub down")
	require.NoError(t, repo.Save(ctx, "u", nil))

	// failed saves are not announced
	pub = &fakePublisher{}
	repo = WithEventPublisher(failingRepository{NewMemoryTaskRepository()}, pub)
	require.Error(t, repo.Save(ctx, "u", nil))
	assert.Empty(t, pub.calls)

	base := NewMemoryTaskRepository()
	assert.Equal(t, base, WithEventPublisher(base, nil))
}
