package tasks

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore that mirrors the ownership
// scoping and ordering rules of the Postgres implementation.
type fakeTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
	next  int // insertion counter for storage-native ordering
	order map[uuid.UUID]int
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		tasks: make(map[uuid.UUID]*domain.Task),
		order: make(map[uuid.UUID]int),
	}
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if task.CalendarID != "" {
		for _, existing := range f.tasks {
			if existing.UserID == task.UserID && existing.CalendarID == task.CalendarID {
				return store.ErrCalendarIDExists
			}
		}
	}
	clone := *task
	f.tasks[task.ID] = &clone
	f.order[task.ID] = f.next
	f.next++
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (f *fakeTaskStore) GetByCalendarID(
	ctx context.Context,
	ownerID uuid.UUID,
	calendarID string,
) (*domain.Task, error) {
	for _, task := range f.tasks {
		if task.UserID == ownerID && task.CalendarID == calendarID && calendarID != "" {
			clone := *task
			return &clone, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

func (f *fakeTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	owned := f.ownedBy(ownerID)
	sort.Slice(owned, func(i, j int) bool {
		return f.order[owned[i].ID] < f.order[owned[j].ID]
	})
	return owned, nil
}

func (f *fakeTaskStore) ListHistory(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	owned := f.ownedBy(ownerID)
	sort.SliceStable(owned, func(i, j int) bool {
		a, b := owned[i], owned[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false
		case a.DueDate == nil:
			return false // nulls last
		case b.DueDate == nil:
			return true
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})
	return owned, nil
}

func (f *fakeTaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
	now time.Time,
) (*domain.Task, error) {
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	if err := task.ApplyPatch(patch, now); err != nil {
		return nil, err
	}
	clone := *task
	return &clone, nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, taskID)
	delete(f.order, taskID)
	return nil
}

func (f *fakeTaskStore) ownedBy(ownerID uuid.UUID) []*domain.Task {
	var owned []*domain.Task
	for _, task := range f.tasks {
		if task.UserID == ownerID {
			clone := *task
			owned = append(owned, &clone)
		}
	}
	if owned == nil {
		owned = []*domain.Task{}
	}
	return owned
}

func newTestService(t *testing.T) (*TaskService, *fakeTaskStore) {
	t.Helper()
	taskStore := newFakeTaskStore()
	svc := NewTaskService(taskStore, nil)
	return svc, taskStore
}

func TestCreate(t *testing.T) {
	t.Parallel()

	owner := uuid.New()

	t.Run("owner comes from the caller", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		task, err := svc.Create(context.Background(), owner, CreateTaskInput{Title: "Ship release"})
		require.NoError(t, err)

		assert.Equal(t, owner, task.UserID)
		assert.False(t, task.Completed)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		_, err := svc.Create(context.Background(), owner, CreateTaskInput{})
		assert.ErrorIs(t, err, domain.ErrTaskTitleEmpty)
	})

	t.Run("duplicate calendar ID for same owner conflicts", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		_, err := svc.Create(context.Background(), owner,
			CreateTaskInput{Title: "Standup", CalendarID: "evt-1"})
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), owner,
			CreateTaskInput{Title: "Standup again", CalendarID: "evt-1"})
		assert.ErrorIs(t, err, store.ErrCalendarIDExists)
	})
}

func TestOwnershipGate(t *testing.T) {
	t.Parallel()

	userA := uuid.New()
	userB := uuid.New()

	setup := func(t *testing.T) (*TaskService, *domain.Task) {
		t.Helper()
		svc, _ := newTestService(t)
		task, err := svc.Create(context.Background(), userA,
			CreateTaskInput{Title: "A's task", CalendarID: "evt-a"})
		require.NoError(t, err)
		return svc, task
	}

	t.Run("other user's get reports not found", func(t *testing.T) {
		t.Parallel()
		svc, task := setup(t)

		_, err := svc.Get(context.Background(), userB, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("other user's calendar lookup reports not found", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)

		_, err := svc.GetByCalendarID(context.Background(), userB, "evt-a")
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("other user's update reports not found and changes nothing", func(t *testing.T) {
		t.Parallel()
		svc, task := setup(t)

		_, err := svc.Update(context.Background(), userB, task.ID,
			domain.TaskPatch{Title: domain.Some("hijacked")})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		unchanged, err := svc.Get(context.Background(), userA, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "A's task", unchanged.Title)
	})

	t.Run("other user's delete reports not found and keeps the task", func(t *testing.T) {
		t.Parallel()
		svc, task := setup(t)

		err := svc.Delete(context.Background(), userB, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		_, err = svc.Get(context.Background(), userA, task.ID)
		assert.NoError(t, err)
	})

	t.Run("list only returns the caller's tasks", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)
		_, err := svc.Create(context.Background(), userB, CreateTaskInput{Title: "B's task"})
		require.NoError(t, err)

		forA, err := svc.List(context.Background(), userA)
		require.NoError(t, err)
		require.Len(t, forA, 1)
		assert.Equal(t, "A's task", forA[0].Title)

		forB, err := svc.List(context.Background(), userB)
		require.NoError(t, err)
		require.Len(t, forB, 1)
		assert.Equal(t, "B's task", forB[0].Title)
	})
}

func TestHistoryOrdering(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	owner := uuid.New()

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	done, err := svc.Create(context.Background(), owner, CreateTaskInput{Title: "done", DueDate: &jan})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), owner, done.ID,
		domain.TaskPatch{Completed: domain.Some(true)})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, CreateTaskInput{Title: "later", DueDate: &mar})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), owner, CreateTaskInput{Title: "soon", DueDate: &feb})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), owner, CreateTaskInput{Title: "undated"})
	require.NoError(t, err)

	history, err := svc.History(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, history, 4)

	titles := make([]string, len(history))
	for i, task := range history {
		titles[i] = task.Title
	}

	// Incomplete first ordered by due date, undated last, completed at the end.
	assert.Equal(t, []string{"soon", "later", "undated", "done"}, titles)
}

func TestUpdateCompletionTimestamp(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	owner := uuid.New()

	task, err := svc.Create(context.Background(), owner, CreateTaskInput{Title: "finish me"})
	require.NoError(t, err)

	before := time.Now().UTC()
	updated, err := svc.Update(context.Background(), owner, task.ID,
		domain.TaskPatch{Completed: domain.Some(true)})
	require.NoError(t, err)

	require.NotNil(t, updated.CompletedAt)
	assert.False(t, updated.CompletedAt.Before(before))

	// A title-only patch must not touch the completion timestamp.
	renamed, err := svc.Update(context.Background(), owner, task.ID,
		domain.TaskPatch{Title: domain.Some("renamed")})
	require.NoError(t, err)
	require.NotNil(t, renamed.CompletedAt)
	assert.Equal(t, *updated.CompletedAt, *renamed.CompletedAt)
}

func TestDeleteIdempotentFailure(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	owner := uuid.New()

	task, err := svc.Create(context.Background(), owner, CreateTaskInput{Title: "ephemeral"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), owner, task.ID))

	// The second delete reports not-found, it does not blow up.
	err = svc.Delete(context.Background(), owner, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	err = svc.Delete(context.Background(), owner, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}
