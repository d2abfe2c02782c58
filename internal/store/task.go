package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// Every single-row operation is scoped to (task, owner) jointly: a task that
// exists but belongs to a different owner is indistinguishable from a task
// that does not exist. This is the ownership gate that prevents cross-user
// data leakage, and it must hold for every implementation.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrCalendarIDExists if the owner already has a task linked to
	// the same calendar event.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID, scoped to the given owner.
	// Returns ErrTaskNotFound if no matching row exists.
	GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// GetByCalendarID retrieves a task by its external calendar event ID,
	// scoped to the given owner.
	// Returns ErrTaskNotFound if no matching row exists.
	GetByCalendarID(ctx context.Context, ownerID uuid.UUID, calendarID string) (*domain.Task, error)

	// ListByOwner returns all tasks owned by the given user in
	// storage-native order. Returns an empty slice when the owner has no
	// tasks.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// ListHistory returns all tasks owned by the given user ordered by
	// completion status ascending (incomplete first) and then due date
	// ascending; tasks without a due date sort last within their group.
	ListHistory(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// Update applies a partial patch to a task, scoped to the given owner.
	// Patch semantics follow domain.Task.ApplyPatch: only fields present in
	// the patch are written, and a false-to-true completion transition sets
	// the completion timestamp as part of the same update.
	// Returns the updated task, or ErrTaskNotFound if no matching row exists.
	Update(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch, now time.Time) (*domain.Task, error)

	// Delete removes a task, scoped to the given owner.
	// Returns ErrTaskNotFound if no matching row exists; repeating a delete
	// therefore reports not-found rather than an error.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error
}
