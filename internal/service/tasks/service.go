// Package tasks implements the ownership-gated task operations. Every method
// takes the resolved caller identity and scopes its store queries to it, so a
// task belonging to another user is indistinguishable from one that does not
// exist.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
// The owner is deliberately absent: it is always the authenticated caller
// and can never be chosen by the payload.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	CalendarID  string
}

// TaskService exposes the task operations available to an authenticated user.
type TaskService struct {
	taskStore store.TaskStore
	logger    *slog.Logger
	timeFunc  func() time.Time // Injectable for testing
}

// NewTaskService creates a new TaskService with the given dependencies.
// If logger is nil, a default logger will be used.
func NewTaskService(taskStore store.TaskStore, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}

	return &TaskService{
		taskStore: taskStore,
		logger:    log.With(slog.String("component", "task_service")),
		timeFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a new task owned by the caller.
func (s *TaskService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, input.Title, input.Description, input.DueDate, input.CalendarID)
	if err != nil {
		log.Debug("task creation rejected by validation",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// Get retrieves one of the caller's tasks by ID.
// Returns store.ErrTaskNotFound when no matching row exists, whether the ID
// is unknown or the task belongs to someone else.
func (s *TaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return s.taskStore.GetByID(ctx, ownerID, taskID)
}

// GetByCalendarID retrieves one of the caller's tasks by its external
// calendar event ID, with the same not-found collapse as Get.
func (s *TaskService) GetByCalendarID(
	ctx context.Context,
	ownerID uuid.UUID,
	calendarID string,
) (*domain.Task, error) {
	return s.taskStore.GetByCalendarID(ctx, ownerID, calendarID)
}

// List returns all of the caller's tasks in storage-native order.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	return s.taskStore.ListByOwner(ctx, ownerID)
}

// History returns the caller's tasks ordered by completion status ascending
// (incomplete before complete), then due date ascending with unset due dates
// sorting last.
func (s *TaskService) History(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	return s.taskStore.ListHistory(ctx, ownerID)
}

// Update applies a partial patch to one of the caller's tasks and returns
// the updated task. A completion flag transitioning from false to true sets
// the completion timestamp as part of the same update.
func (s *TaskService) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.Update(ctx, ownerID, taskID, patch, s.timeFunc())
	if err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// Delete removes one of the caller's tasks. Deleting an ID that no longer
// matches anything reports store.ErrTaskNotFound, so repeating a delete is
// harmless.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.taskStore.Delete(ctx, ownerID, taskID); err != nil {
		return err
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("owner_id", ownerID.String()))
	return nil
}
