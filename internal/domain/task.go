package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task validation errors, all wrapping ErrValidation.
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)

	// ErrTaskUserIDEmpty is returned when a task's owner ID is empty or nil.
	ErrTaskUserIDEmpty = fmt.Errorf("%w: task user ID cannot be empty", ErrValidation)

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
)

// Task represents a single to-do item owned by exactly one user.
// The owner is fixed at creation and is never reassignable; every read,
// update, and delete must be scoped to (task ID, owner ID) jointly.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CalendarID  string     `json:"calendar_id,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new incomplete Task owned by the given user.
// It generates a new UUID for the task ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewTask(userID uuid.UUID, title, description string, dueDate *time.Time, calendarID string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		CalendarID:  calendarID,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	return nil
}

// TaskPatch describes a partial update to a task. Only fields whose Optional
// is Set are applied; everything else is left as-is. The owner is not
// patchable.
type TaskPatch struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	DueDate     Optional[time.Time] `json:"due_date"`
	CalendarID  Optional[string]    `json:"calendar_id"`
	Completed   Optional[bool]      `json:"completed"`
}

// IsZero reports whether the patch carries no fields at all.
func (p TaskPatch) IsZero() bool {
	return !p.Title.Set && !p.Description.Set && !p.DueDate.Set &&
		!p.CalendarID.Set && !p.Completed.Set
}

// ApplyPatch applies the present fields of the patch to the task and bumps
// the update timestamp. When the completed flag transitions from false to
// true, CompletedAt is set to now as part of the same update. Transitioning
// back to false leaves the previous CompletedAt untouched; so does updating
// any non-completion field. Returns an error if the patched task fails
// validation, in which case the task is left unmodified.
func (t *Task) ApplyPatch(patch TaskPatch, now time.Time) error {
	patched := *t

	if patch.Title.Set && patch.Title.Valid {
		patched.Title = patch.Title.Value
	}

	if patch.Description.Set {
		if patch.Description.Valid {
			patched.Description = patch.Description.Value
		} else {
			patched.Description = ""
		}
	}

	if patch.DueDate.Set {
		if patch.DueDate.Valid {
			due := patch.DueDate.Value
			patched.DueDate = &due
		} else {
			patched.DueDate = nil
		}
	}

	if patch.CalendarID.Set {
		if patch.CalendarID.Valid {
			patched.CalendarID = patch.CalendarID.Value
		} else {
			patched.CalendarID = ""
		}
	}

	if patch.Completed.Set && patch.Completed.Valid {
		if patch.Completed.Value && !patched.Completed {
			completedAt := now
			patched.CompletedAt = &completedAt
		}
		patched.Completed = patch.Completed.Value
	}

	patched.UpdatedAt = now

	if err := patched.Validate(); err != nil {
		return err
	}

	*t = patched
	return nil
}
