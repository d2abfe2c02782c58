package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// taskColumns is the canonical column list scanned into a domain.Task.
const taskColumns = "id, user_id, title, description, due_date, calendar_id, completed, completed_at, created_at, updated_at"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
//
// Every single-row query filters on (id, user_id) jointly. The ownership
// check lives in the WHERE clause rather than in Go code so that a
// foreign-owned row and a missing row produce the same sql.ErrNoRows.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, log *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: log.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// Returns store.ErrCalendarIDExists when the owner already has a task linked
// to the same calendar event, and a store.ErrInvalidEntity wrap when the
// owner does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Debug("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, due_date, calendar_id,
			completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		nullString(task.Description),
		nullTime(task.DueDate),
		nullString(task.CalendarID),
		task.Completed,
		nullTime(task.CompletedAt),
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("calendar event already linked",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: %v", store.ErrCalendarIDExists, err)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if no row matches both the task ID and the owner.
func (s *PostgresTaskStore) GetByID(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, taskColumns)

	return s.queryOne(ctx, query, taskID, ownerID)
}

// GetByCalendarID implements store.TaskStore.GetByCalendarID
// Returns store.ErrTaskNotFound if no row matches both the calendar event ID and the owner.
func (s *PostgresTaskStore) GetByCalendarID(
	ctx context.Context,
	ownerID uuid.UUID,
	calendarID string,
) (*domain.Task, error) {
	if calendarID == "" {
		return nil, store.ErrTaskNotFound
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE calendar_id = $1 AND user_id = $2
	`, taskColumns)

	return s.queryOne(ctx, query, calendarID, ownerID)
}

// ListByOwner implements store.TaskStore.ListByOwner
// It returns the owner's tasks in storage-native (insertion) order.
func (s *PostgresTaskStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at
	`, taskColumns)

	return s.queryMany(ctx, query, ownerID)
}

// ListHistory implements store.TaskStore.ListHistory
// Incomplete tasks come first, each group ordered by due date ascending with
// unset due dates last.
func (s *PostgresTaskStore) ListHistory(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE user_id = $1
		ORDER BY completed ASC, due_date ASC NULLS LAST
	`, taskColumns)

	return s.queryMany(ctx, query, ownerID)
}

// Update implements store.TaskStore.Update
// The patch is translated into a single UPDATE statement: only present
// fields appear in the SET clause, and the completion timestamp transition
// is computed in SQL so it happens atomically with the flag change.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
	now time.Time,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.Title.Set && patch.Title.Valid && patch.Title.Value == "" {
		return nil, domain.ErrTaskTitleEmpty
	}

	sets := []string{"updated_at = $1"}
	args := []any{now}

	addSet := func(clause string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(clause, len(args)))
	}

	if patch.Title.Set && patch.Title.Valid {
		addSet("title = $%d", patch.Title.Value)
	}
	if patch.Description.Set {
		if patch.Description.Valid {
			addSet("description = $%d", patch.Description.Value)
		} else {
			sets = append(sets, "description = NULL")
		}
	}
	if patch.DueDate.Set {
		if patch.DueDate.Valid {
			addSet("due_date = $%d", patch.DueDate.Value)
		} else {
			sets = append(sets, "due_date = NULL")
		}
	}
	if patch.CalendarID.Set {
		if patch.CalendarID.Valid {
			addSet("calendar_id = $%d", patch.CalendarID.Value)
		} else {
			sets = append(sets, "calendar_id = NULL")
		}
	}
	if patch.Completed.Set && patch.Completed.Valid {
		// A false-to-true transition stamps completed_at with the update
		// time; any other transition leaves the previous value alone.
		args = append(args, patch.Completed.Value)
		flag := len(args)
		args = append(args, now)
		stamp := len(args)
		sets = append(sets, fmt.Sprintf(
			"completed_at = CASE WHEN $%d AND NOT completed THEN $%d ELSE completed_at END", flag, stamp))
		sets = append(sets, fmt.Sprintf("completed = $%d", flag))
	}

	args = append(args, taskID)
	idArg := len(args)
	args = append(args, ownerID)
	ownerArg := len(args)

	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), idArg, ownerArg, taskColumns)

	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", store.ErrCalendarIDExists, err)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if no row matches both the task ID and the
// owner, which makes repeating a delete report not-found rather than fail.
func (s *PostgresTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for delete",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", ownerID.String()))
		return fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

func (s *PostgresTaskStore) queryOne(
	ctx context.Context,
	query string,
	args ...any,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found")
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to query task",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return task, nil
}

func (s *PostgresTaskStore) queryMany(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	// Return empty slice instead of nil if no tasks found
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresTaskStore) scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		dueDate     sql.NullTime
		calendarID  sql.NullString
		completedAt sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&dueDate,
		&calendarID,
		&task.Completed,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.CalendarID = calendarID.String
	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	if completedAt.Valid {
		done := completedAt.Time
		task.CompletedAt = &done
	}

	return &task, nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime maps a nil time pointer to SQL NULL.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
