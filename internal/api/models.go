package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// UserResponse defines the public representation of an account.
// The password digest never appears here.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	// AccessToken is the JWT used as a bearer credential on protected calls.
	AccessToken string `json:"access_token"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires.
	ExpiresAt string `json:"expires_at"`
}

// CreateTaskRequest defines the payload for creating a task.
// The owner is never part of the payload; it is always the authenticated
// caller.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,min=1"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	CalendarID  string     `json:"calendar_id"`
}

// UpdateTaskRequest defines the payload for partially updating a task.
// Absent fields are left untouched; fields set to JSON null are cleared
// where the field is clearable.
type UpdateTaskRequest struct {
	Title       domain.Optional[string]    `json:"title"`
	Description domain.Optional[string]    `json:"description"`
	DueDate     domain.Optional[time.Time] `json:"due_date"`
	CalendarID  domain.Optional[string]    `json:"calendar_id"`
	Completed   domain.Optional[bool]      `json:"completed"`
}

// toPatch converts the request body into a domain patch.
func (r UpdateTaskRequest) toPatch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		CalendarID:  r.CalendarID,
		Completed:   r.Completed,
	}
}

// TaskResponse defines the public representation of a task.
type TaskResponse struct {
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

// SummarizeRequest defines the payload for the stub summarization endpoint.
type SummarizeRequest struct {
	Text         string `json:"text"          validate:"required,min=1"`
	MaxSentences int    `json:"max_sentences" validate:"omitempty,gte=1,lte=10"`
}

// SummarizeResponse defines the response for the stub summarization endpoint.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// userToResponse transforms a domain user into its public representation.
func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// taskToResponse transforms a domain task into its public representation.
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		CalendarID:  task.CalendarID,
		Completed:   task.Completed,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// tasksToResponse transforms a slice of domain tasks, preserving order.
func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}
