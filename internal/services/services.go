package services

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/models"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a
	// wrong password so login failures never reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")

	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title must be at most 100 characters")
	ErrInvalidPriority = errors.New("priority must be High, Medium or Low")
	ErrNoTaskIDs       = errors.New("no task ids provided")
)

type AuthService interface {
	// Register creates a user with a hashed password and issues a
	// bearer token for it. It returns ErrUsernameTaken if the
	// username is already registered.
	Register(ctx context.Context, username, password string) (*models.User, string, error)

	// Login authenticates the user by username and password and
	// issues a bearer token. Any failure is ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*models.User, string, error)
}

type CreateTaskParams struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    *string
	Category    *string
	Completed   bool
	Starred     bool
}

type UpdateTaskParams struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *string
	Category    *string
	Completed   *bool
	Starred     *bool
}

type SearchTasksParams struct {
	Query     string
	Priority  *string
	Category  *string
	Completed *bool
	Page      int
	Limit     int
}

// SearchPage is one page of search results plus the pagination
// metadata the search endpoint returns.
type SearchPage struct {
	Tasks []*models.Task
	Page  int
	Limit int
	Total int
	Pages int
}

type TaskService interface {
	// CreateTask validates the fields and stores a new task owned by
	// ownerID with Archived unset and CreatedAt set to now.
	CreateTask(ctx context.Context, ownerID string, params CreateTaskParams) (*models.Task, error)

	// ListTasks returns all the owner's tasks, newest first.
	ListTasks(ctx context.Context, ownerID string) ([]*models.Task, error)

	// UpdateTask applies a partial update. It propagates the
	// repository's not-found/forbidden/archived errors.
	UpdateTask(ctx context.Context, ownerID, id string, params UpdateTaskParams) (*models.Task, error)

	DeleteTask(ctx context.Context, ownerID, id string) error

	// DeleteTasks deletes a batch of the owner's tasks. The batch is
	// authorized as a whole: one foreign id fails everything.
	DeleteTasks(ctx context.Context, ownerID string, ids []string) error

	ToggleComplete(ctx context.Context, ownerID, id string) (*models.Task, error)
	ToggleStarred(ctx context.Context, ownerID, id string) (*models.Task, error)
	DuplicateTask(ctx context.Context, ownerID, id string) (*models.Task, error)

	// SearchTasks runs the filter query with normalized pagination:
	// page and limit default to 1 and 10, limit is capped at 100.
	SearchTasks(ctx context.Context, ownerID string, params SearchTasksParams) (*SearchPage, error)
}
