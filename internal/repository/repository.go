package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskForbidden means the task exists but belongs to another
	// owner. Returned instead of ErrTaskNotFound to keep the 403/404
	// distinction of the public API.
	ErrTaskForbidden = errors.New("task belongs to another user")
	ErrTaskArchived  = errors.New("task is archived")
)

type UserRepository interface {
	// CreateUser inserts the user and returns ErrUserAlreadyExists
	// if the username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// TaskUpdate carries a partial update. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *string
	Category    *string
	Completed   *bool
	Starred     *bool
}

// Empty reports whether the update would change nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil &&
		u.Priority == nil && u.Category == nil && u.Completed == nil &&
		u.Starred == nil
}

// SearchFilter holds the query contract of the search endpoint.
// All set fields are ANDed together and always ANDed with the owner.
type SearchFilter struct {
	// Query matches title OR description, case-insensitive substring.
	Query     string
	Priority  *string
	Category  *string
	Completed *bool
	Limit     int
	Offset    int
}

type SearchResult struct {
	Tasks []*models.Task
	// Total counts all matches regardless of Limit/Offset.
	Total int
}

// TaskRepository scopes every operation to the given owner. An
// operation on a task owned by someone else fails with
// ErrTaskForbidden, an absent task with ErrTaskNotFound.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, ownerID, id string) (*models.Task, error)

	// ListTasks returns all the owner's tasks, newest first.
	ListTasks(ctx context.Context, ownerID string) ([]*models.Task, error)

	// UpdateTask applies a partial update and returns the updated
	// task. An archived task fails with ErrTaskArchived.
	UpdateTask(ctx context.Context, ownerID, id string, update TaskUpdate) (*models.Task, error)

	DeleteTask(ctx context.Context, ownerID, id string) error

	// DeleteTasks deletes the owner's tasks matching ids. If any id
	// belongs to another owner the whole batch fails with
	// ErrTaskForbidden and nothing is deleted. Absent ids are ignored.
	DeleteTasks(ctx context.Context, ownerID string, ids []string) error

	// ToggleComplete flips Completed and sets Archived to the new
	// Completed value.
	ToggleComplete(ctx context.Context, ownerID, id string) (*models.Task, error)

	// ToggleStarred flips Starred only, regardless of archived state.
	ToggleStarred(ctx context.Context, ownerID, id string) (*models.Task, error)

	// DuplicateTask creates a copy with a fresh id and creation time,
	// the title suffixed with " (copy)" and all toggles reset.
	DuplicateTask(ctx context.Context, ownerID, id string) (*models.Task, error)

	SearchTasks(ctx context.Context, ownerID string, filter SearchFilter) (*SearchResult, error)
}
