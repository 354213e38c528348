package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskboard/internal/models"
	"taskboard/internal/repository"
)

const taskColumns = `id, owner_id, title, description, due_date, priority, category,
       completed, starred, archived, created_at`

type TaskRepository struct {
	logger zerolog.Logger
	pool   *pgxpool.Pool
}

func NewTaskRepository(logger zerolog.Logger, pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		logger: logger,
		pool:   pool,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := new(models.Task)
	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Priority,
		&task.Category,
		&task.Completed,
		&task.Starred,
		&task.Archived,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// authorize is the single ownership guard every task mutation goes
// through: an absent id is ErrTaskNotFound, someone else's id is
// ErrTaskForbidden.
func (r *TaskRepository) authorize(ctx context.Context, ownerID, id string) (archived bool, err error) {
	const selectTaskOwnerQuery = `
SELECT owner_id, archived
FROM tasks WHERE id = $1
`
	var taskOwnerID string
	err = r.pool.QueryRow(
		ctx,
		selectTaskOwnerQuery,
		id,
	).Scan(
		&taskOwnerID,
		&archived,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, repository.ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task owner")
		return false, err
	}

	if taskOwnerID != ownerID {
		r.logger.Warn().
			Str("task_id", id).
			Str("user_id", ownerID).
			Msg("task belongs to another user")
		return false, repository.ErrTaskForbidden
	}
	return archived, nil
}

func (r *TaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO tasks (id, owner_id, title, description, due_date, priority, category,
                   completed, starred, archived, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	_, err := r.pool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Priority,
		task.Category,
		task.Completed,
		task.Starred,
		task.Archived,
		task.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return err
	}
	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (r *TaskRepository) GetTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	if _, err := r.authorize(ctx, ownerID, id); err != nil {
		return nil, err
	}

	const selectTaskQuery = `
SELECT ` + taskColumns + `
FROM tasks WHERE id = $1
`
	task, err := scanTask(r.pool.QueryRow(ctx, selectTaskQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task")
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) ListTasks(ctx context.Context, ownerID string) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT ` + taskColumns + `
FROM tasks WHERE owner_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, selectTasksQuery, ownerID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) UpdateTask(ctx context.Context, ownerID, id string, update repository.TaskUpdate) (*models.Task, error) {
	archived, err := r.authorize(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if archived {
		return nil, repository.ErrTaskArchived
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		set("title", *update.Title)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}
	if update.DueDate != nil {
		set("due_date", *update.DueDate)
	}
	if update.Priority != nil {
		set("priority", *update.Priority)
	}
	if update.Category != nil {
		set("category", *update.Category)
	}
	if update.Completed != nil {
		set("completed", *update.Completed)
	}
	if update.Starred != nil {
		set("starred", *update.Starred)
	}

	if len(sets) == 0 {
		return r.GetTask(ctx, ownerID, id)
	}

	args = append(args, id)
	updateTaskQuery := fmt.Sprintf(
		"UPDATE tasks SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), taskColumns,
	)

	task, err := scanTask(r.pool.QueryRow(ctx, updateTaskQuery, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, err
	}
	r.logger.Debug().
		Str("task_id", id).
		Msg("updated task")
	return task, nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, ownerID, id string) error {
	if _, err := r.authorize(ctx, ownerID, id); err != nil {
		return err
	}

	const deleteTaskQuery = `
DELETE FROM tasks WHERE id = $1 AND owner_id = $2
`
	tag, err := r.pool.Exec(ctx, deleteTaskQuery, id, ownerID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrTaskNotFound
	}
	r.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (r *TaskRepository) DeleteTasks(ctx context.Context, ownerID string, ids []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The whole batch is rejected if any existing id belongs to
	// another owner; absent ids are skipped.
	const selectOwnersQuery = `
SELECT owner_id
FROM tasks WHERE id = ANY($1)
`
	rows, err := tx.Query(ctx, selectOwnersQuery, ids)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select task owners")
		return err
	}

	for rows.Next() {
		var taskOwnerID string
		if err = rows.Scan(&taskOwnerID); err != nil {
			rows.Close()
			r.logger.Error().
				Err(err).
				Msg("failed to scan task owner")
			return err
		}
		if taskOwnerID != ownerID {
			rows.Close()
			r.logger.Warn().
				Str("user_id", ownerID).
				Msg("bulk delete includes another user's task")
			return repository.ErrTaskForbidden
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return err
	}

	const deleteTasksQuery = `
DELETE FROM tasks WHERE id = ANY($1) AND owner_id = $2
`
	tag, err := tx.Exec(ctx, deleteTasksQuery, ids, ownerID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to delete tasks")
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	r.logger.Debug().
		Int64("affected", tag.RowsAffected()).
		Msg("deleted tasks")
	return nil
}

func (r *TaskRepository) ToggleComplete(ctx context.Context, ownerID, id string) (*models.Task, error) {
	if _, err := r.authorize(ctx, ownerID, id); err != nil {
		return nil, err
	}

	// Completing archives, un-completing un-archives.
	const toggleCompleteQuery = `
UPDATE tasks
SET completed = NOT completed,
    archived = NOT completed
WHERE id = $1
RETURNING ` + taskColumns + `
`
	task, err := scanTask(r.pool.QueryRow(ctx, toggleCompleteQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to toggle task completion")
		return nil, err
	}
	r.logger.Debug().
		Str("task_id", id).
		Bool("completed", task.Completed).
		Msg("toggled task completion")
	return task, nil
}

func (r *TaskRepository) ToggleStarred(ctx context.Context, ownerID, id string) (*models.Task, error) {
	if _, err := r.authorize(ctx, ownerID, id); err != nil {
		return nil, err
	}

	const toggleStarredQuery = `
UPDATE tasks
SET starred = NOT starred
WHERE id = $1
RETURNING ` + taskColumns + `
`
	task, err := scanTask(r.pool.QueryRow(ctx, toggleStarredQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to toggle task star")
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) DuplicateTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	original, err := r.GetTask(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	copyUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task uuid: %w", err)
	}

	duplicate := &models.Task{
		ID:          copyUUID.String(),
		OwnerID:     ownerID,
		Title:       original.Title + " (copy)",
		Description: original.Description,
		DueDate:     original.DueDate,
		Priority:    original.Priority,
		Category:    original.Category,
		CreatedAt:   time.Now(),
	}

	if err = r.CreateTask(ctx, duplicate); err != nil {
		return nil, err
	}
	return duplicate, nil
}

// escapeLike escapes LIKE metacharacters so the search query is a
// plain substring match.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (r *TaskRepository) SearchTasks(ctx context.Context, ownerID string, filter repository.SearchFilter) (*repository.SearchResult, error) {
	var (
		where strings.Builder
		args  []any
	)

	args = append(args, ownerID)
	where.WriteString("WHERE owner_id = $1")

	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		fmt.Fprintf(&where, " AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		fmt.Fprintf(&where, " AND priority = $%d", len(args))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		fmt.Fprintf(&where, " AND category = $%d", len(args))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		fmt.Fprintf(&where, " AND completed = $%d", len(args))
	}

	countQuery := "SELECT count(*) FROM tasks " + where.String()

	result := new(repository.SearchResult)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&result.Total); err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return nil, err
	}

	args = append(args, filter.Limit, filter.Offset)
	selectQuery := fmt.Sprintf(
		"SELECT %s FROM tasks %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		taskColumns, where.String(), len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to search tasks")
		return nil, err
	}
	defer rows.Close()

	result.Tasks = make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		result.Tasks = append(result.Tasks, task)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return result, nil
}
