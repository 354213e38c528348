package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskboard/internal/models"
	"taskboard/internal/repository"
)

const (
	maxTitleLength = 100

	defaultPageSize = 10
	// maxPageSize caps the search page size so a caller cannot
	// request an unbounded result set.
	maxPageSize = 100
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  repository.TaskRepository
}

func NewTaskService(
	logger zerolog.Logger,
	tasks repository.TaskRepository,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
	}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, ownerID string, params CreateTaskParams) (*models.Task, error) {
	if err := validateTitle(params.Title); err != nil {
		return nil, err
	}
	if params.Priority != nil && !models.ValidPriority(*params.Priority) {
		return nil, ErrInvalidPriority
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, fmt.Errorf("failed to generate task uuid: %w", err)
	}

	task := &models.Task{
		ID:          taskUUID.String(),
		OwnerID:     ownerID,
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    params.Priority,
		Category:    params.Category,
		Completed:   params.Completed,
		Starred:     params.Starred,
		CreatedAt:   time.Now(),
	}

	if err = s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", ownerID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, ownerID string) ([]*models.Task, error) {
	return s.tasks.ListTasks(ctx, ownerID)
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, ownerID, id string, params UpdateTaskParams) (*models.Task, error) {
	if params.Title != nil {
		if err := validateTitle(*params.Title); err != nil {
			return nil, err
		}
	}
	if params.Priority != nil && !models.ValidPriority(*params.Priority) {
		return nil, ErrInvalidPriority
	}

	task, err := s.tasks.UpdateTask(ctx, ownerID, id, repository.TaskUpdate{
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    params.Priority,
		Category:    params.Category,
		Completed:   params.Completed,
		Starred:     params.Starred,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("task_id", id).
		Str("user_id", ownerID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, id string) error {
	err := s.tasks.DeleteTask(ctx, ownerID, id)
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("task_id", id).
		Str("user_id", ownerID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) DeleteTasks(ctx context.Context, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return ErrNoTaskIDs
	}

	err := s.tasks.DeleteTasks(ctx, ownerID, ids)
	if err != nil {
		return err
	}

	s.logger.Info().
		Int("count", len(ids)).
		Str("user_id", ownerID).
		Msg("deleted tasks")
	return nil
}

func (s *taskServiceImpl) ToggleComplete(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.tasks.ToggleComplete(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("task_id", id).
		Bool("completed", task.Completed).
		Msg("toggled task completion")
	return task, nil
}

func (s *taskServiceImpl) ToggleStarred(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.tasks.ToggleStarred(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("task_id", id).
		Bool("starred", task.Starred).
		Msg("toggled task star")
	return task, nil
}

func (s *taskServiceImpl) DuplicateTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.tasks.DuplicateTask(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("source_id", id).
		Msg("duplicated task")
	return task, nil
}

func (s *taskServiceImpl) SearchTasks(ctx context.Context, ownerID string, params SearchTasksParams) (*SearchPage, error) {
	if params.Priority != nil && !models.ValidPriority(*params.Priority) {
		return nil, ErrInvalidPriority
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	result, err := s.tasks.SearchTasks(ctx, ownerID, repository.SearchFilter{
		Query:     params.Query,
		Priority:  params.Priority,
		Category:  params.Category,
		Completed: params.Completed,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	pages := (result.Total + limit - 1) / limit

	return &SearchPage{
		Tasks: result.Tasks,
		Page:  page,
		Limit: limit,
		Total: result.Total,
		Pages: pages,
	}, nil
}
