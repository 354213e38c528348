// Package memory holds an in-memory implementation of the repository
// interfaces. It mirrors the semantics of the postgres implementation
// and backs the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/models"
	"taskboard/internal/repository"
)

type taskRecord struct {
	task models.Task
	// seq breaks created-at ties so newest-first stays deterministic.
	seq int64
}

type Store struct {
	mu sync.RWMutex

	nextSeq int64
	users   map[string]models.User
	tasks   map[string]taskRecord
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]models.User),
		tasks: make(map[string]taskRecord),
	}
}

func cloneTask(t models.Task) *models.Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.Priority != nil {
		p := *t.Priority
		out.Priority = &p
	}
	if t.Category != nil {
		c := *t.Category
		out.Category = &c
	}
	return &out
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return repository.ErrUserAlreadyExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// authorize mirrors the postgres ownership guard.
func (s *Store) authorize(ownerID, id string) (taskRecord, error) {
	record, ok := s.tasks[id]
	if !ok {
		return taskRecord{}, repository.ErrTaskNotFound
	}
	if record.task.OwnerID != ownerID {
		return taskRecord{}, repository.ErrTaskForbidden
	}
	return record, nil
}

func (s *Store) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	s.tasks[task.ID] = taskRecord{task: *cloneTask(*task), seq: s.nextSeq}
	return nil
}

func (s *Store) GetTask(_ context.Context, ownerID, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, err := s.authorize(ownerID, id)
	if err != nil {
		return nil, err
	}
	return cloneTask(record.task), nil
}

func (s *Store) ListTasks(_ context.Context, ownerID string) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]taskRecord, 0, len(s.tasks))
	for _, record := range s.tasks {
		if record.task.OwnerID == ownerID {
			records = append(records, record)
		}
	}
	sortNewestFirst(records)

	tasks := make([]*models.Task, len(records))
	for i, record := range records {
		tasks[i] = cloneTask(record.task)
	}
	return tasks, nil
}

func (s *Store) UpdateTask(_ context.Context, ownerID, id string, update repository.TaskUpdate) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.authorize(ownerID, id)
	if err != nil {
		return nil, err
	}
	if record.task.Archived {
		return nil, repository.ErrTaskArchived
	}

	task := record.task
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.DueDate != nil {
		due := *update.DueDate
		task.DueDate = &due
	}
	if update.Priority != nil {
		p := *update.Priority
		task.Priority = &p
	}
	if update.Category != nil {
		c := *update.Category
		task.Category = &c
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	if update.Starred != nil {
		task.Starred = *update.Starred
	}

	record.task = task
	s.tasks[id] = record
	return cloneTask(task), nil
}

func (s *Store) DeleteTask(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authorize(ownerID, id); err != nil {
		return err
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) DeleteTasks(_ context.Context, ownerID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// All-or-nothing: reject the batch before deleting anything.
	for _, id := range ids {
		record, ok := s.tasks[id]
		if ok && record.task.OwnerID != ownerID {
			return repository.ErrTaskForbidden
		}
	}
	for _, id := range ids {
		delete(s.tasks, id)
	}
	return nil
}

func (s *Store) ToggleComplete(_ context.Context, ownerID, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.authorize(ownerID, id)
	if err != nil {
		return nil, err
	}

	record.task.Completed = !record.task.Completed
	record.task.Archived = record.task.Completed
	s.tasks[id] = record
	return cloneTask(record.task), nil
}

func (s *Store) ToggleStarred(_ context.Context, ownerID, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.authorize(ownerID, id)
	if err != nil {
		return nil, err
	}

	record.task.Starred = !record.task.Starred
	s.tasks[id] = record
	return cloneTask(record.task), nil
}

func (s *Store) DuplicateTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.authorize(ownerID, id)
	if err != nil {
		return nil, err
	}

	copyUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task uuid: %w", err)
	}

	duplicate := *cloneTask(record.task)
	duplicate.ID = copyUUID.String()
	duplicate.Title += " (copy)"
	duplicate.Completed = false
	duplicate.Starred = false
	duplicate.Archived = false
	duplicate.CreatedAt = time.Now()

	s.nextSeq++
	s.tasks[duplicate.ID] = taskRecord{task: duplicate, seq: s.nextSeq}
	return cloneTask(duplicate), nil
}

func (s *Store) SearchTasks(_ context.Context, ownerID string, filter repository.SearchFilter) (*repository.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]taskRecord, 0)
	for _, record := range s.tasks {
		if record.task.OwnerID != ownerID {
			continue
		}
		if !matches(record.task, filter) {
			continue
		}
		matched = append(matched, record)
	}
	sortNewestFirst(matched)

	result := &repository.SearchResult{
		Tasks: make([]*models.Task, 0),
		Total: len(matched),
	}

	for i := filter.Offset; i < len(matched) && i < filter.Offset+filter.Limit; i++ {
		result.Tasks = append(result.Tasks, cloneTask(matched[i].task))
	}
	return result, nil
}

func matches(task models.Task, filter repository.SearchFilter) bool {
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(task.Title), q) &&
			!strings.Contains(strings.ToLower(task.Description), q) {
			return false
		}
	}
	if filter.Priority != nil {
		if task.Priority == nil || *task.Priority != *filter.Priority {
			return false
		}
	}
	if filter.Category != nil {
		if task.Category == nil || *task.Category != *filter.Category {
			return false
		}
	}
	if filter.Completed != nil && task.Completed != *filter.Completed {
		return false
	}
	return true
}

func sortNewestFirst(records []taskRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].task.CreatedAt.Equal(records[j].task.CreatedAt) {
			return records[i].seq > records[j].seq
		}
		return records[i].task.CreatedAt.After(records[j].task.CreatedAt)
	})
}
