// Package memory keeps users, goals and tasks in process memory. It backs
// STORAGE_DRIVER=memory for local runs and the end-to-end tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"goaltracker/internal/model"
	"goaltracker/internal/repository"
)

// Storage holds all three collections behind one lock.
type Storage struct {
	mu    sync.RWMutex
	users map[string]model.User
	goals map[string]model.Goal
	tasks map[string]model.Task
}

// New returns an empty storage.
func New() *Storage {
	return &Storage{
		users: make(map[string]model.User),
		goals: make(map[string]model.Goal),
		tasks: make(map[string]model.Task),
	}
}

// Set exposes the storage through the repository interfaces.
func (s *Storage) Set() repository.Set {
	return repository.Set{
		Users: (*userStore)(s),
		Goals: (*goalStore)(s),
		Tasks: (*taskStore)(s),
	}
}

type userStore Storage

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *userStore) Update(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, u := range s.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *userStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type goalStore Storage

func (s *goalStore) Create(ctx context.Context, goal *model.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	goal.CreatedAt, goal.UpdatedAt = now, now
	s.goals[goal.ID] = *goal
	return nil
}

func (s *goalStore) Update(ctx context.Context, goal *model.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[goal.ID]; !ok {
		return repository.ErrNotFound
	}
	goal.UpdatedAt = time.Now().UTC()
	s.goals[goal.ID] = *goal
	return nil
}

func (s *goalStore) UpdateProgress(ctx context.Context, id string, progress int, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.Progress, g.IsCompleted, g.UpdatedAt = progress, completed, time.Now().UTC()
	s.goals[id] = g
	return nil
}

func (s *goalStore) FindByID(ctx context.Context, id string) (*model.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (s *goalStore) ListByUser(ctx context.Context, userID string) ([]model.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goals := []model.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			goals = append(goals, g)
		}
	}
	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})
	return goals, nil
}

func (s *goalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

type taskStore Storage

func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now
	s.tasks[task.ID] = *task
	return nil
}

func (s *taskStore) Update(ctx context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return repository.ErrNotFound
	}
	task.UpdatedAt = time.Now().UTC()
	s.tasks[task.ID] = *task
	return nil
}

func (s *taskStore) FindByID(ctx context.Context, id string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *taskStore) ListByGoal(ctx context.Context, goalID string) ([]model.Task, error) {
	return s.filter(func(t model.Task) bool { return t.GoalID == goalID }), nil
}

func (s *taskStore) ListByUserDueBetween(ctx context.Context, userID string, from, to time.Time) ([]model.Task, error) {
	return s.filter(func(t model.Task) bool {
		return t.UserID == userID && !t.DueDate.Before(from) && !t.DueDate.After(to)
	}), nil
}

// filter returns matching tasks ordered by due date, then creation time.
func (s *taskStore) filter(match func(model.Task) bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := []model.Task{}
	for _, t := range s.tasks {
		if match(t) {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].DueDate.Equal(tasks[j].DueDate) {
			return tasks[i].DueDate.Before(tasks[j].DueDate)
		}
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

func (s *taskStore) CountByGoal(ctx context.Context, goalID string) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total, completed int64
	for _, t := range s.tasks {
		if t.GoalID != goalID {
			continue
		}
		total++
		if t.IsCompleted {
			completed++
		}
	}
	return total, completed, nil
}

func (s *taskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *taskStore) DeleteByGoal(ctx context.Context, goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tasks {
		if t.GoalID == goalID {
			delete(s.tasks, id)
		}
	}
	return nil
}

func (s *taskStore) CompleteAllByGoal(ctx context.Context, goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for id, t := range s.tasks {
		if t.GoalID == goalID {
			t.IsCompleted, t.UpdatedAt = true, now
			s.tasks[id] = t
		}
	}
	return nil
}

// Ping always succeeds.
func (s *Storage) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Storage) Close(ctx context.Context) error { return nil }
