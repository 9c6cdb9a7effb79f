package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/tasktrack/internal/models"
)

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory UserRepository with the same atomicity as the
// SQL one: each call runs under a single lock and email is unique.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.LockedUntil != nil {
		t := *u.LockedUntil
		c.LockedUntil = &t
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, fmt.Errorf("failed to create user: %w", models.ErrConflict)
		}
	}
	stored := cloneUser(user)
	stored.IsActive = true
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) activeByEmail(email string) *models.User {
	for _, u := range r.users {
		if u.Email == email && u.IsActive {
			return u
		}
	}
	return nil
}

func (r *fakeUserRepo) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.activeByEmail(email)
	if u == nil {
		return nil, models.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) GetLockedUntil(ctx context.Context, email string) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.activeByEmail(email)
	if u == nil {
		return nil, models.ErrNotFound
	}
	return cloneUser(u).LockedUntil, nil
}

func (r *fakeUserRepo) IncrementFailedAttempts(ctx context.Context, id string, threshold int, lockUntil time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= threshold {
		u.LockedUntil = &lockUntil
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) ResetFailedAttempts(ctx context.Context, id string, loginAt time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &loginAt
	return cloneUser(u), nil
}

func (r *fakeUserRepo) byEmail(email string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u := r.activeByEmail(email); u != nil {
		return cloneUser(u)
	}
	return nil
}

// MockAccounts implements Accounts for error-path tests
type MockAccounts struct {
	FindActiveByEmailFunc   func(ctx context.Context, email string) (*models.User, error)
	GetByIDFunc             func(ctx context.Context, id string) (*models.User, error)
	CreateFunc              func(ctx context.Context, email, password string) (*models.User, error)
	RecordFailedAttemptFunc func(ctx context.Context, user *models.User) (*models.User, error)
	RecordSuccessFunc       func(ctx context.Context, user *models.User) (*models.User, error)
	IsLockedFunc            func(ctx context.Context, email string) (bool, error)
}

func (m *MockAccounts) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.FindActiveByEmailFunc != nil {
		return m.FindActiveByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccounts) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccounts) Create(ctx context.Context, email, password string) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, email, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccounts) RecordFailedAttempt(ctx context.Context, user *models.User) (*models.User, error) {
	if m.RecordFailedAttemptFunc != nil {
		return m.RecordFailedAttemptFunc(ctx, user)
	}
	return user, nil
}

func (m *MockAccounts) RecordSuccess(ctx context.Context, user *models.User) (*models.User, error) {
	if m.RecordSuccessFunc != nil {
		return m.RecordSuccessFunc(ctx, user)
	}
	return user, nil
}

func (m *MockAccounts) IsLocked(ctx context.Context, email string) (bool, error) {
	if m.IsLockedFunc != nil {
		return m.IsLockedFunc(ctx, email)
	}
	return false, nil
}

// MockTaskRepository implements TaskRepository for testing
type MockTaskRepository struct {
	ListByUserFunc func(ctx context.Context, userID string) ([]*models.Task, error)
	CreateFunc     func(ctx context.Context, task *models.Task) (*models.Task, error)
	UpdateFunc     func(ctx context.Context, id int64, userID string, patch models.TaskPatch) (*models.Task, error)
	DeleteFunc     func(ctx context.Context, id int64, userID string) error
}

func (m *MockTaskRepository) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Task{}, nil
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	created := *task
	created.ID = 1
	return &created, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, id int64, userID string, patch models.TaskPatch) (*models.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, userID, patch)
	}
	return nil, models.ErrNotFound
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return nil
}
