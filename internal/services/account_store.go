package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/BradenHooton/tasktrack/internal/models"
)

// UserRepository defines the persistence operations the account store relies on
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)
	GetLockedUntil(ctx context.Context, email string) (*time.Time, error)
	IncrementFailedAttempts(ctx context.Context, id string, threshold int, lockUntil time.Time) (*models.User, error)
	ResetFailedAttempts(ctx context.Context, id string, loginAt time.Time) (*models.User, error)
}

// PasswordHasher hashes and checks credentials
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	Discard(password string)
}

// LockoutPolicy decides when repeated failures lock an account and for how long.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

// AccountStore owns user identity records: normalized emails, password hashes
// and the persisted lockout counter.
type AccountStore struct {
	repo   UserRepository
	hasher PasswordHasher
	clock  clockwork.Clock
	policy LockoutPolicy
}

func NewAccountStore(repo UserRepository, hasher PasswordHasher, clock clockwork.Clock, policy LockoutPolicy) *AccountStore {
	return &AccountStore{
		repo:   repo,
		hasher: hasher,
		clock:  clock,
		policy: policy,
	}
}

// FindActiveByEmail returns models.ErrNotFound when no active account matches.
func (s *AccountStore) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetActiveByEmail(ctx, models.NormalizeEmail(email))
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create hashes the password and inserts the account. Uniqueness is left to the
// store's unique index, which reports a conflict as models.ErrDuplicateEmail.
func (s *AccountStore) Create(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &models.User{
		ID:           uuid.New().String(),
		Email:        models.NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// RecordFailedAttempt bumps the persisted counter and locks the account once
// the counter reaches the policy threshold.
func (s *AccountStore) RecordFailedAttempt(ctx context.Context, user *models.User) (*models.User, error) {
	lockUntil := s.clock.Now().UTC().Add(s.policy.Duration)
	return s.repo.IncrementFailedAttempts(ctx, user.ID, s.policy.MaxAttempts, lockUntil)
}

// RecordSuccess resets the counter, lifts any lock and stamps the login time.
func (s *AccountStore) RecordSuccess(ctx context.Context, user *models.User) (*models.User, error) {
	return s.repo.ResetFailedAttempts(ctx, user.ID, s.clock.Now().UTC())
}

// IsLocked reports whether an active account exists with a lock still in force.
func (s *AccountStore) IsLocked(ctx context.Context, email string) (bool, error) {
	lockedUntil, err := s.repo.GetLockedUntil(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return lockedUntil != nil && lockedUntil.After(s.clock.Now()), nil
}
