package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/tasktrack/internal/database"
	"github.com/BradenHooton/tasktrack/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, password_hash, created_at, last_login_at, is_active, failed_login_attempts, locked_until`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt,
		&user.LastLoginAt, &user.IsActive, &user.FailedLoginAttempts, &user.LockedUntil,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &user, nil
}

// Create inserts a new user. A duplicate email yields models.ErrConflict from
// the unique index; no existence check is made beforehand.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, created_at, is_active, failed_login_attempts)
		VALUES ($1, $2, $3, $4, TRUE, 0)
		RETURNING ` + userColumns

	created, err := scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetActiveByEmail expects an already normalized email.
func (r *UserRepository) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = TRUE`

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetLockedUntil returns the persisted lockout expiry of an active user, which
// may be nil.
func (r *UserRepository) GetLockedUntil(ctx context.Context, email string) (*time.Time, error) {
	query := `SELECT locked_until FROM users WHERE email = $1 AND is_active = TRUE`

	var lockedUntil *time.Time
	if err := r.pool.QueryRow(ctx, query, email).Scan(&lockedUntil); err != nil {
		return nil, fmt.Errorf("failed to get lockout state: %w", database.MapPostgresError(err))
	}
	return lockedUntil, nil
}

// IncrementFailedAttempts adds one failure and, when the new count reaches
// threshold, sets locked_until. Both happen in one statement so concurrent
// failures are never lost.
func (r *UserRepository) IncrementFailedAttempts(ctx context.Context, id string, threshold int, lockUntil time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
			locked_until = CASE
				WHEN failed_login_attempts + 1 >= $2 THEN $3
				ELSE locked_until
			END
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, id, threshold, lockUntil))
	if err != nil {
		return nil, fmt.Errorf("failed to record failed attempt: %w", err)
	}
	return user, nil
}

// ResetFailedAttempts clears lockout state and stamps the successful login time.
func (r *UserRepository) ResetFailedAttempts(ctx context.Context, id string, loginAt time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET failed_login_attempts = 0, locked_until = NULL, last_login_at = $2
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, id, loginAt))
	if err != nil {
		return nil, fmt.Errorf("failed to reset failed attempts: %w", err)
	}
	return user, nil
}
