package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/BradenHooton/tasktrack/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, models.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("query: %w", pgx.ErrNoRows), models.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_users_email"}, models.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, models.ErrBadRequest},
		{"not null", &pgconn.PgError{Code: pgerrcode.NotNullViolation}, models.ErrBadRequest},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation}, models.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, MapPostgresError(tt.in), tt.want)
		})
	}
}

func TestMapPostgresError_PassThrough(t *testing.T) {
	assert.NoError(t, MapPostgresError(nil))

	other := errors.New("connection reset")
	assert.Same(t, other, MapPostgresError(other))

	deadlock := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
	assert.Equal(t, error(deadlock), MapPostgresError(deadlock))
}
