package models

import (
	"strings"
	"time"
)

type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	CreatedAt           time.Time
	LastLoginAt         *time.Time
	IsActive            bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
}

// NormalizeEmail is the canonical form used for storage, lookups and lockout keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
