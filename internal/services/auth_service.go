package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/tasktrack/internal/auth"
	"github.com/BradenHooton/tasktrack/internal/models"
	pkgauth "github.com/BradenHooton/tasktrack/pkg/auth"
	pkglogger "github.com/BradenHooton/tasktrack/pkg/logger"
)

// Accounts is the identity store used by AuthService
type Accounts interface {
	FindActiveByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, email, password string) (*models.User, error)
	RecordFailedAttempt(ctx context.Context, user *models.User) (*models.User, error)
	RecordSuccess(ctx context.Context, user *models.User) (*models.User, error)
	IsLocked(ctx context.Context, email string) (bool, error)
}

// AttemptTracker is the in-memory failure window consulted before the database
type AttemptTracker interface {
	IsLocked(key string) bool
	RecordFailedAttempt(key string)
	Clear(key string)
}

// TokenCodec issues and verifies access tokens
type TokenCodec interface {
	Issue(subjectID, email string) (string, error)
	Verify(token string) (*models.TokenClaims, error)
	TTL() time.Duration
}

// RequestMeta carries caller details for audit records
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// AuthResponse is returned by signup and signin
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

// AuthService handles signup, signin and token verification
type AuthService struct {
	accounts    Accounts
	hasher      PasswordHasher
	tracker     AttemptTracker
	tokens      TokenCodec
	timing      *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(
	accounts Accounts,
	hasher PasswordHasher,
	tracker AttemptTracker,
	tokens TokenCodec,
	timing *auth.TimingDelay,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		accounts:    accounts,
		hasher:      hasher,
		tracker:     tracker,
		tokens:      tokens,
		timing:      timing,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Signup creates an account and signs it in.
func (s *AuthService) Signup(ctx context.Context, email, password string, meta RequestMeta) (*AuthResponse, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, models.NewValidationError("email", "email is required")
	}
	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError("password", err.Error())
	}

	event := pkglogger.AuditEvent{
		EventType: pkglogger.EventSignup,
		Email:     email,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	user, err := s.accounts.Create(ctx, email, password)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			event.FailureReason = "duplicate_email"
			s.auditLogger.LogAuthAttempt(ctx, event)
			return nil, models.ErrDuplicateEmail
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	event.UserID, event.Success = user.ID, true
	s.auditLogger.LogAuthAttempt(ctx, event)

	return resp, nil
}

// Signin authenticates email and password. Checks run in a fixed order: the
// in-memory tracker, the persisted lock, account lookup, then the password.
// Unknown accounts and wrong passwords produce the same error and are both
// counted by the tracker.
func (s *AuthService) Signin(ctx context.Context, email, password string, meta RequestMeta) (*AuthResponse, error) {
	start := time.Now()
	email = models.NormalizeEmail(email)

	event := pkglogger.AuditEvent{
		EventType: pkglogger.EventSignin,
		Email:     email,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	if s.tracker.IsLocked(email) {
		event.FailureReason = "rate_limited"
		s.auditLogger.LogAuthAttempt(ctx, event)
		return nil, models.ErrRateLimited
	}

	locked, err := s.accounts.IsLocked(ctx, email)
	if err != nil {
		s.logger.Error("failed to check account lock", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if locked {
		event.FailureReason = "account_locked"
		s.auditLogger.LogAuthAttempt(ctx, event)
		return nil, models.ErrRateLimited
	}

	user, err := s.accounts.FindActiveByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to get user by email", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		s.tracker.RecordFailedAttempt(email)
		s.hasher.Discard(password)

		event.FailureReason = "invalid_credentials"
		s.auditLogger.LogAuthAttempt(ctx, event)
		s.timing.Pad(ctx, start)
		return nil, models.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.tracker.RecordFailedAttempt(email)
		updated, err := s.accounts.RecordFailedAttempt(ctx, user)
		if err != nil {
			s.logger.Error("failed to record failed attempt", slog.String("user_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		if updated.LockedUntil != nil && (user.LockedUntil == nil || !updated.LockedUntil.Equal(*user.LockedUntil)) {
			s.logger.Warn("account locked after repeated failures",
				slog.String("user_id", user.ID),
				slog.Int("failed_attempts", updated.FailedLoginAttempts))
		}

		event.UserID, event.FailureReason = user.ID, "invalid_credentials"
		s.auditLogger.LogAuthAttempt(ctx, event)
		s.timing.Pad(ctx, start)
		return nil, models.ErrInvalidCredentials
	}

	s.tracker.Clear(email)
	user, err = s.accounts.RecordSuccess(ctx, user)
	if err != nil {
		s.logger.Error("failed to record successful login", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", slog.String("user_id", user.ID))
	event.UserID, event.Success = user.ID, true
	s.auditLogger.LogAuthAttempt(ctx, event)

	return resp, nil
}

// VerifyToken returns the claims of a valid token or models.ErrUnauthorized.
func (s *AuthService) VerifyToken(token string) (*models.TokenClaims, error) {
	return s.tokens.Verify(token)
}

// IsLocked reports whether either lockout layer currently blocks email.
func (s *AuthService) IsLocked(ctx context.Context, email string) (bool, error) {
	email = models.NormalizeEmail(email)
	if s.tracker.IsLocked(email) {
		return true, nil
	}

	locked, err := s.accounts.IsLocked(ctx, email)
	if err != nil {
		s.logger.Error("failed to check account lock", slog.Any("error", err))
		return false, models.ErrInternalServer
	}
	return locked, nil
}

// CurrentUser loads the active account behind a verified token.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user by id", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !user.IsActive {
		return nil, models.ErrNotFound
	}
	return userModelToResponse(user), nil
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to issue access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        userModelToResponse(user),
	}, nil
}

func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
