package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/BradenHooton/tasktrack/internal/auth"
	"github.com/BradenHooton/tasktrack/internal/models"
	"github.com/BradenHooton/tasktrack/internal/services"
	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
)

const lockedMessage = "Too many failed login attempts. Please try again later."

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Signup(ctx context.Context, email, password string, meta services.RequestMeta) (*services.AuthResponse, error)
	Signin(ctx context.Context, email, password string, meta services.RequestMeta) (*services.AuthResponse, error)
	IsLocked(ctx context.Context, email string) (bool, error)
	CurrentUser(ctx context.Context, userID string) (*services.UserResponse, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// SigninRequest represents the request body for signin
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) requestMeta(r *http.Request) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.Header.Get("User-Agent"),
	}
}

// Signup handles account creation
// @Summary Create an account
// @Accept json
// @Param request body SignupRequest true "Signup request"
// @Produce json
// @Success 201 {object} services.AuthResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 409 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	authResp, err := h.service.Signup(r.Context(), req.Email, req.Password, h.requestMeta(r))
	if err != nil {
		var vErr *models.ValidationError
		switch {
		case errors.As(err, &vErr):
			pkghttp.WriteValidationError(w, vErr.Message, vErr.Field)
		case errors.Is(err, models.ErrDuplicateEmail):
			pkghttp.WriteConflict(w, "Email already registered")
		default:
			pkghttp.WriteInternalError(w, "Failed to create user account")
		}
		return
	}

	pkghttp.NoCache(w)
	pkghttp.WriteJSON(w, http.StatusCreated, authResp)
}

// Signin handles email and password authentication
// @Summary Sign in
// @Accept json
// @Param request body SigninRequest true "Signin request"
// @Produce json
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /api/auth/signin [post]
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	// Refuse locked accounts before spending a hash comparison
	locked, err := h.service.IsLocked(r.Context(), req.Email)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	if locked {
		pkghttp.WriteTooManyRequests(w, lockedMessage)
		return
	}

	authResp, err := h.service.Signin(r.Context(), req.Email, req.Password, h.requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Invalid credentials")
		case errors.Is(err, models.ErrRateLimited):
			pkghttp.WriteTooManyRequests(w, lockedMessage)
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.NoCache(w)
	pkghttp.WriteJSON(w, http.StatusOK, authResp)
}

// Me returns the signed-in account
// @Summary Current user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.UserResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	user, err := h.service.CurrentUser(r.Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, user)
}

// Logout acknowledges a sign-out. Tokens are stateless, so the client discards its copy.
// @Summary Sign out
// @Security BearerAuth
// @Produce json
// @Success 200 {object} pkghttp.MessageResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, pkghttp.MessageResponse{Message: "Successfully logged out"})
}
