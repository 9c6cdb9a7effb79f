package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/tasktrack/internal/auth"
	"github.com/BradenHooton/tasktrack/internal/models"
	"github.com/BradenHooton/tasktrack/internal/services"
	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds user claims to request context for testing authenticated endpoints
func WithAuthContext(req *http.Request, userID, email string) *http.Request {
	claims := &models.TokenClaims{
		Email:            email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// WithURLParam sets a chi route parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response and returns it
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	SignupFunc      func(ctx context.Context, email, password string, meta services.RequestMeta) (*services.AuthResponse, error)
	SigninFunc      func(ctx context.Context, email, password string, meta services.RequestMeta) (*services.AuthResponse, error)
	IsLockedFunc    func(ctx context.Context, email string) (bool, error)
	CurrentUserFunc func(ctx context.Context, userID string) (*services.UserResponse, error)
}

func (m *MockAuthService) Signup(ctx context.Context, email, password string, meta services.RequestMeta) (*services.AuthResponse, error) {
	if m.SignupFunc == nil {
		return nil, models.ErrDuplicateEmail
	}
	return m.SignupFunc(ctx, email, password, meta)
}

func (m *MockAuthService) Signin(ctx context.Context, email, password string, meta services.RequestMeta) (*services.AuthResponse, error) {
	if m.SigninFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.SigninFunc(ctx, email, password, meta)
}

func (m *MockAuthService) IsLocked(ctx context.Context, email string) (bool, error) {
	if m.IsLockedFunc == nil {
		return false, nil
	}
	return m.IsLockedFunc(ctx, email)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, userID string) (*services.UserResponse, error) {
	if m.CurrentUserFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.CurrentUserFunc(ctx, userID)
}

// MockTaskService implements TaskServiceInterface for testing
type MockTaskService struct {
	ListFunc         func(ctx context.Context, userID string) ([]*models.Task, error)
	CreateFunc       func(ctx context.Context, userID string, input services.CreateTaskInput) (*models.Task, error)
	SetCompletedFunc func(ctx context.Context, id int64, userID string, completed bool) (*models.Task, error)
	UpdateFunc       func(ctx context.Context, id int64, userID string, input services.UpdateTaskInput) (*models.Task, error)
	DeleteFunc       func(ctx context.Context, id int64, userID string) error
}

func (m *MockTaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, userID)
}

func (m *MockTaskService) Create(ctx context.Context, userID string, input services.CreateTaskInput) (*models.Task, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateFunc(ctx, userID, input)
}

func (m *MockTaskService) SetCompleted(ctx context.Context, id int64, userID string, completed bool) (*models.Task, error) {
	if m.SetCompletedFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SetCompletedFunc(ctx, id, userID, completed)
}

func (m *MockTaskService) Update(ctx context.Context, id int64, userID string, input services.UpdateTaskInput) (*models.Task, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, id, userID, input)
}

func (m *MockTaskService) Delete(ctx context.Context, id int64, userID string) error {
	if m.DeleteFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteFunc(ctx, id, userID)
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	Err error
}

func (m *MockPinger) HealthCheck(ctx context.Context) error {
	return m.Err
}
