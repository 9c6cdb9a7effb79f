package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/tasktrack/internal/models"
	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedHandler(t *testing.T, tm *TokenManager) (http.Handler, *models.TokenClaims) {
	t.Helper()
	seen := &models.TokenClaims{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r)
		require.NotNil(t, claims)
		*seen = *claims
		w.WriteHeader(http.StatusNoContent)
	})
	return AuthMiddleware(tm.Verify)(next), seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, clockwork.NewFakeClockAt(testEpoch))
	handler, seen := protectedHandler(t, tm)

	token, err := tm.Issue("user-123", "user@example.com")
	require.NoError(t, err)

	for _, scheme := range []string{"Bearer", "bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Authorization", scheme+" "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "user-123", seen.UserID())
		assert.Equal(t, "user@example.com", seen.Email)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	tm := NewTokenManager(testSecret, time.Hour, clock)
	handler, _ := protectedHandler(t, tm)

	expired, err := NewTokenManager(testSecret, time.Minute, clockwork.NewFakeClockAt(testEpoch.Add(-time.Hour))).
		Issue("user-123", "user@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

			var resp pkghttp.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "unauthorized", resp.Error)
			assert.Equal(t, "Could not validate credentials", resp.Message)
		})
	}
}

func TestGetUserFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetUserFromContext(req))
}
