package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkghttp.ErrorResponse {
	t.Helper()
	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { pkghttp.WriteBadRequest(w, "msg") }, http.StatusBadRequest, "bad_request"},
		{"unauthorized", func(w http.ResponseWriter) { pkghttp.WriteUnauthorized(w, "msg") }, http.StatusUnauthorized, "unauthorized"},
		{"not found", func(w http.ResponseWriter) { pkghttp.WriteNotFound(w, "msg") }, http.StatusNotFound, "not_found"},
		{"conflict", func(w http.ResponseWriter) { pkghttp.WriteConflict(w, "msg") }, http.StatusConflict, "conflict"},
		{"too many requests", func(w http.ResponseWriter) { pkghttp.WriteTooManyRequests(w, "msg") }, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"internal", func(w http.ResponseWriter) { pkghttp.WriteInternalError(w, "msg") }, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, "msg", resp.Message)
			assert.Empty(t, resp.Details)
		})
	}
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteValidationError(w, "password must contain at least one digit", "password")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "validation_error", resp.Error)
	assert.Equal(t, "password", resp.Details)
}

func TestErrorResponse_OmitsEmptyDetails(t *testing.T) {
	data, err := json.Marshal(pkghttp.ErrorResponse{Error: "x", Message: "y"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"x","message":"y"}`, string(data))
}

func TestWriteJSON_NoCache(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.NoCache(w)
	pkghttp.WriteJSON(w, http.StatusCreated, pkghttp.MessageResponse{Message: "ok"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"message":"ok"}`, w.Body.String())
}
