package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizedEmail(t *testing.T) {
	tests := map[string]string{
		"user@example.com":     "u***@*******.com",
		"a@b.co":               "a@*.co",
		"jane@mail.example.io": "j***@****.*******.io",
		"not-an-email":         "[invalid-email]",
		"@example.com":         "[invalid-email]",
		"a@b@c":                "[invalid-email]",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizedEmail(in), in)
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("email=a@b.com"))
	assert.True(t, SanitizeQueryString("Access_Token=abc"))
	assert.False(t, SanitizeQueryString("page=2&sort=created_at"))
	assert.False(t, SanitizeQueryString(""))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestAuditLogger_LogAuthAttempt(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(New(&buf, "info"))

	al.LogAuthAttempt(context.Background(), AuditEvent{
		EventType:     EventSignin,
		Email:         "user@example.com",
		IPAddress:     "203.0.113.7",
		Success:       false,
		FailureReason: "invalid_credentials",
	})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "audit_event", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "signin", record["event_type"])
	assert.Equal(t, "u***@*******.com", record["email"])
	assert.Equal(t, "invalid_credentials", record["failure_reason"])
	assert.NotContains(t, buf.String(), "user@example.com")
}

func TestAuditLogger_NilIsNoop(t *testing.T) {
	var al *AuditLogger
	assert.NotPanics(t, func() {
		al.LogAuthAttempt(context.Background(), AuditEvent{EventType: EventSignup})
	})
}
