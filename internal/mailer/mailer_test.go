package mailer

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/keyfold/internal/logging"
)

func TestNew_NoHostSelectsConsole(t *testing.T) {
	m := New(Config{}, logging.NewJSON(io.Discard), io.Discard)
	assert.False(t, m.Enabled())

	_, ok := m.(*consoleMailer)
	require.True(t, ok)
}

func TestNew_NoFromSelectsConsole(t *testing.T) {
	m := New(Config{Host: "smtp.example.com"}, logging.NewJSON(io.Discard), io.Discard)
	assert.False(t, m.Enabled())
}

func TestNew_HostAndFromSelectSMTP(t *testing.T) {
	m := New(Config{Host: "smtp.example.com", From: "noreply@example.com"}, logging.NewJSON(io.Discard), io.Discard)
	require.True(t, m.Enabled())

	sm, ok := m.(*smtpMailer)
	require.True(t, ok)
	// дефолты: порт 587 и starttls
	assert.Equal(t, "587", sm.cfg.Port)
	assert.Equal(t, "starttls", sm.cfg.Security)
}

func TestConsoleMailer_PrintsCodeAndExpiry(t *testing.T) {
	var buf bytes.Buffer
	m := New(Config{}, logging.NewJSON(io.Discard), &buf)

	expires := time.Date(2025, 4, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, m.SendCode(context.Background(), "user@example.com", "483920", expires))

	out := buf.String()
	assert.Contains(t, out, "483920")
	assert.Contains(t, out, "user@example.com")
	assert.Contains(t, out, "2025-04-01T12:30:00Z")
}

func TestMessage_Format(t *testing.T) {
	msg := string(message("from@example.com", "to@example.com", "Subject line", "body text"))

	assert.True(t, strings.HasPrefix(msg, "From: from@example.com\r\n"))
	assert.Contains(t, msg, "To: to@example.com\r\n")
	assert.Contains(t, msg, "Subject: Subject line\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=utf-8\r\n")
	// пустая строка отделяет заголовки от тела
	assert.Contains(t, msg, "\r\n\r\nbody text\r\n")
}

func TestMaskAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "(none)"},
		{"a", "***"},
		{"ab", "***"},
		{"user@example.com", "u***@example.com"},
		{"x@example.com", "x***@example.com"},
		{"no-at-sign", "n***n"},
		{"@leading", "@***g"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskAddress(tt.in), "input %q", tt.in)
	}
}
