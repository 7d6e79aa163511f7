package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return New(h), &buf
}

func TestLogger_WithFields(t *testing.T) {
	log, buf := newTestLogger(t)

	log.WithFields(map[string]any{"email": "a@x.com", "attempt": 2}).Info("hello", "k", "v")

	out := buf.String()
	for _, want := range []string{"level=INFO", "msg=hello", "email=a@x.com", "attempt=2", "k=v"} {
		assert.Contains(t, out, want)
	}
}

func TestGetLoggerFromContext(t *testing.T) {
	log, _ := newTestLogger(t)

	assert.Same(t, log, GetLoggerFromContext(WithLogger(context.Background(), log)))
	assert.NotNil(t, GetLoggerFromContext(context.Background()))
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"ok", http.StatusOK, "level=INFO"},
		{"client error", http.StatusNotFound, "level=WARN"},
		{"server error", http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, buf := newTestLogger(t)

			var inner *Logger
			h := middleware.RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inner = GetLoggerFromContext(r.Context())
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("body"))
			})))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/current", nil))

			require.NotNil(t, inner)
			assert.NotSame(t, log, inner)

			out := buf.String()
			assert.Contains(t, out, "request completed")
			assert.Contains(t, out, tc.level)
			assert.Contains(t, out, "path=/api/users/current")
			assert.Contains(t, out, "bytes=4")
			assert.Contains(t, out, "request_id=")
		})
	}
}
