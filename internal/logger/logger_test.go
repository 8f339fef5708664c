package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		env      string
		wantJSON bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Writer: &buf, Environment: tt.env, Level: slog.LevelInfo})
			l.Info("renewed", "loan_id", "abc")

			var decoded map[string]any
			err := json.Unmarshal(buf.Bytes(), &decoded)
			if tt.wantJSON {
				require.NoError(t, err)
				assert.Equal(t, "renewed", decoded["msg"])
				assert.Equal(t, "abc", decoded["loan_id"])
			} else {
				assert.Error(t, err)
				assert.Contains(t, buf.String(), "loan_id=abc")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Format: formatPretty, Level: slog.LevelWarn})

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	l := slog.New(h).With("service", "loans").WithGroup("loan")

	l.Info("renewal applied", "id", "bi-1")

	out := buf.String()
	assert.Contains(t, out, "service=loans")
	assert.Contains(t, out, "loan.id=bi-1")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Info("nothing") })
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Format: formatJSON, Level: slog.LevelDebug})

	h := RequestLogger(l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/loans/x/renew", nil))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "WARN", decoded["level"])
	assert.Equal(t, "/api/v1/loans/x/renew", decoded["path"])
	assert.EqualValues(t, 404, decoded["status"])
}
