package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/KretovDmitry/tinyurl/internal/config"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cfg := config.NewForTest()
	cfg.Logger.Path = filepath.Join(t.TempDir(), "app.log")

	l, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, l)

	cfg.Logger.Level = "verbose"
	_, err = New(cfg)
	assert.Error(t, err, "unknown level must be rejected")
}

func TestWithRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/abc123", http.NoBody)
	req.Header.Set("X-Request-ID", "req-1")
	req.Header.Set("X-Correlation-ID", "corr-1")

	ctx := WithRequest(context.Background(), req)
	assert.Equal(t, "req-1", RequestID(ctx))

	l, logs := NewForTest()
	l.With(ctx, "id", "abc123").Info("resolved")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "corr-1", fields["correlation_id"])
	assert.Equal(t, "abc123", fields["id"])
}

func TestWithRequest_GeneratesID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	ctx := WithRequest(context.Background(), req)
	assert.NotEmpty(t, RequestID(ctx))
}

func TestLog(t *testing.T) {
	tests := []struct {
		level sqldblogger.Level
		want  zapcore.Level
	}{
		{level: sqldblogger.LevelError, want: zapcore.ErrorLevel},
		{level: sqldblogger.LevelInfo, want: zapcore.InfoLevel},
		{level: sqldblogger.LevelDebug, want: zapcore.DebugLevel},
		{level: sqldblogger.LevelTrace, want: zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			l, logs := NewForTest()
			l.Log(context.Background(), tt.level, "QueryRowContext",
				map[string]any{"query": "SELECT url FROM urls WHERE id = $1"})

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.want, entry.Level)
			assert.Equal(t, "QueryRowContext", entry.Message)
			assert.Equal(t, "SELECT url FROM urls WHERE id = $1", entry.ContextMap()["query"])
		})
	}
}
