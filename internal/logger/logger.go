// Package logger provides context-aware structured logging built on zap.
package logger

import (
	"context"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/KretovDmitry/tinyurl/internal/config"
	"github.com/google/uuid"
	sqldblogger "github.com/simukti/sqldb-logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a logger that supports log levels, context and structured logging.
type Logger interface {
	// With returns a logger based off the root logger and decorates it
	// with the given context and arguments.
	With(ctx context.Context, args ...any) Logger

	// Debug uses fmt.Sprint to construct and log a message at DEBUG level.
	Debug(args ...any)
	// Info uses fmt.Sprint to construct and log a message at INFO level.
	Info(args ...any)
	// Warn uses fmt.Sprint to construct and log a message at WARN level.
	Warn(args ...any)
	// Error uses fmt.Sprint to construct and log a message at ERROR level.
	Error(args ...any)

	// Debugf uses fmt.Sprintf to construct and log a message at DEBUG level.
	Debugf(format string, args ...any)
	// Infof uses fmt.Sprintf to construct and log a message at INFO level.
	Infof(format string, args ...any)
	// Warnf uses fmt.Sprintf to construct and log a message at WARN level.
	Warnf(format string, args ...any)
	// Errorf uses fmt.Sprintf to construct and log a message at ERROR level.
	Errorf(format string, args ...any)

	// Log implements sqldblogger.Logger so every database query
	// can be written with the application logger.
	Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]any)

	// Sync flushes any buffered log entries.
	Sync() error
}

type contextKey int

const (
	requestIDKey contextKey = iota
	correlationIDKey
)

type logger struct {
	*zap.SugaredLogger
}

var _ sqldblogger.Logger = (*logger)(nil)

// New creates a new logger using the logger section of the configuration.
// Entries go to stdout and, when a path is configured, to a rotated JSON file.
func New(cfg *config.Config) (Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Logger.Level)
	if err != nil {
		return nil, err
	}

	logLevel := zap.NewAtomicLevelAt(level)

	developmentCfg := zap.NewDevelopmentEncoderConfig()
	developmentCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(developmentCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), logLevel),
	}

	if cfg.Logger.Path != "" {
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Logger.Path,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
			Compress:   true,
		})

		productionCfg := zap.NewProductionEncoderConfig()
		productionCfg.TimeKey = "timestamp"
		productionCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileEncoder := zapcore.NewJSONEncoder(productionCfg)

		cores = append(cores, zapcore.NewCore(fileEncoder, file, logLevel).
			With(buildInfoFields()))
	}

	// log to multiple destinations (console and file)
	l := zap.New(zapcore.NewTee(cores...))

	return NewWithZap(l), nil
}

// NewWithZap creates a new logger using the pre-configured zap logger.
func NewWithZap(l *zap.Logger) Logger {
	return &logger{l.Sugar()}
}

// NewForTest returns a new logger and the corresponding observed logs
// which can be used in unit tests to verify log entries.
func NewForTest() (Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewWithZap(zap.New(core)), recorded
}

// With returns a logger based off the root logger and decorates it
// with the given context and arguments.
//
// If the context contains request ID and/or correlation ID information
// (recorded via WithRequest()), they will be added to every log message
// generated by the new logger.
//
// The arguments should be specified as a sequence of name, value pairs
// with names being strings.
func (l *logger) With(ctx context.Context, args ...any) Logger {
	if ctx != nil {
		if id, ok := ctx.Value(requestIDKey).(string); ok {
			args = append(args, zap.String("request_id", id))
		}
		if id, ok := ctx.Value(correlationIDKey).(string); ok {
			args = append(args, zap.String("correlation_id", id))
		}
	}
	if len(args) > 0 {
		return &logger{l.SugaredLogger.With(args...)}
	}
	return l
}

// Log writes a database query log entry.
func (l *logger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]any) {
	args := make([]any, 0, len(data)*2)
	for k, v := range data {
		args = append(args, k, v)
	}

	s := l.With(ctx).(*logger).SugaredLogger

	switch level {
	case sqldblogger.LevelError:
		s.Errorw(msg, args...)
	case sqldblogger.LevelInfo:
		s.Infow(msg, args...)
	default:
		s.Debugw(msg, args...)
	}
}

// WithRequest returns a context which knows the request ID and correlation ID
// in the given request.
func WithRequest(ctx context.Context, req *http.Request) context.Context {
	id := getRequestID(req)
	if id == "" {
		id = uuid.NewString()
	}
	ctx = context.WithValue(ctx, requestIDKey, id)
	if cid := getCorrelationID(req); cid != "" {
		ctx = context.WithValue(ctx, correlationIDKey, cid)
	}
	return ctx
}

// RequestID returns the request ID recorded in the context by WithRequest.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// getCorrelationID extracts the correlation ID from the HTTP request.
func getCorrelationID(req *http.Request) string {
	return req.Header.Get("X-Correlation-ID")
}

// getRequestID extracts the request ID from the HTTP request.
func getRequestID(req *http.Request) string {
	return req.Header.Get("X-Request-ID")
}

func buildInfoFields() []zapcore.Field {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	var gitRevision string
	for _, v := range buildInfo.Settings {
		if v.Key == "vcs.revision" {
			gitRevision = v.Value
			break
		}
	}

	return []zapcore.Field{
		zap.String("git_revision", gitRevision),
		zap.String("go_version", buildInfo.GoVersion),
	}
}
