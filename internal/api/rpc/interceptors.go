package rpc

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// InterceptorLogger adapts the application logger to the logging interceptor.
func InterceptorLogger(l logger.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		ll := l.With(ctx, fields...)

		switch lvl {
		case logging.LevelDebug:
			ll.Debug(msg)
		case logging.LevelInfo:
			ll.Info(msg)
		case logging.LevelWarn:
			ll.Warn(msg)
		case logging.LevelError:
			ll.Error(msg)
		default:
			panic(fmt.Sprintf("unknown level %v", lvl))
		}
	})
}

// unaryInterceptors logs every finished call and turns panics into Internal errors.
func unaryInterceptors(l logger.Logger) grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(
		logging.UnaryServerInterceptor(InterceptorLogger(l),
			logging.WithLogOnEvents(logging.FinishCall),
		),
		recovery.UnaryServerInterceptor(
			recovery.WithRecoveryHandlerContext(func(ctx context.Context, p any) error {
				l.With(ctx).Errorf("handler panic: %v\n%s", p, debug.Stack())
				return status.Error(codes.Internal, "internal error")
			}),
		),
	)
}
