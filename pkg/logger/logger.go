// Package logger provides the process-wide structured logger built on
// log/slog.
//
// WithCtx returns the request-scoped logger injected by the HTTP logging
// middleware, so every line written while serving a request carries its
// request_id:
//
//	log := logger.WithCtx(ctx)
//	log.Info("order placed", "order_id", order.ID)
//	// → time=... level=INFO msg="order placed" request_id=5f0c... order_id=12
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/brewhouse/config"
)

var L *slog.Logger

func init() {
	L = slog.New(newBaseHandler(os.Stdout, config.IsProduction()))
	slog.SetDefault(L)
}

// newBaseHandler returns JSON output for production and text otherwise.
func newBaseHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Setup rebuilds the base logger from cfg. When LOG_MONGO_URI is set, log
// records are also shipped to MongoDB; the returned func flushes and
// disconnects that sink.
func Setup(cfg config.Config) (func(), error) {
	base := newBaseHandler(os.Stdout, cfg.Production())
	closeFn := func() {}

	if cfg.LogMongoURI != "" {
		mh, err := NewMongoHandler(cfg.LogMongoURI, cfg.LogMongoDB, "logs")
		if err != nil {
			L = slog.New(base)
			slog.SetDefault(L)
			return closeFn, fmt.Errorf("logger: mongo sink: %w", err)
		}
		base = NewMultiHandler(base, mh)
		closeFn = mh.Close
	}

	L = slog.New(base)
	slog.SetDefault(L)
	return closeFn, nil
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or the base
// logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. Called by the request logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
