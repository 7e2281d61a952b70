package transitions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reglet-dev/reglet-transitions/emit"
	"github.com/reglet-dev/reglet-transitions/schema"
)

// Middleware is a function that wraps an emit.Func to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	tracing := func(next emit.Func) emit.Func {
//	    return func(ctx context.Context, b emit.Backend, cfg schema.Config, id emit.ID) (emit.Handle, error) {
//	        log.Printf("emitting %s", id)
//	        return next(ctx, b, cfg, id)
//	    }
//	}
type Middleware func(next emit.Func) emit.Func

// PanicError is returned for an emit function that panicked.
type PanicError struct {
	Value any
	ID    emit.ID
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("emitting %s panicked: %v", e.ID, e.Value)
}

// PanicRecoveryMiddleware returns a middleware that converts a panicking
// emit function into an error for that entry only.
func PanicRecoveryMiddleware() Middleware {
	return func(next emit.Func) emit.Func {
		return func(ctx context.Context, b emit.Backend, cfg schema.Config, id emit.ID) (h emit.Handle, err error) {
			defer func() {
				if r := recover(); r != nil {
					h = nil
					err = &PanicError{Value: r, ID: id}
				}
			}()
			return next(ctx, b, cfg, id)
		}
	}
}

// LoggingMiddleware returns a middleware that logs every emission with its
// duration.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next emit.Func) emit.Func {
		return func(ctx context.Context, b emit.Backend, cfg schema.Config, id emit.ID) (emit.Handle, error) {
			start := time.Now()
			h, err := next(ctx, b, cfg, id)
			attrs := []any{"id", id.Name, "type", id.Type, "name", cfg.Name(), "duration", time.Since(start)}
			if err != nil {
				logger.WarnContext(ctx, "emit function failed", append(attrs, "error", err)...)
			} else {
				logger.DebugContext(ctx, "emit function completed", attrs...)
			}
			return h, err
		}
	}
}

// chain wraps fn so that middleware[0] is the outermost layer.
func chain(fn emit.Func, middleware []Middleware) emit.Func {
	if fn == nil {
		return nil
	}
	for i := len(middleware) - 1; i >= 0; i-- {
		fn = middleware[i](fn)
	}
	return fn
}
