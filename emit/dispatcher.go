package emit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-transitions/schema"
)

// Job is one accepted entry ready for emission.
type Job struct {
	Config      schema.Config
	Emit        Func
	Kind        string
	EmitterType EmitterType
	Index       int
}

// Result is the outcome of emitting one Job.
type Result struct {
	Handle Handle
	Err    error
	Kind   string
	ID     ID
	Index  int
}

// Dispatcher invokes the emit functions of validated entries.
type Dispatcher struct {
	backend Backend
	ids     *IDGenerator
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithIDGenerator shares an identifier generator across dispatchers, so ids
// stay unique across several lists of one generation run.
func WithIDGenerator(g *IDGenerator) DispatcherOption {
	return func(d *Dispatcher) { d.ids = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a dispatcher emitting into backend.
func NewDispatcher(backend Backend, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.ids == nil {
		d.ids = NewIDGenerator()
	}
	return d
}

// Dispatch emits every job exactly once, in order. A failing job does not
// affect the others; once ctx is done the remaining jobs fail with ctx.Err().
func (d *Dispatcher) Dispatch(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	for i, job := range jobs {
		res := Result{Index: job.Index, Kind: job.Kind}
		if err := ctx.Err(); err != nil {
			res.Err = err
			results[i] = res
			continue
		}

		res.ID = d.ids.Next(job.EmitterType)
		if job.Emit == nil {
			res.Err = fmt.Errorf("transition %q has no emit function", job.Kind)
		} else {
			res.Handle, res.Err = job.Emit(ctx, d.backend, job.Config, res.ID)
		}

		if res.Err != nil {
			d.logger.ErrorContext(ctx, "failed to emit transition",
				"index", job.Index, "kind", job.Kind, "id", res.ID.Name, "error", res.Err)
		} else {
			d.logger.DebugContext(ctx, "emitted transition",
				"index", job.Index, "kind", job.Kind, "id", res.ID.Name)
		}
		results[i] = res
	}
	return results
}

// Err joins the errors of failed results, each prefixed with its index.
func Err(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("transitions[%d] %s: %w", r.Index, r.Kind, r.Err))
		}
	}
	return errors.Join(errs...)
}
