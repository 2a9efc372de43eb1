// Package middleware implements the onion-composed middleware pipeline
// (C6): a Handler wraps a spec's execution, and a Middleware wraps a
// Handler, generalizing sflowg's single-purpose executor helpers
// (executeStepWithRetries, context.WithTimeout) into composable units.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/draftspec/draftspec/internal/scratch"
	"github.com/draftspec/draftspec/report"
	"github.com/draftspec/draftspec/tree"
)

// SpecExecutionContext carries everything a Handler needs to run one
// spec: the tree node, its resolved context path, the run's cancellation
// context, a logger, and a lazily-allocated scratchpad for middleware to
// pass data to one another (spec.md §3.1's SpecExecutionContext.items).
//
// It lives here rather than in package runner because Handler and
// Middleware are defined here and runner imports middleware — putting it
// in runner would create an import cycle.
type SpecExecutionContext struct {
	Ctx         context.Context
	Spec        *tree.Spec
	ContextPath []string
	Logger      *slog.Logger
	Scratch     *scratch.Pad

	// ExecutionID is a per-spec correlation key (a uuid, generated by the
	// runner) for middleware and formatters that need to key scratchpad
	// entries or log lines to one specific execution, the same role
	// sflowg's Execution.ID plays for a flow run.
	ExecutionID string
}

// Context returns the execution's cancellation context, defaulting to
// context.Background if none was set.
func (c *SpecExecutionContext) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Handler executes one spec and returns its result.
type Handler func(ctx *SpecExecutionContext) report.SpecResult

// Middleware wraps a Handler with additional behavior.
type Middleware func(next Handler) Handler

// Chain composes middleware into a single Middleware. The first
// registered middleware is outermost: Chain(a, b, c)(h) runs as
// a(b(c(h))), so a sees every spec before deciding whether b/c/h run at
// all — the same onion order sflowg's retry-then-timeout-then-body
// nesting implies in executeStepWithRetries.
func Chain(mw ...Middleware) Middleware {
	return func(next Handler) Handler {
		h := next
		for i := len(mw) - 1; i >= 0; i-- {
			h = mw[i](h)
		}
		return h
	}
}

func logger(c *SpecExecutionContext) *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Timeout bounds a spec's Handler to d, the middleware counterpart of
// sflowg's per-step context.WithTimeout in executeStepWithRetries. A
// non-positive duration is a configuration error: every invocation
// reports InvalidArgument without calling next.
func Timeout(d time.Duration) Middleware {
	if d <= 0 {
		return func(next Handler) Handler {
			return func(c *SpecExecutionContext) report.SpecResult {
				return report.SpecResult{
					Spec:        c.Spec,
					Description: c.Spec.Description,
					ContextPath: c.ContextPath,
					Status:      report.StatusFailed,
					Error: &report.CapturedError{
						Kind:    "invalid_argument",
						Message: "timeout duration must be positive",
					},
				}
			}
		}
	}
	return func(next Handler) Handler {
		return func(c *SpecExecutionContext) report.SpecResult {
			ctx, cancel := context.WithTimeout(c.Context(), d)
			defer cancel()

			sub := *c
			sub.Ctx = ctx

			done := make(chan report.SpecResult, 1)
			go func() { done <- next(&sub) }()

			select {
			case res := <-done:
				return res
			case <-ctx.Done():
				return report.SpecResult{
					Spec:        c.Spec,
					Description: c.Spec.Description,
					ContextPath: c.ContextPath,
					Status:      report.StatusFailed,
					Error: &report.CapturedError{
						Kind:    "timeout",
						Message: ctx.Err().Error(),
					},
				}
			}
		}
	}
}
