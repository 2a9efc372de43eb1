// Package runner implements the executor (C5): async traversal of a spec
// tree with hook ordering, focus/skip resolution, exception capture,
// result emission, and optional bounded parallelism. It generalizes
// sflowg's Executor (runtime/executor.go) from a flat step loop to
// recursive descent over tree.Context, keeping the same shape — a struct
// holding a logger and injected collaborators, a public Run method, and
// private per-node helpers.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/draftspec/draftspec/internal/clock"
	"github.com/draftspec/draftspec/internal/scratch"
	"github.com/draftspec/draftspec/middleware"
	"github.com/draftspec/draftspec/report"
	"github.com/draftspec/draftspec/tree"
)

// SpecExecutionContext is re-exported from middleware: it is defined
// there (not here) because middleware.Handler/Middleware reference it and
// runner imports middleware, so defining it in runner would cycle.
type SpecExecutionContext = middleware.SpecExecutionContext

// Runner traverses a frozen spec tree and produces a report.Report.
type Runner struct {
	l              *slog.Logger
	mw             []middleware.Middleware
	parallel       bool
	maxParallelism int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger; a nil logger defaults to
// slog.Default(), matching sflowg's NewExecutor(l *slog.Logger, ...).
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.l = l }
}

// WithMiddleware appends middleware to the pipeline wrapping every spec.
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(r *Runner) { r.mw = append(r.mw, mw...) }
}

// WithParallel enables bounded concurrent execution of sibling specs.
func WithParallel(enabled bool, maxParallelism int) Option {
	return func(r *Runner) {
		r.parallel = enabled
		r.maxParallelism = maxParallelism
	}
}

// New builds a Runner from the given options.
func New(opts ...Option) *Runner {
	r := &Runner{maxParallelism: 1}
	for _, opt := range opts {
		opt(r)
	}
	if r.l == nil {
		r.l = slog.Default()
	}
	if r.maxParallelism < 1 {
		r.maxParallelism = 1
	}
	return r
}

// Run executes root's tree under ctx, invoking observe (if non-nil) for
// every produced SpecResult as it completes, and returns the aggregated
// Report.
func (r *Runner) Run(ctx context.Context, root *tree.Context, observe func(report.SpecResult)) (*report.Report, error) {
	start := time.Now()
	hasFocused := root.HasFocusedDescendants()

	s := &session{
		runner:     r,
		ctx:        ctx,
		hasFocused: hasFocused,
		observe:    observe,
	}

	var results []report.SpecResult
	if r.parallel {
		out, err := s.runContextParallel(root, nil)
		if err != nil {
			return nil, err
		}
		results = out
	} else {
		results = s.runContextSequential(root, nil)
	}

	rep := report.Build(root, results, "draftspec", start)
	rep.RunID = uuid.New().String()
	return rep, nil
}

// session carries per-Run state (cancellation, focus flag, observer) that
// would otherwise have to be re-threaded through every recursive call.
type session struct {
	runner     *Runner
	ctx        context.Context
	hasFocused bool
	observe    func(report.SpecResult)
}

func (s *session) emit(res report.SpecResult) report.SpecResult {
	if s.observe != nil {
		s.observe(res)
	}
	return res
}

// isRunnable reports whether any descendant spec of c would run under
// the current focus/skip mode — used to decide whether before_all/
// after_all should fire at all (spec.md §4.4 step 2).
func isRunnable(c *tree.Context, hasFocused bool) bool {
	if c.AnyAncestorOrSelfSkipped() {
		return false
	}
	for _, sp := range c.Specs() {
		if sp.Body == nil {
			continue
		}
		if sp.AnyAncestorOrSelfSkipped() {
			continue
		}
		if hasFocused && !sp.AnyAncestorOrSelfFocused() {
			continue
		}
		return true
	}
	for _, child := range c.Children() {
		if isRunnable(child, hasFocused) {
			return true
		}
	}
	return false
}

// pendingResult and skippedResult are the zero-hook-run outcomes from
// spec.md §4.4 step 3.
func pendingResult(sp *tree.Spec, path []string) report.SpecResult {
	return report.SpecResult{Spec: sp, Description: sp.Description, ContextPath: path, Status: report.StatusPending}
}

func skippedResult(sp *tree.Spec, path []string) report.SpecResult {
	return report.SpecResult{Spec: sp, Description: sp.Description, ContextPath: path, Status: report.StatusSkipped}
}

func hookErrorResult(sp *tree.Spec, path []string, err error) report.SpecResult {
	return report.SpecResult{
		Spec: sp, Description: sp.Description, ContextPath: path,
		Status: report.StatusFailed,
		Error:  &report.CapturedError{Kind: "hook_error", Message: err.Error()},
	}
}

// baseHandler builds the middleware pipeline's innermost action: timed
// before_each chain, timed body, timed after_each chain in reverse, with
// best-effort teardown (spec.md §4.4 step 3).
func (s *session) baseHandler(c *tree.Context) middleware.Handler {
	return func(ec *middleware.SpecExecutionContext) report.SpecResult {
		sp := ec.Spec
		var beforeEachDur, afterEachDur, bodyDur time.Duration
		var firstErr error

		beforeChain := c.BeforeEachChain()
		m := clock.Start()
		for _, h := range beforeChain {
			if firstErr != nil {
				break
			}
			if err := h(ec.Context()); err != nil {
				firstErr = err
			}
		}
		beforeEachDur = m.Elapsed()

		if firstErr == nil {
			bm := clock.Start()
			firstErr = sp.Body(ec.Context())
			bodyDur = bm.Elapsed()
		}

		afterChain := c.AfterEachChain()
		am := clock.Start()
		for _, h := range afterChain {
			if err := h(ec.Context()); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		afterEachDur = am.Elapsed()

		total := beforeEachDur + bodyDur + afterEachDur
		res := report.SpecResult{
			Spec:               sp,
			Description:        sp.Description,
			ContextPath:        ec.ContextPath,
			BodyDuration:       bodyDur,
			BeforeEachDuration: beforeEachDur,
			AfterEachDuration:  afterEachDur,
			TotalDuration:      total,
		}
		if firstErr != nil {
			res.Status = report.StatusFailed
			res.Error = &report.CapturedError{Kind: "user_error", Message: firstErr.Error()}
		} else {
			res.Status = report.StatusPassed
		}
		return res
	}
}

func (s *session) runSpec(c *tree.Context, sp *tree.Spec, path []string) report.SpecResult {
	switch {
	case sp.AnyAncestorOrSelfSkipped():
		return s.emit(skippedResult(sp, path))
	case sp.Body == nil:
		return s.emit(pendingResult(sp, path))
	case s.hasFocused && !sp.AnyAncestorOrSelfFocused():
		return s.emit(skippedResult(sp, path))
	}

	handler := middleware.Chain(s.runner.mw...)(s.baseHandler(c))
	ec := &middleware.SpecExecutionContext{
		Ctx:         s.ctx,
		Spec:        sp,
		ContextPath: path,
		Logger:      s.runner.l,
		Scratch:     &scratch.Pad{},
		ExecutionID: uuid.New().String(),
	}
	return s.emit(handler(ec))
}

// failSubtree marks every spec under c (direct and nested) Failed with
// the given hook error, without running any of them — the before_all
// failure case of spec.md §4.4 step 5.
func (s *session) failSubtree(c *tree.Context, path []string, err error) []report.SpecResult {
	path = append(append([]string{}, path...), c.Description)
	var results []report.SpecResult
	for _, sp := range c.Specs() {
		results = append(results, s.emit(hookErrorResult(sp, path, err)))
	}
	for _, child := range c.Children() {
		results = append(results, s.failSubtree(child, path, err)...)
	}
	return results
}

// applyAfterAllFailure folds an after_all error into the last direct
// spec result of this context, in addition to that spec's own outcome,
// per spec.md §4.4 step 5 ("applied once to the last spec of that
// context"); the error is always logged at the run level regardless.
func (s *session) applyAfterAllFailure(results []report.SpecResult, numDirectSpecs int, err error) {
	s.runner.l.Error("after_all failed", "error", err)
	if numDirectSpecs == 0 {
		return
	}
	last := &results[numDirectSpecs-1]
	last.Status = report.StatusFailed
	last.Error = &report.CapturedError{Kind: "hook_error", Message: err.Error()}
}

// runContextSequential implements spec.md §4.4 steps 2-4 for one context
// and its descendants, returning results in DSL order.
func (s *session) runContextSequential(c *tree.Context, path []string) []report.SpecResult {
	childPath := append(append([]string{}, path...), c.Description)
	var results []report.SpecResult

	runnable := isRunnable(c, s.hasFocused)
	if runnable {
		if before := c.BeforeAll(); before != nil {
			if err := before(s.ctx); err != nil {
				s.runner.l.Error("before_all failed", "context", c.Description, "error", err)
				return s.failSubtree(c, path, err)
			}
		}
	}

	numDirectSpecs := 0
	for _, sp := range c.Specs() {
		results = append(results, s.runSpec(c, sp, childPath))
		numDirectSpecs++
	}

	for _, child := range c.Children() {
		results = append(results, s.runContextSequential(child, childPath)...)
	}

	if runnable {
		if after := c.AfterAll(); after != nil {
			if err := after(s.ctx); err != nil {
				s.applyAfterAllFailure(results, numDirectSpecs, err)
			}
		}
	}

	return results
}

// runContextParallel mirrors runContextSequential but runs sibling specs
// within one context concurrently via errgroup.SetLimit, directly
// grounded in raveheart1-autospec's ParallelExecutor.ExecuteParallel.
// Results are written into a pre-sized, indexed slice rather than
// appended from worker goroutines, which preserves DSL order for free.
func (s *session) runContextParallel(c *tree.Context, path []string) ([]report.SpecResult, error) {
	childPath := append(append([]string{}, path...), c.Description)

	runnable := isRunnable(c, s.hasFocused)
	if runnable {
		if before := c.BeforeAll(); before != nil {
			if err := before(s.ctx); err != nil {
				s.runner.l.Error("before_all failed", "context", c.Description, "error", err)
				return s.failSubtree(c, path, err), nil
			}
		}
	}

	specs := c.Specs()
	specResults := make([]report.SpecResult, len(specs))
	g, gctx := errgroup.WithContext(s.ctx)
	g.SetLimit(s.runner.maxParallelism)
	for i, sp := range specs {
		i, sp := i, sp
		g.Go(func() error {
			sub := *s
			sub.ctx = gctx
			specResults[i] = sub.runSpec(c, sp, childPath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if runnable {
		if after := c.AfterAll(); after != nil {
			if err := after(s.ctx); err != nil {
				s.applyAfterAllFailure(specResults, len(specs), err)
			}
		}
	}

	children := c.Children()
	childResults := make([][]report.SpecResult, len(children))
	cg, cgctx := errgroup.WithContext(s.ctx)
	cg.SetLimit(s.runner.maxParallelism)
	for i, child := range children {
		i, child := i, child
		cg.Go(func() error {
			sub := *s
			sub.ctx = cgctx
			out, err := sub.runContextParallel(child, childPath)
			if err != nil {
				return err
			}
			childResults[i] = out
			return nil
		})
	}
	if err := cg.Wait(); err != nil {
		return nil, err
	}

	results := make([]report.SpecResult, 0, len(specs)+len(children))
	results = append(results, specResults...)
	for _, cr := range childResults {
		results = append(results, cr...)
	}

	return results, nil
}
