// Package draftspec is the DSL facade (C4): the entry point test files
// use to build a spec tree and the Run function that executes it.
//
// Per the Design Notes in spec.md §9, the facade replaces the implicit
// thread-local state a test-local DSL would normally lean on with an
// explicit builder, *Group, threaded through every describe/context
// closure — the same shape as sflowg's dsl.Interpreter/ValueStore: a
// small stateful value handed through closures instead of package
// globals. Because the builder is explicit, most DslMisuse conditions
// (an It call with no enclosing Describe) are caught by Go's type
// system at compile time; there is no package-level It a caller could
// invoke outside a body. Construction errors that do remain possible at
// runtime (HookAlreadyDefined, InvalidDescription) panic immediately,
// the same fail-fast convention sflowg's Container.initializePlugins
// uses for unrecoverable setup errors.
package draftspec

import (
	"context"
	"fmt"

	"github.com/draftspec/draftspec/expect"
	"github.com/draftspec/draftspec/report"
	"github.com/draftspec/draftspec/runner"
	"github.com/draftspec/draftspec/tree"
)

// Group wraps the tree.Context under construction and the tag list
// pending for whichever It/Describe call comes next.
type Group struct {
	ctx         *tree.Context
	pendingTags []string
}

// Describe builds a root spec tree: a top-level Context named
// description, populated by invoking body with a Group wrapping it.
// Panics with InvalidDescription if description is empty or
// whitespace-only.
func Describe(description string, body func(g *Group)) *tree.Context {
	ctx, err := tree.NewContext(description, nil)
	if err != nil {
		panic(fmt.Sprintf("draftspec: %v", err))
	}
	g := &Group{ctx: ctx}
	if body != nil {
		body(g)
	}
	return ctx
}

// Run executes root under context.Background() and returns the
// aggregated report. A thin convenience over runner.New(opts...).Run;
// callers needing cancellation or an observer should use runner
// directly.
func Run(root *tree.Context, opts ...runner.Option) (*report.Report, error) {
	r := runner.New(opts...)
	return r.Run(context.Background(), root, nil)
}

// consumeTags returns the group's pending tags as a set and clears
// them, so the next It/Describe call starts with an empty pending list.
func (g *Group) consumeTags() map[string]struct{} {
	tags := make(map[string]struct{}, len(g.pendingTags))
	for _, t := range g.pendingTags {
		tags[t] = struct{}{}
	}
	g.pendingTags = nil
	return tags
}

func (g *Group) addChildContext(name string, focused, skipped bool, body func(*Group)) {
	child, err := tree.NewContext(name, g.ctx)
	if err != nil {
		panic(fmt.Sprintf("draftspec: %v", err))
	}
	child.Tags = g.consumeTags()
	child.IsFocused = focused
	child.IsSkipped = skipped
	g.ctx.AddChild(child)
	if body != nil {
		body(&Group{ctx: child})
	}
}

// Describe declares a nested context. Equivalent to Context.
func (g *Group) Describe(name string, body func(*Group)) { g.addChildContext(name, false, false, body) }

// Context declares a nested context.
func (g *Group) Context(name string, body func(*Group)) { g.addChildContext(name, false, false, body) }

// FDescribe declares a focused nested context: when any focus exists in
// the tree, only focused contexts/specs run.
func (g *Group) FDescribe(name string, body func(*Group)) { g.addChildContext(name, true, false, body) }

// XDescribe declares a skipped nested context: every spec beneath it
// reports Skipped regardless of focus.
func (g *Group) XDescribe(name string, body func(*Group)) { g.addChildContext(name, false, true, body) }

func (g *Group) addSpec(name string, focused, skipped bool, fn tree.HookFunc) {
	sp, err := tree.NewSpec(name, fn, g.ctx)
	if err != nil {
		panic(fmt.Sprintf("draftspec: %v", err))
	}
	sp.Tags = g.consumeTags()
	sp.IsFocused = focused
	sp.IsSkipped = skipped
	g.ctx.AddSpec(sp)
}

// It declares a spec. Called with no body it declares a pending spec
// (reports Pending without running); called with exactly one body it
// declares a normal spec. More than one body is a DSL misuse and panics
// immediately, the same way a malformed flow definition in sflowg fails
// fast at construction rather than at execution.
func (g *Group) It(name string, body ...func(context.Context) error) {
	switch len(body) {
	case 0:
		g.addSpec(name, false, false, nil)
	case 1:
		g.addSpec(name, false, false, tree.HookFunc(body[0]))
	default:
		panic(fmt.Sprintf("draftspec: It(%q) called with %d bodies, want 0 or 1", name, len(body)))
	}
}

// FIt declares a focused spec.
func (g *Group) FIt(name string, body func(context.Context) error) {
	g.addSpec(name, true, false, tree.HookFunc(body))
}

// XIt declares a skipped spec; body is never invoked.
func (g *Group) XIt(name string, body func(context.Context) error) {
	g.addSpec(name, false, true, tree.HookFunc(body))
}

// BeforeAll attaches a hook run once before any spec in this context,
// provided at least one spec beneath it will actually run. Panics with
// HookAlreadyDefined if this context already has one.
func (g *Group) BeforeAll(fn func(context.Context) error) {
	if err := g.ctx.SetBeforeAll(tree.HookFunc(fn)); err != nil {
		panic(fmt.Sprintf("draftspec: %v", err))
	}
}

// AfterAll attaches a hook run once after every spec in this context has
// finished. Panics with HookAlreadyDefined if this context already has
// one.
func (g *Group) AfterAll(fn func(context.Context) error) {
	if err := g.ctx.SetAfterAll(tree.HookFunc(fn)); err != nil {
		panic(fmt.Sprintf("draftspec: %v", err))
	}
}

// BeforeEach attaches a hook run before every spec beneath this context,
// outermost-first relative to ancestor BeforeEach hooks. Panics with
// HookAlreadyDefined if this context already has one.
func (g *Group) BeforeEach(fn func(context.Context) error) {
	if err := g.ctx.SetBeforeEach(tree.HookFunc(fn)); err != nil {
		panic(fmt.Sprintf("draftspec: %v", err))
	}
}

// AfterEach attaches a hook run after every spec beneath this context,
// innermost-first relative to ancestor AfterEach hooks. Panics with
// HookAlreadyDefined if this context already has one.
func (g *Group) AfterEach(fn func(context.Context) error) {
	if err := g.ctx.SetAfterEach(tree.HookFunc(fn)); err != nil {
		panic(fmt.Sprintf("draftspec: %v", err))
	}
}

// Tag queues names to be attached to whichever It/Describe (or their
// F/X variants) is called next on g, then clears once consumed.
func (g *Group) Tag(names ...string) *Group {
	g.pendingTags = append(g.pendingTags, names...)
	return g
}

// Expect starts a fluent expectation over value, for use inside an It
// body.
func (g *Group) Expect(value any) *expect.Expectation {
	return expect.That(value)
}
