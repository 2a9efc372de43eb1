// Package tree implements the spec tree (C2): the in-memory composite of
// Context nodes and Spec leaves built by the DSL and walked by the
// executor. A Context owns its children and specs; parent links are weak
// back-references used only for read-only traversal after the tree is
// frozen.
package tree

import (
	"context"
	"strings"
	"sync"
)

// HookFunc is the signature of every lifecycle hook (before_all, after_all,
// before_each, after_each) and every spec body. It receives the run's
// cancellation context so long-running user code can cooperate with it.
type HookFunc func(context.Context) error

// Context is a named grouping node: a describe/context block. Children and
// specs preserve DSL insertion order. Exactly one Context in a built tree
// has a nil parent (the root).
type Context struct {
	Description string
	LineNumber  int
	Tags        map[string]struct{}
	IsFocused   bool
	IsSkipped   bool

	parent   *Context
	children []*Context
	specs    []*Spec

	beforeAll  HookFunc
	afterAll   HookFunc
	beforeEach HookFunc
	afterEach  HookFunc

	chainOnce       sync.Once
	beforeEachChain []HookFunc
	afterEachChain  []HookFunc
}

// Spec is a leaf test case: an it/fit/xit. Body is nil for a pending spec.
type Spec struct {
	Description string
	LineNumber  int
	Tags        map[string]struct{}
	IsFocused   bool
	IsSkipped   bool
	Body        HookFunc

	parent *Context
}

// NewContext builds a root or child Context. parent may be nil only for a
// tree's root. Returns ErrInvalidDescription for an empty/whitespace-only
// description.
func NewContext(description string, parent *Context) (*Context, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &ErrInvalidDescription{Kind: "context"}
	}
	return &Context{
		Description: description,
		Tags:        make(map[string]struct{}),
		parent:      parent,
	}, nil
}

// NewSpec builds a Spec leaf. body is nil for a pending spec. Returns
// ErrInvalidDescription for an empty/whitespace-only description.
func NewSpec(description string, body HookFunc, parent *Context) (*Spec, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &ErrInvalidDescription{Kind: "spec"}
	}
	return &Spec{
		Description: description,
		Tags:        make(map[string]struct{}),
		Body:        body,
		parent:      parent,
	}, nil
}

// AddChild appends a child Context in DSL order.
func (c *Context) AddChild(child *Context) {
	child.parent = c
	c.children = append(c.children, child)
}

// AddSpec appends a Spec leaf in DSL order.
func (c *Context) AddSpec(s *Spec) {
	s.parent = c
	c.specs = append(c.specs, s)
}

// Children returns a read-only snapshot of the child contexts.
func (c *Context) Children() []*Context {
	out := make([]*Context, len(c.children))
	copy(out, c.children)
	return out
}

// Specs returns a read-only snapshot of the direct specs.
func (c *Context) Specs() []*Spec {
	out := make([]*Spec, len(c.specs))
	copy(out, c.specs)
	return out
}

// Parent returns the weak back-reference to the owning context, or nil at
// the root.
func (c *Context) Parent() *Context { return c.parent }

// Parent returns the spec's owning context.
func (s *Spec) Parent() *Context { return s.parent }

// IsPending reports whether the spec has no body.
func (s *Spec) IsPending() bool { return s.Body == nil }

// SetBeforeAll attaches a before_all hook. Returns ErrHookAlreadyDefined if
// one is already attached.
func (c *Context) SetBeforeAll(fn HookFunc) error {
	if c.beforeAll != nil {
		return &ErrHookAlreadyDefined{Context: c.Description, Hook: "before_all"}
	}
	c.beforeAll = fn
	return nil
}

// SetAfterAll attaches an after_all hook. Returns ErrHookAlreadyDefined if
// one is already attached.
func (c *Context) SetAfterAll(fn HookFunc) error {
	if c.afterAll != nil {
		return &ErrHookAlreadyDefined{Context: c.Description, Hook: "after_all"}
	}
	c.afterAll = fn
	return nil
}

// SetBeforeEach attaches a before_each hook. Returns ErrHookAlreadyDefined if
// one is already attached.
func (c *Context) SetBeforeEach(fn HookFunc) error {
	if c.beforeEach != nil {
		return &ErrHookAlreadyDefined{Context: c.Description, Hook: "before_each"}
	}
	c.beforeEach = fn
	return nil
}

// SetAfterEach attaches an after_each hook. Returns ErrHookAlreadyDefined if
// one is already attached.
func (c *Context) SetAfterEach(fn HookFunc) error {
	if c.afterEach != nil {
		return &ErrHookAlreadyDefined{Context: c.Description, Hook: "after_each"}
	}
	c.afterEach = fn
	return nil
}

// BeforeAll returns the attached before_all hook, or nil.
func (c *Context) BeforeAll() HookFunc { return c.beforeAll }

// AfterAll returns the attached after_all hook, or nil.
func (c *Context) AfterAll() HookFunc { return c.afterAll }

// buildChains walks from the root to c once, populating the memoized
// before/after-each chains. Safe to call repeatedly; only the first call
// does work.
func (c *Context) buildChains() {
	c.chainOnce.Do(func() {
		var path []*Context
		for n := c; n != nil; n = n.parent {
			path = append(path, n)
		}
		// path is leaf→root; reverse to root→leaf for before_each order.
		before := make([]HookFunc, 0, len(path))
		for i := len(path) - 1; i >= 0; i-- {
			if h := path[i].beforeEach; h != nil {
				before = append(before, h)
			}
		}
		after := make([]HookFunc, 0, len(path))
		for i := 0; i < len(path); i++ {
			if h := path[i].afterEach; h != nil {
				after = append(after, h)
			}
		}
		c.beforeEachChain = before
		c.afterEachChain = after
	})
}

// BeforeEachChain returns the before_each hooks from root to c, outermost
// first. The returned slice is memoized and reference-stable across calls.
func (c *Context) BeforeEachChain() []HookFunc {
	c.buildChains()
	return c.beforeEachChain
}

// AfterEachChain returns the after_each hooks from c to root, innermost
// first. The returned slice is memoized and reference-stable across calls.
func (c *Context) AfterEachChain() []HookFunc {
	c.buildChains()
	return c.afterEachChain
}

// Path returns the chain of contexts from the root to c, inclusive.
func (c *Context) Path() []*Context {
	var rev []*Context
	for n := c; n != nil; n = n.parent {
		rev = append(rev, n)
	}
	path := make([]*Context, len(rev))
	for i, n := range rev {
		path[len(rev)-1-i] = n
	}
	return path
}

// PathStrings returns Path() as a slice of descriptions, root first.
func (c *Context) PathStrings() []string {
	path := c.Path()
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.Description
	}
	return out
}

// HasFocusedDescendants performs a depth-first, insertion-order search and
// returns true on the first focused spec or context encountered.
func (c *Context) HasFocusedDescendants() bool {
	if c.IsFocused {
		return true
	}
	for _, s := range c.specs {
		if s.IsFocused {
			return true
		}
	}
	for _, child := range c.children {
		if child.HasFocusedDescendants() {
			return true
		}
	}
	return false
}

// AnyAncestorOrSelfSkipped reports whether c or any ancestor is skipped.
func (c *Context) AnyAncestorOrSelfSkipped() bool {
	for n := c; n != nil; n = n.parent {
		if n.IsSkipped {
			return true
		}
	}
	return false
}

// AnyAncestorOrSelfFocused reports whether c or any ancestor is focused.
func (c *Context) AnyAncestorOrSelfFocused() bool {
	for n := c; n != nil; n = n.parent {
		if n.IsFocused {
			return true
		}
	}
	return false
}

// AnyAncestorOrSelfSkipped reports whether the spec or any ancestor context
// is skipped.
func (s *Spec) AnyAncestorOrSelfSkipped() bool {
	if s.IsSkipped {
		return true
	}
	if s.parent == nil {
		return false
	}
	return s.parent.AnyAncestorOrSelfSkipped()
}

// AnyAncestorOrSelfFocused reports whether the spec or any ancestor context
// is focused.
func (s *Spec) AnyAncestorOrSelfFocused() bool {
	if s.IsFocused {
		return true
	}
	if s.parent == nil {
		return false
	}
	return s.parent.AnyAncestorOrSelfFocused()
}
