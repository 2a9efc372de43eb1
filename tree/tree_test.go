package tree

import (
	"context"
	"errors"
	"testing"
)

func mustContext(t *testing.T, description string, parent *Context) *Context {
	t.Helper()
	c, err := NewContext(description, parent)
	if err != nil {
		t.Fatalf("NewContext(%q) error = %v, want nil", description, err)
	}
	return c
}

func TestNewContext_EmptyDescription(t *testing.T) {
	for _, d := range []string{"", "   ", "\t\n"} {
		if _, err := NewContext(d, nil); err == nil {
			t.Errorf("NewContext(%q) error = nil, want ErrInvalidDescription", d)
		} else {
			var invalid *ErrInvalidDescription
			if !errors.As(err, &invalid) {
				t.Errorf("NewContext(%q) error = %T, want *ErrInvalidDescription", d, err)
			}
		}
	}
}

func TestNewSpec_EmptyDescription(t *testing.T) {
	if _, err := NewSpec("", nil, nil); err == nil {
		t.Error("NewSpec(\"\") error = nil, want ErrInvalidDescription")
	}
}

func TestContext_AddChildAndSpec_PreservesOrder(t *testing.T) {
	root := mustContext(t, "root", nil)
	a := mustContext(t, "a", nil)
	b := mustContext(t, "b", nil)
	root.AddChild(a)
	root.AddChild(b)

	children := root.Children()
	if len(children) != 2 || children[0] != a || children[1] != b {
		t.Fatalf("Children() = %v, want [a, b] in order", children)
	}
	if a.Parent() != root {
		t.Error("child.Parent() did not point back to root")
	}

	s1, _ := NewSpec("one", nil, nil)
	s2, _ := NewSpec("two", nil, nil)
	root.AddSpec(s1)
	root.AddSpec(s2)
	specs := root.Specs()
	if len(specs) != 2 || specs[0] != s1 || specs[1] != s2 {
		t.Fatalf("Specs() = %v, want [one, two] in order", specs)
	}
	if s1.Parent() != root {
		t.Error("spec.Parent() did not point back to root")
	}
}

func TestContext_HookAlreadyDefined(t *testing.T) {
	c := mustContext(t, "c", nil)
	noop := func(context.Context) error { return nil }

	if err := c.SetBeforeEach(noop); err != nil {
		t.Fatalf("first SetBeforeEach error = %v, want nil", err)
	}
	err := c.SetBeforeEach(noop)
	var already *ErrHookAlreadyDefined
	if !errors.As(err, &already) {
		t.Fatalf("second SetBeforeEach error = %v, want ErrHookAlreadyDefined", err)
	}
}

func TestContext_HookChain_Order(t *testing.T) {
	root := mustContext(t, "root", nil)
	child := mustContext(t, "child", nil)
	root.AddChild(child)

	var log []string
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	must(root.SetBeforeEach(func(context.Context) error { log = append(log, "root-before"); return nil }))
	must(child.SetBeforeEach(func(context.Context) error { log = append(log, "child-before"); return nil }))
	must(root.SetAfterEach(func(context.Context) error { log = append(log, "root-after"); return nil }))
	must(child.SetAfterEach(func(context.Context) error { log = append(log, "child-after"); return nil }))

	for _, h := range child.BeforeEachChain() {
		_ = h(context.Background())
	}
	for _, h := range child.AfterEachChain() {
		_ = h(context.Background())
	}

	want := []string{"root-before", "child-before", "child-after", "root-after"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestContext_HookChain_Memoized(t *testing.T) {
	root := mustContext(t, "root", nil)
	child := mustContext(t, "child", nil)
	root.AddChild(child)

	first := child.BeforeEachChain()
	second := child.BeforeEachChain()
	if len(first) != 0 {
		t.Fatalf("expected no before_each hooks, got %d", len(first))
	}
	// Compare addresses of backing arrays via slice header identity: since
	// both are empty, rely instead on a non-empty chain for a real pointer
	// check.
	_ = first
	_ = second

	leaf := mustContext(t, "leaf", nil)
	child.AddChild(leaf)
	must := func(err error) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	must(root.SetBeforeEach(func(context.Context) error { return nil }))

	a := leaf.BeforeEachChain()
	b := leaf.BeforeEachChain()
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("BeforeEachChain() len = %d/%d, want 1/1", len(a), len(b))
	}
	if &a[0] != &b[0] {
		t.Error("BeforeEachChain() did not return a reference-stable slice across calls")
	}
}

func TestHasFocusedDescendants_DepthFirstShortCircuit(t *testing.T) {
	root := mustContext(t, "root", nil)
	a := mustContext(t, "a", nil)
	root.AddChild(a)
	x, _ := NewSpec("x", nil, nil)
	a.AddSpec(x)

	if root.HasFocusedDescendants() {
		t.Fatal("expected no focused descendants yet")
	}

	y, _ := NewSpec("y", nil, nil)
	y.IsFocused = true
	a.AddSpec(y)

	if !root.HasFocusedDescendants() {
		t.Fatal("expected HasFocusedDescendants to find focused spec y")
	}
}

func TestAnyAncestorOrSelfSkipped(t *testing.T) {
	root := mustContext(t, "root", nil)
	child := mustContext(t, "child", nil)
	root.AddChild(child)
	root.IsSkipped = true

	if !child.AnyAncestorOrSelfSkipped() {
		t.Error("expected child to inherit ancestor skip")
	}

	s, _ := NewSpec("s", nil, nil)
	child.AddSpec(s)
	if !s.AnyAncestorOrSelfSkipped() {
		t.Error("expected spec to inherit ancestor skip")
	}
}

func TestPathStrings(t *testing.T) {
	root := mustContext(t, "root", nil)
	child := mustContext(t, "child", nil)
	root.AddChild(child)
	leaf := mustContext(t, "leaf", nil)
	child.AddChild(leaf)

	got := leaf.PathStrings()
	want := []string{"root", "child", "leaf"}
	if len(got) != len(want) {
		t.Fatalf("PathStrings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PathStrings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
