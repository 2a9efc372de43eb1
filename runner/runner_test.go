package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/draftspec/draftspec/report"
	"github.com/draftspec/draftspec/tree"
)

func mustContext(t *testing.T, desc string, parent *tree.Context) *tree.Context {
	t.Helper()
	c, err := tree.NewContext(desc, parent)
	if err != nil {
		t.Fatalf("NewContext(%q) error = %v", desc, err)
	}
	if parent != nil {
		parent.AddChild(c)
	}
	return c
}

func mustSpec(t *testing.T, desc string, body tree.HookFunc, parent *tree.Context) *tree.Spec {
	t.Helper()
	s, err := tree.NewSpec(desc, body, parent)
	if err != nil {
		t.Fatalf("NewSpec(%q) error = %v", desc, err)
	}
	parent.AddSpec(s)
	return s
}

func findSpecResult(rep *report.Report, description string) *report.SpecResultReport {
	var found *report.SpecResultReport
	var walk func(cr *report.ContextReport)
	walk = func(cr *report.ContextReport) {
		for i := range cr.Specs {
			if cr.Specs[i].Description == description {
				found = &cr.Specs[i]
			}
		}
		for _, child := range cr.Contexts {
			walk(child)
		}
	}
	for _, c := range rep.Contexts {
		walk(c)
	}
	return found
}

func TestRun_SequentialPassPendingSkip(t *testing.T) {
	root := mustContext(t, "root", nil)
	mustSpec(t, "passes", func(context.Context) error { return nil }, root)
	mustSpec(t, "pending", nil, root)
	skippedSpec := mustSpec(t, "skipped", func(context.Context) error { return nil }, root)
	skippedSpec.IsSkipped = true
	mustSpec(t, "fails", func(context.Context) error { return errors.New("boom") }, root)

	r := New()
	rep, err := r.Run(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if rep.Summary.Total != 4 {
		t.Fatalf("Total = %d, want 4", rep.Summary.Total)
	}
	if rep.Summary.Passed != 1 || rep.Summary.Pending != 1 || rep.Summary.Skipped != 1 || rep.Summary.Failed != 1 {
		t.Errorf("Summary = %+v, want one of each", rep.Summary)
	}
	if rep.RunID == "" {
		t.Error("RunID should be populated")
	}
}

func TestRun_FocusSkipsNonFocusedSiblings(t *testing.T) {
	root := mustContext(t, "root", nil)
	mustSpec(t, "not focused", func(context.Context) error { return nil }, root)
	focused := mustSpec(t, "focused", func(context.Context) error { return nil }, root)
	focused.IsFocused = true

	r := New()
	rep, err := r.Run(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if got := findSpecResult(rep, "not focused"); got == nil || got.Status != report.StatusSkipped {
		t.Errorf("non-focused spec status = %+v, want skipped", got)
	}
	if got := findSpecResult(rep, "focused"); got == nil || got.Status != report.StatusPassed {
		t.Errorf("focused spec status = %+v, want passed", got)
	}
}

func TestRun_HookOrdering(t *testing.T) {
	var order []string
	root := mustContext(t, "root", nil)
	_ = root.SetBeforeEach(func(context.Context) error { order = append(order, "root-before"); return nil })
	_ = root.SetAfterEach(func(context.Context) error { order = append(order, "root-after"); return nil })

	child := mustContext(t, "child", root)
	_ = child.SetBeforeEach(func(context.Context) error { order = append(order, "child-before"); return nil })
	_ = child.SetAfterEach(func(context.Context) error { order = append(order, "child-after"); return nil })
	mustSpec(t, "spec", func(context.Context) error { order = append(order, "body"); return nil }, child)

	r := New()
	if _, err := r.Run(context.Background(), root, nil); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	want := []string{"root-before", "child-before", "body", "child-after", "root-after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRun_BeforeEachFailureStillRunsAfterEach(t *testing.T) {
	var afterRan bool
	root := mustContext(t, "root", nil)
	_ = root.SetBeforeEach(func(context.Context) error { return errors.New("setup failed") })
	_ = root.SetAfterEach(func(context.Context) error { afterRan = true; return nil })
	mustSpec(t, "spec", func(context.Context) error { t.Fatal("body must not run"); return nil }, root)

	r := New()
	rep, err := r.Run(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !afterRan {
		t.Error("after_each did not run despite before_each failure")
	}
	got := findSpecResult(rep, "spec")
	if got == nil || got.Status != report.StatusFailed {
		t.Fatalf("status = %+v, want failed", got)
	}
	if got.Error == nil || *got.Error != "setup failed" {
		t.Errorf("error = %v, want setup failed", got.Error)
	}
}

func TestRun_BeforeAllFailureFailsAllSpecsWithoutRunning(t *testing.T) {
	root := mustContext(t, "root", nil)
	_ = root.SetBeforeAll(func(context.Context) error { return errors.New("db unavailable") })
	mustSpec(t, "a", func(context.Context) error { t.Fatal("must not run"); return nil }, root)
	mustSpec(t, "b", func(context.Context) error { t.Fatal("must not run"); return nil }, root)

	r := New()
	rep, err := r.Run(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if rep.Summary.Failed != 2 {
		t.Errorf("Failed = %d, want 2", rep.Summary.Failed)
	}
}

func TestRun_AfterAllFiresForContextWithOnlyNestedChildren(t *testing.T) {
	var afterAllRan bool
	root := mustContext(t, "A", nil)
	_ = root.SetAfterAll(func(context.Context) error { afterAllRan = true; return nil })
	child := mustContext(t, "B", root)
	mustSpec(t, "t", func(context.Context) error { return nil }, child)

	r := New()
	if _, err := r.Run(context.Background(), root, nil); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !afterAllRan {
		t.Error("after_all on a context with no direct specs or before_all, but a runnable nested spec, should still fire")
	}
}

func TestRunParallel_AfterAllFiresForContextWithOnlyNestedChildren(t *testing.T) {
	var afterAllRan bool
	root := mustContext(t, "A", nil)
	_ = root.SetAfterAll(func(context.Context) error { afterAllRan = true; return nil })
	child := mustContext(t, "B", root)
	mustSpec(t, "t", func(context.Context) error { return nil }, child)

	r := New(WithParallel(true, 4))
	if _, err := r.Run(context.Background(), root, nil); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !afterAllRan {
		t.Error("after_all on a context with no direct specs or before_all, but a runnable nested spec, should still fire")
	}
}

func TestRun_ObserveCallbackFiresPerSpec(t *testing.T) {
	root := mustContext(t, "root", nil)
	mustSpec(t, "a", func(context.Context) error { return nil }, root)
	mustSpec(t, "b", func(context.Context) error { return nil }, root)

	var observed []string
	r := New()
	_, err := r.Run(context.Background(), root, func(res report.SpecResult) {
		observed = append(observed, res.Description)
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if len(observed) != 2 {
		t.Fatalf("observed = %v, want 2 entries", observed)
	}
}

func TestRun_Parallel_RunsEverySpec(t *testing.T) {
	root := mustContext(t, "root", nil)
	for i := 0; i < 5; i++ {
		mustSpec(t, "spec", func(context.Context) error {
			time.Sleep(time.Millisecond)
			return nil
		}, root)
	}

	r := New(WithParallel(true, 3))
	rep, err := r.Run(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if rep.Summary.Total != 5 || rep.Summary.Passed != 5 {
		t.Errorf("Summary = %+v, want 5 passed", rep.Summary)
	}
}
