package expect

import (
	"errors"
	"testing"
)

func TestToBe(t *testing.T) {
	tests := []struct {
		name     string
		actual   any
		expected any
		wantErr  bool
	}{
		{"equal ints", 1, 1, false},
		{"unequal ints", 1, 2, true},
		{"equal strings", "a", "a", false},
		{"unequal strings", "a", "b", true},
		{"nil vs nil", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := That(tt.actual).ToBe(tt.expected)
			if (err != nil) != tt.wantErr {
				t.Errorf("ToBe(%v) on %v error = %v, wantErr %v", tt.expected, tt.actual, err, tt.wantErr)
			}
		})
	}
}

func TestToBeNullAndNotNull(t *testing.T) {
	var p *int
	if err := That(nil).ToBeNull(); err != nil {
		t.Errorf("ToBeNull() on nil = %v, want nil", err)
	}
	if err := That(p).ToBeNull(); err != nil {
		t.Errorf("ToBeNull() on nil *int = %v, want nil", err)
	}
	if err := That(5).ToBeNull(); err == nil {
		t.Error("ToBeNull() on 5 = nil, want error")
	}
	if err := That(5).ToNotBeNull(); err != nil {
		t.Errorf("ToNotBeNull() on 5 = %v, want nil", err)
	}
}

func TestOrderingChecks(t *testing.T) {
	if err := That(5).ToBeGreaterThan(3); err != nil {
		t.Errorf("ToBeGreaterThan: %v", err)
	}
	if err := That(5).ToBeGreaterThan(5); err == nil {
		t.Error("ToBeGreaterThan(5) on 5 should fail (strict)")
	}
	if err := That(5).ToBeAtLeast(5); err != nil {
		t.Errorf("ToBeAtLeast(5) on 5 should pass: %v", err)
	}
	if err := That(5).ToBeAtMost(5); err != nil {
		t.Errorf("ToBeAtMost(5) on 5 should pass: %v", err)
	}
	if err := That(5).ToBeLessThan(10); err != nil {
		t.Errorf("ToBeLessThan: %v", err)
	}
	if err := That(5).ToBeInRange(1, 10); err != nil {
		t.Errorf("ToBeInRange: %v", err)
	}
	if err := That(11).ToBeInRange(1, 10); err == nil {
		t.Error("ToBeInRange(1,10) on 11 should fail")
	}
}

func TestToBeCloseTo(t *testing.T) {
	if err := That(1.0001).ToBeCloseTo(1.0, 0.001); err != nil {
		t.Errorf("ToBeCloseTo: %v", err)
	}
	if err := That(1.1).ToBeCloseTo(1.0, 0.001); err == nil {
		t.Error("ToBeCloseTo should fail for a large difference")
	}
}

func TestBoolChecks(t *testing.T) {
	if err := That(true).ToBeTrue(); err != nil {
		t.Errorf("ToBeTrue: %v", err)
	}
	if err := That(false).ToBeFalse(); err != nil {
		t.Errorf("ToBeFalse: %v", err)
	}
	if err := That(true).ToBeFalse(); err == nil {
		t.Error("ToBeFalse on true should fail")
	}
}

func TestStringChecks(t *testing.T) {
	if err := That("hello world").ToContain("world"); err != nil {
		t.Errorf("ToContain: %v", err)
	}
	if err := That("hello world").ToContain("World"); err == nil {
		t.Error("ToContain should be case-sensitive")
	}
	if err := That("hello").ToStartWith("he"); err != nil {
		t.Errorf("ToStartWith: %v", err)
	}
	if err := That("hello").ToEndWith("lo"); err != nil {
		t.Errorf("ToEndWith: %v", err)
	}
	if err := That("").ToBeNullOrEmpty(); err != nil {
		t.Errorf("ToBeNullOrEmpty: %v", err)
	}
	if err := That("x").ToMatch(`^x$`); err != nil {
		t.Errorf("ToMatch: %v", err)
	}
}

func TestCollectionChecks(t *testing.T) {
	xs := []int{1, 2, 3}
	if err := That(xs).ToContain(2); err != nil {
		t.Errorf("ToContain: %v", err)
	}
	if err := That(xs).ToNotContain(9); err != nil {
		t.Errorf("ToNotContain: %v", err)
	}
	if err := That(xs).ToContainAll(1, 3); err != nil {
		t.Errorf("ToContainAll: %v", err)
	}
	if err := That(xs).ToHaveCount(3); err != nil {
		t.Errorf("ToHaveCount: %v", err)
	}
	if err := That([]int{}).ToBeEmpty(); err != nil {
		t.Errorf("ToBeEmpty: %v", err)
	}
	if err := That(xs).ToNotBeEmpty(); err != nil {
		t.Errorf("ToNotBeEmpty: %v", err)
	}
	if err := That(xs).ToBeSequence([]int{1, 2, 3}); err != nil {
		t.Errorf("ToBeSequence: %v", err)
	}
	if err := That(xs).ToBeSequence([]int{1, 2}); err == nil {
		t.Error("ToBeSequence should fail on length mismatch")
	}
}

type customErr struct{ msg string }

func (e *customErr) Error() string { return e.msg }

func TestActionChecks(t *testing.T) {
	if err := ToThrow[*customErr](func() error { return &customErr{"boom"} }); err != nil {
		t.Errorf("ToThrow[*customErr]: %v", err)
	}
	if err := ToThrow[*customErr](func() error { return errors.New("other") }); err == nil {
		t.Error("ToThrow[*customErr] should fail for a different error type")
	}
	if err := ToThrowAny(func() error { return errors.New("x") }); err != nil {
		t.Errorf("ToThrowAny: %v", err)
	}
	if err := ToNotThrow(func() error { return nil }); err != nil {
		t.Errorf("ToNotThrow: %v", err)
	}
	if err := ToNotThrow(func() error { return errors.New("x") }); err == nil {
		t.Error("ToNotThrow should fail when an error is returned")
	}
}
