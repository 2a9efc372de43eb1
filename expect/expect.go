// Package expect implements the expectation library (C3): value-typed
// assertions that produce an *AssertionFailure on mismatch. Dispatch is by
// reflect.Value kind rather than Go generics, the same pattern
// stretchr/testify's assert.ObjectsAreEqual uses, since a single
// Expectation wrapping `any` reads far closer to the fluent expect(value)
// the spec describes than a family of generic constructors would.
package expect

import (
	"reflect"
	"regexp"
	"strings"
)

// Expectation wraps a value under test and exposes the fluent checks from
// spec.md §4.3. Construct with That.
type Expectation struct {
	actual   any
	exprText string
}

// That returns an expectation over actual. The expression text is always
// the literal "value": see AssertionFailure and SPEC_FULL.md §6.3 for why.
func That(actual any) *Expectation {
	return &Expectation{actual: actual, exprText: "value"}
}

func (e *Expectation) fail(message string) *AssertionFailure {
	return newFailure(e.exprText, formatValue(e.actual), message)
}

// ToBe asserts equality via reflect.DeepEqual.
func (e *Expectation) ToBe(expected any) error {
	if reflect.DeepEqual(e.actual, expected) {
		return nil
	}
	return e.fail("to be " + formatValue(expected) + " but was " + formatValue(e.actual))
}

// ToNotBe asserts inequality.
func (e *Expectation) ToNotBe(expected any) error {
	if !reflect.DeepEqual(e.actual, expected) {
		return nil
	}
	return e.fail("to not be " + formatValue(expected))
}

// ToBeNull asserts the value is nil (or a nil pointer/interface/slice/map).
func (e *Expectation) ToBeNull() error {
	if isNil(e.actual) {
		return nil
	}
	return e.fail("to be null but was " + formatValue(e.actual))
}

// ToNotBeNull asserts the value is not nil.
func (e *Expectation) ToNotBeNull() error {
	if !isNil(e.actual) {
		return nil
	}
	return e.fail("to not be null")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

// ToBeGreaterThan asserts actual > v for ordered types.
func (e *Expectation) ToBeGreaterThan(v any) error {
	cmp, err := compareOrdered(e.actual, v)
	if err != nil {
		return e.fail(err.Error())
	}
	if cmp > 0 {
		return nil
	}
	return e.fail("to be greater than " + formatValue(v) + " but was " + formatValue(e.actual))
}

// ToBeLessThan asserts actual < v for ordered types.
func (e *Expectation) ToBeLessThan(v any) error {
	cmp, err := compareOrdered(e.actual, v)
	if err != nil {
		return e.fail(err.Error())
	}
	if cmp < 0 {
		return nil
	}
	return e.fail("to be less than " + formatValue(v) + " but was " + formatValue(e.actual))
}

// ToBeAtLeast asserts actual >= v.
func (e *Expectation) ToBeAtLeast(v any) error {
	cmp, err := compareOrdered(e.actual, v)
	if err != nil {
		return e.fail(err.Error())
	}
	if cmp >= 0 {
		return nil
	}
	return e.fail("to be at least " + formatValue(v) + " but was " + formatValue(e.actual))
}

// ToBeAtMost asserts actual <= v.
func (e *Expectation) ToBeAtMost(v any) error {
	cmp, err := compareOrdered(e.actual, v)
	if err != nil {
		return e.fail(err.Error())
	}
	if cmp <= 0 {
		return nil
	}
	return e.fail("to be at most " + formatValue(v) + " but was " + formatValue(e.actual))
}

// ToBeInRange asserts min <= actual <= max, inclusive.
func (e *Expectation) ToBeInRange(min, max any) error {
	lo, err := compareOrdered(e.actual, min)
	if err != nil {
		return e.fail(err.Error())
	}
	hi, err := compareOrdered(e.actual, max)
	if err != nil {
		return e.fail(err.Error())
	}
	if lo >= 0 && hi <= 0 {
		return nil
	}
	return e.fail("to be in range [" + formatValue(min) + ", " + formatValue(max) + "] but was " + formatValue(e.actual))
}

// ToBeCloseTo asserts |actual - expected| <= tolerance using absolute
// difference between numeric values.
func (e *Expectation) ToBeCloseTo(expected any, tolerance float64) error {
	a, err := toFloat64(e.actual)
	if err != nil {
		return e.fail(err.Error())
	}
	b, err := toFloat64(expected)
	if err != nil {
		return e.fail(err.Error())
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if diff <= tolerance {
		return nil
	}
	return e.fail("to be close to " + formatValue(expected) + " within " + formatValue(tolerance) + " but was " + formatValue(e.actual))
}

// ToBeTrue asserts the value is the boolean true.
func (e *Expectation) ToBeTrue() error {
	b, ok := e.actual.(bool)
	if ok && b {
		return nil
	}
	return e.fail("to be true but was " + formatValue(e.actual))
}

// ToBeFalse asserts the value is the boolean false.
func (e *Expectation) ToBeFalse() error {
	b, ok := e.actual.(bool)
	if ok && !b {
		return nil
	}
	return e.fail("to be false but was " + formatValue(e.actual))
}

// ToStartWith asserts a string prefix. Case-sensitive (see SPEC_FULL.md §6.3).
func (e *Expectation) ToStartWith(prefix string) error {
	s, ok := e.actual.(string)
	if ok && strings.HasPrefix(s, prefix) {
		return nil
	}
	return e.fail("to start with " + formatValue(prefix) + " but was " + formatValue(e.actual))
}

// ToEndWith asserts a string suffix. Case-sensitive.
func (e *Expectation) ToEndWith(suffix string) error {
	s, ok := e.actual.(string)
	if ok && strings.HasSuffix(s, suffix) {
		return nil
	}
	return e.fail("to end with " + formatValue(suffix) + " but was " + formatValue(e.actual))
}

// ToBeNullOrEmpty asserts the value is nil or an empty string.
func (e *Expectation) ToBeNullOrEmpty() error {
	if isNil(e.actual) {
		return nil
	}
	if s, ok := e.actual.(string); ok && s == "" {
		return nil
	}
	return e.fail("to be null or empty but was " + formatValue(e.actual))
}

// ToMatch asserts a string matches a regular expression.
func (e *Expectation) ToMatch(pattern string) error {
	s, ok := e.actual.(string)
	if !ok {
		return e.fail("to match " + formatValue(pattern) + " but was not a string")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return e.fail("to match " + formatValue(pattern) + " but the pattern is invalid: " + err.Error())
	}
	if re.MatchString(s) {
		return nil
	}
	return e.fail("to match " + formatValue(pattern) + " but was " + formatValue(e.actual))
}

// ToContain asserts string substring containment or collection membership
// depending on the actual value's kind.
func (e *Expectation) ToContain(item any) error {
	if ok, err := contains(e.actual, item); err != nil {
		return e.fail(err.Error())
	} else if ok {
		return nil
	}
	return e.fail("to contain " + formatValue(item) + " but was " + formatValue(e.actual))
}

// ToNotContain is the negation of ToContain.
func (e *Expectation) ToNotContain(item any) error {
	ok, err := contains(e.actual, item)
	if err != nil {
		return e.fail(err.Error())
	}
	if !ok {
		return nil
	}
	return e.fail("to not contain " + formatValue(item))
}

// ToContainAll asserts every item in items is present, using the same
// string/slice/array/map membership rules as ToContain.
func (e *Expectation) ToContainAll(items ...any) error {
	for _, item := range items {
		ok, err := contains(e.actual, item)
		if err != nil {
			return e.fail(err.Error())
		}
		if !ok {
			return e.fail("to contain all of " + formatValue(items) + " but was missing " + formatValue(item))
		}
	}
	return nil
}

// ToHaveCount asserts the collection/string has exactly n elements, using
// len() for O(1) size on any type that advertises one.
func (e *Expectation) ToHaveCount(n int) error {
	length, err := lengthOf(e.actual)
	if err != nil {
		return e.fail(err.Error())
	}
	if length == n {
		return nil
	}
	return e.fail("to have count " + formatValue(n) + " but had " + formatValue(length))
}

// ToBeEmpty asserts a zero-length collection/string.
func (e *Expectation) ToBeEmpty() error {
	length, err := lengthOf(e.actual)
	if err != nil {
		return e.fail(err.Error())
	}
	if length == 0 {
		return nil
	}
	return e.fail("to be empty but had " + formatValue(length) + " elements")
}

// ToNotBeEmpty is the negation of ToBeEmpty.
func (e *Expectation) ToNotBeEmpty() error {
	length, err := lengthOf(e.actual)
	if err != nil {
		return e.fail(err.Error())
	}
	if length != 0 {
		return nil
	}
	return e.fail("to not be empty")
}

// ToBeSequence asserts pairwise equality with expected, in order.
func (e *Expectation) ToBeSequence(expected any) error {
	av := reflect.ValueOf(e.actual)
	bv := reflect.ValueOf(expected)
	if av.Kind() != reflect.Slice && av.Kind() != reflect.Array {
		return e.fail("to be a sequence but was not a slice or array")
	}
	if bv.Kind() != reflect.Slice && bv.Kind() != reflect.Array {
		return e.fail("to be compared against a sequence")
	}
	if av.Len() != bv.Len() {
		return e.fail("to be " + formatValue(expected) + " but had a different length")
	}
	for i := 0; i < av.Len(); i++ {
		if !reflect.DeepEqual(av.Index(i).Interface(), bv.Index(i).Interface()) {
			return e.fail("to be " + formatValue(expected) + " but differed at index " + formatValue(i))
		}
	}
	return nil
}

func lengthOf(v any) (int, error) {
	if v == nil {
		return 0, newUnsupportedErr("to have a measurable length but was null")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Chan:
		return rv.Len(), nil
	default:
		return 0, newUnsupportedErr("to have a measurable length")
	}
}

func contains(haystack, item any) (bool, error) {
	if haystack == nil {
		return false, nil
	}
	rv := reflect.ValueOf(haystack)
	switch rv.Kind() {
	case reflect.String:
		sub, ok := item.(string)
		if !ok {
			return false, newUnsupportedErr("to contain a string")
		}
		return strings.Contains(rv.String(), sub), nil
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if reflect.DeepEqual(rv.Index(i).Interface(), item) {
				return true, nil
			}
		}
		return false, nil
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			if reflect.DeepEqual(k.Interface(), item) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, newUnsupportedErr("to be a string, slice, array, or map")
	}
}

func newUnsupportedErr(message string) error {
	return &unsupportedError{message: message}
}

type unsupportedError struct{ message string }

func (e *unsupportedError) Error() string { return e.message }
