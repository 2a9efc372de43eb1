package expect

import "errors"

// ToThrow asserts fn returns an error that is (or wraps) exactly type E, or
// a subtype satisfying errors.As. Fails if fn returns a different error
// type, or no error at all.
func ToThrow[E error](fn func() error) error {
	err := fn()
	if err == nil {
		return newFailure("action", "no error", "to throw but did not throw")
	}
	var target E
	if errors.As(err, &target) {
		return nil
	}
	return newFailure("action", formatValue(err.Error()), "to throw a matching error but threw "+formatValue(err.Error()))
}

// ToThrowAny asserts fn returns any non-nil error.
func ToThrowAny(fn func() error) error {
	if err := fn(); err != nil {
		return nil
	}
	return newFailure("action", "no error", "to throw but did not throw")
}

// ToNotThrow asserts fn returns a nil error.
func ToNotThrow(fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	return newFailure("action", formatValue(err.Error()), "to not throw but threw "+formatValue(err.Error()))
}
