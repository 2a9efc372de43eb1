package expect

import "fmt"

// AssertionFailure is raised by a failing expectation check. It carries the
// asserted-on expression text (the literal "value" — Go has no call-site
// expression capture without heavy AST tooling, so this is the documented
// fallback spec.md explicitly allows), the actual value's formatted form,
// and a message describing the expectation.
type AssertionFailure struct {
	ExprText string
	Actual   string
	Message  string
}

func (e *AssertionFailure) Error() string {
	return fmt.Sprintf("expected %s %s", e.ExprText, e.Message)
}

func newFailure(exprText, actual, message string) *AssertionFailure {
	return &AssertionFailure{ExprText: exprText, Actual: actual, Message: message}
}
