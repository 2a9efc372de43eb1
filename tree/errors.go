package tree

import "fmt"

// ErrInvalidDescription is returned when a Context or Spec is built with an
// empty or whitespace-only description.
type ErrInvalidDescription struct {
	Kind string // "context" or "spec"
}

func (e *ErrInvalidDescription) Error() string {
	return fmt.Sprintf("draftspec: %s description must not be empty", e.Kind)
}

// ErrHookAlreadyDefined is returned when a second hook of the same kind is
// attached to a Context that already has one.
type ErrHookAlreadyDefined struct {
	Context string
	Hook    string
}

func (e *ErrHookAlreadyDefined) Error() string {
	return fmt.Sprintf("draftspec: %s already defined for context %q", e.Hook, e.Context)
}
