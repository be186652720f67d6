package expr

import "fmt"

// InvariantError reports a structurally invalid expression tree. Such trees
// can only come from a faulty front end, so constructors raise it by panicking.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invalid expression: %v", e.Message)
}

func raiseInvariantError(format string, a ...interface{}) {
	panic(&InvariantError{
		Message: fmt.Sprintf(format, a...),
	})
}
