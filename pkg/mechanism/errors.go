package mechanism

import (
	"errors"
	"fmt"
)

// Common sentinel errors for graph operations and synthesis candidates.
var (
	// ErrInvalidReference means a joint or rule referenced an element that
	// is not present in the graph. This is a data or programming error and
	// is never retried.
	ErrInvalidReference = errors.New("element reference not in graph")

	// ErrUnknownJointType means a joint type outside R/P/X/F was supplied.
	ErrUnknownJointType = errors.New("unknown joint type")

	// ErrUndefinedDOF means the Grubler formula is undefined, which happens
	// for graphs with fewer than two elements.
	ErrUndefinedDOF = errors.New("degrees of freedom undefined")

	// ErrUnsatisfiableRule means a transformation rule found no anchor in
	// the current graph. Recoverable: the candidate is simply not produced.
	ErrUnsatisfiableRule = errors.New("rule has no valid anchor")

	// ErrInvalidCandidate means a candidate graph is disconnected or has a
	// negative or undefined DOF after a rule application. Recoverable: the
	// candidate is discarded.
	ErrInvalidCandidate = errors.New("invalid candidate graph")
)

// GraphError provides structured error information for graph operations.
type GraphError struct {
	Op     string // Operation that failed (e.g., "AddJoint")
	Entity string // Entity kind ("element", "joint")
	ID     int    // Entity ID, if applicable
	Cause  error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.ID >= 0 {
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's cause.
func (e *GraphError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func elementError(op string, id ElementID, cause error) error {
	return &GraphError{Op: op, Entity: "element", ID: int(id), Cause: cause}
}
