package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ReferenceError represents a write whose foreign key target does not exist.
type ReferenceError struct {
	Resource string
	ID       string
}

func (e ReferenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("referenced %s does not exist", e.Resource)
	}
	return fmt.Sprintf("referenced %s %s does not exist", e.Resource, e.ID)
}

func (e ReferenceError) Is(target error) bool {
	_, ok := target.(ReferenceError)
	if ok {
		return true
	}
	_, ok = target.(*ReferenceError)
	return ok
}

// ValidationError represents a field-level invariant violation. The write
// is rejected before anything is committed.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	if e.Message == "" {
		return "validation failed"
	}
	return e.Message
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// SelfLoopError represents an edge whose endpoints are the same criterion.
type SelfLoopError struct {
	CriterionID string
}

func (e SelfLoopError) Error() string {
	return fmt.Sprintf("criterion %s cannot depend on itself", e.CriterionID)
}

func (e SelfLoopError) Is(target error) bool {
	_, ok := target.(SelfLoopError)
	if ok {
		return true
	}
	_, ok = target.(*SelfLoopError)
	return ok
}

// DuplicateEdgeError represents a second edge over an ordered pair that
// already has one. ExistingType carries the type of the stored edge since
// uniqueness keys on the pair alone.
type DuplicateEdgeError struct {
	FromID       string
	ToID         string
	ExistingType string
}

func (e DuplicateEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s already exists (%s)", e.FromID, e.ToID, e.ExistingType)
}

func (e DuplicateEdgeError) Is(target error) bool {
	_, ok := target.(DuplicateEdgeError)
	if ok {
		return true
	}
	_, ok = target.(*DuplicateEdgeError)
	return ok
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound      = NotFoundError{}
	ErrReference     = ReferenceError{}
	ErrValidation    = ValidationError{}
	ErrSelfLoop      = SelfLoopError{}
	ErrDuplicateEdge = DuplicateEdgeError{}
)
