package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for resolution failures.
var (
	// ErrCycle indicates the dependency relation contains a cycle.
	ErrCycle = errors.New("circular dependency")

	// ErrMissingDependency indicates a node depends on an id that is not
	// present in the supplied node set.
	ErrMissingDependency = errors.New("missing dependency")
)

// CycleError reports a circular dependency.
// Path holds the full chain from the cycle root back to the repeated id,
// e.g. ["a", "b", "c", "a"].
type CycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency: %s", strings.Join(e.Path, " -> "))
}

// Unwrap returns ErrCycle for errors.Is support.
func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// MissingDependencyError reports a dependency id absent from the node set.
type MissingDependencyError struct {
	// ID is the missing dependency id.
	ID string
	// RequiredBy is the node that declared the dependency.
	RequiredBy string
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency: %q required by %q", e.ID, e.RequiredBy)
}

// Unwrap returns ErrMissingDependency for errors.Is support.
func (e *MissingDependencyError) Unwrap() error {
	return ErrMissingDependency
}
