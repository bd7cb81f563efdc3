package container

import (
	"fmt"
	"strings"

	"github.com/km-arc/go-inject/framework/errors"
)

// UnknownDependencyError is returned when a requested name, or a name it
// transitively depends on, has no binding.
type UnknownDependencyError struct {
	Name string

	// Path holds the bindings that led to Name, outermost first. Empty when
	// Name itself was requested.
	Path []string
}

func (e *UnknownDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("container: no binding registered for [%s]", e.Name)
	}
	return fmt.Sprintf("container: no binding registered for [%s] (required by %s)",
		e.Name, strings.Join(e.Path, " -> "))
}

// Code reports the error category.
func (e *UnknownDependencyError) Code() errors.ErrorCode { return errors.ErrUnknownDependency }

// CyclicDependencyError is returned when resolving a name re-enters that
// name before it has been built.
type CyclicDependencyError struct {
	// Path is the cycle, starting and ending with the same name: x -> y -> x.
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return "container: dependency cycle detected: " + strings.Join(e.Path, " -> ")
}

// Code reports the error category.
func (e *CyclicDependencyError) Code() errors.ErrorCode { return errors.ErrCyclicDependency }

// Name is the binding the cycle returns to.
func (e *CyclicDependencyError) Name() string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[0]
}
