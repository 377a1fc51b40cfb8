package toolreg

import (
	"errors"
	"fmt"
)

// Sentinel errors for tool registry failure scenarios. These can be checked
// with errors.Is() for programmatic error handling.
var (
	// ErrDuplicateTool indicates that a descriptor with the same tool name
	// has already been registered.
	ErrDuplicateTool = errors.New("duplicate tool")

	// ErrUnknownTool indicates an invocation for a tool name that is not
	// present in the registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidParameter indicates that an invocation's arguments do not
	// satisfy the tool's parameter schema.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// DuplicateToolError reports a registration attempt for a tool name that is
// already taken.
type DuplicateToolError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// Is implements custom error matching for errors.Is().
func (e *DuplicateToolError) Is(target error) bool {
	return target == ErrDuplicateTool
}

// UnknownToolError reports an invocation of an unregistered tool.
type UnknownToolError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %q is not registered", e.Name)
}

// Is implements custom error matching for errors.Is().
func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}

// InvalidParameterError names the offending parameter and the reason the
// schema rejected it.
type InvalidParameterError struct {
	Tool      string
	Parameter string
	Reason    string
}

// Error implements the error interface.
func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("tool %q: parameter %q: %s", e.Tool, e.Parameter, e.Reason)
}

// Is implements custom error matching for errors.Is().
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
