package cluster

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry failure scenarios. These can be checked with
// errors.Is() for programmatic error handling.
var (
	// ErrDuplicateCluster indicates that a cluster context with the same
	// name has already been registered.
	ErrDuplicateCluster = errors.New("duplicate cluster")

	// ErrUnknownCluster indicates that a selector referenced a cluster
	// name that is not present in the registry.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrAuthentication indicates that an authenticated client handle
	// could not be established for a cluster context.
	ErrAuthentication = errors.New("cluster authentication failed")
)

// DuplicateClusterError reports a registration attempt for a name that is
// already taken. Registration happens at startup, so this is a configuration
// mistake rather than a runtime condition.
type DuplicateClusterError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateClusterError) Error() string {
	return fmt.Sprintf("cluster %q is already registered", e.Name)
}

// Is implements custom error matching for errors.Is().
func (e *DuplicateClusterError) Is(target error) bool {
	return target == ErrDuplicateCluster
}

// UnknownClusterError reports the first unresolvable name in a selector.
// Resolution is all-or-nothing: a typo must fail the whole dispatch instead
// of silently executing against an unintended subset of the fleet.
type UnknownClusterError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownClusterError) Error() string {
	return fmt.Sprintf("cluster %q is not registered", e.Name)
}

// Is implements custom error matching for errors.Is().
func (e *UnknownClusterError) Is(target error) bool {
	return target == ErrUnknownCluster
}

// AuthenticationError reports a failure to construct an authenticated client
// handle for a cluster context.
type AuthenticationError struct {
	ClusterName string
	Reason      string
	Err         error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication for cluster %q failed: %s: %v", e.ClusterName, e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication for cluster %q failed: %s", e.ClusterName, e.Reason)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements custom error matching for errors.Is().
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}
