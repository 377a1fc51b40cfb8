package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
)

// Sentinel errors for the handler-level taxonomy. Permanent errors
// (ErrNotFound, ErrValidation, ErrUnsupportedOperation) describe outcomes
// that will not change on retry; ErrTransient marks failures worth retrying.
var (
	// ErrNotFound indicates the addressed resource does not exist on the
	// target cluster.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates the cluster's API server rejected the
	// request as malformed or conflicting.
	ErrValidation = errors.New("validation failed")

	// ErrTransient indicates a failure that may succeed on retry, such as
	// a timeout, rate limit, or connection error.
	ErrTransient = errors.New("transient failure")

	// ErrUnsupportedOperation indicates the resource kind does not
	// implement the requested verb.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// NotFoundError identifies the missing resource.
type NotFoundError struct {
	Kind      string
	Namespace string
	Name      string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Namespace == "" {
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %q not found in namespace %q", e.Kind, e.Name, e.Namespace)
}

// Is implements custom error matching for errors.Is().
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError carries the API server's rejection reason.
type ValidationError struct {
	Kind   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s request rejected: %s", e.Kind, e.Reason)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is implements custom error matching for errors.Is().
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransientError wraps a retryable failure.
type TransientError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient failure (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transient failure (%s)", e.Reason)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *TransientError) Unwrap() error {
	return e.Err
}

// Is implements custom error matching for errors.Is().
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// UnsupportedOperationError reports a verb the resource kind does not
// implement. It poisons only the cluster it came from, never the whole
// dispatch.
type UnsupportedOperationError struct {
	Kind string
	Verb string
}

// Error implements the error interface.
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %q is not supported for %s", e.Verb, e.Kind)
}

// Is implements custom error matching for errors.Is().
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// Classify translates a Kubernetes API error into the handler taxonomy.
// Errors already in the taxonomy pass through unchanged; anything that
// cannot be recognized is wrapped as transient so the caller's bounded
// retry gets one more chance before it surfaces.
func Classify(err error, kind, namespace, name string) error {
	if err == nil {
		return nil
	}

	// Already classified, including taxonomy errors from other packages.
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrTransient) || errors.Is(err, ErrUnsupportedOperation) ||
		errors.Is(err, cluster.ErrAuthentication) {
		return err
	}

	switch {
	case apierrors.IsNotFound(err):
		return &NotFoundError{Kind: kind, Namespace: namespace, Name: name}

	case apierrors.IsInvalid(err), apierrors.IsBadRequest(err),
		apierrors.IsAlreadyExists(err), apierrors.IsConflict(err):
		return &ValidationError{Kind: kind, Reason: reasonOf(err), Err: err}

	case apierrors.IsUnauthorized(err), apierrors.IsForbidden(err):
		return &cluster.AuthenticationError{Reason: reasonOf(err), Err: err}

	case apierrors.IsTimeout(err), apierrors.IsServerTimeout(err),
		apierrors.IsTooManyRequests(err), apierrors.IsServiceUnavailable(err),
		apierrors.IsInternalError(err):
		return &TransientError{Reason: reasonOf(err), Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &TransientError{Reason: "request deadline exceeded", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransientError{Reason: "connection error", Err: err}
	}

	return &TransientError{Reason: "unclassified API error", Err: err}
}

// reasonOf extracts the API server's message when the error carries a
// status, falling back to the error text.
func reasonOf(err error) string {
	var statusErr *apierrors.StatusError
	if errors.As(err, &statusErr) && statusErr.ErrStatus.Message != "" {
		return statusErr.ErrStatus.Message
	}
	return err.Error()
}
