package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/handlers"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// Status is the overall outcome of one dispatch across its target clusters.
type Status string

const (
	// StatusSuccess means every per-cluster operation succeeded. An empty
	// target set is vacuously successful.
	StatusSuccess Status = "success"

	// StatusPartialFailure means at least one cluster succeeded and at
	// least one failed.
	StatusPartialFailure Status = "partial_failure"

	// StatusFailure means every per-cluster operation failed.
	StatusFailure Status = "failure"
)

// Error kind strings carried on the wire inside ErrorDetail.
const (
	KindNotFound       = "NotFound"
	KindValidation     = "Validation"
	KindTransient      = "Transient"
	KindUnsupported    = "UnsupportedOperation"
	KindAuthentication = "Authentication"
	KindUnknownCluster = "UnknownCluster"
	KindUnknownTool    = "UnknownTool"
	KindInvalidParam   = "InvalidParameter"
	KindTimeout        = "Timeout"
	KindInternal       = "Internal"
)

// ErrTimeout marks per-cluster results synthesized when the dispatch
// deadline expires before the cluster finished.
var ErrTimeout = errors.New("dispatch deadline exceeded")

// TimeoutError stands in for the outcome of a cluster that did not finish
// before the dispatch deadline.
type TimeoutError struct {
	Cluster string
	Elapsed time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("cluster %q did not answer within the dispatch deadline (%s elapsed)", e.Cluster, e.Elapsed)
}

// Is implements custom error matching for errors.Is().
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ErrorDetail is the wire form of a per-cluster failure.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// OperationResult is the outcome of one tool operation on one cluster.
// Exactly one exists per (invocation, resolved cluster).
type OperationResult struct {
	Cluster string       `json:"cluster"`
	OK      bool         `json:"ok"`
	Payload any          `json:"payload,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// AggregatedResponse collects the per-cluster results of one dispatch in
// resolution order, together with the overall status.
type AggregatedResponse struct {
	Tool    string            `json:"tool"`
	Status  Status            `json:"status"`
	Results []OperationResult `json:"results"`
}

// Succeeded counts the successful per-cluster results.
func (r *AggregatedResponse) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK {
			n++
		}
	}
	return n
}

// overallStatus derives the three-way status from the per-cluster results.
func overallStatus(results []OperationResult) Status {
	ok := 0
	for _, res := range results {
		if res.OK {
			ok++
		}
	}
	switch {
	case ok == len(results):
		return StatusSuccess
	case ok == 0:
		return StatusFailure
	default:
		return StatusPartialFailure
	}
}

// KindOf maps an error to its wire kind string.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, handlers.ErrNotFound):
		return KindNotFound
	case errors.Is(err, handlers.ErrValidation):
		return KindValidation
	case errors.Is(err, handlers.ErrUnsupportedOperation):
		return KindUnsupported
	case errors.Is(err, handlers.ErrTransient):
		return KindTransient
	case errors.Is(err, cluster.ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, cluster.ErrUnknownCluster), errors.Is(err, cluster.ErrDuplicateCluster):
		return KindUnknownCluster
	case errors.Is(err, toolreg.ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, toolreg.ErrInvalidParameter):
		return KindInvalidParam
	default:
		return KindInternal
	}
}

// detailOf renders an error as its wire form.
func detailOf(err error) *ErrorDetail {
	if err == nil {
		return nil
	}
	return &ErrorDetail{Kind: KindOf(err), Message: err.Error()}
}
