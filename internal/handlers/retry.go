package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// RetryPolicy bounds the exponential backoff wrapped around per-cluster
// operations. Only transient failures are retried; permanent taxonomy
// errors surface immediately.
type RetryPolicy struct {
	// MaxTries is the total number of attempts including the first.
	MaxTries uint

	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration

	// MaxInterval caps the growth of the delay.
	MaxInterval time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTries:        3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// ExecuteWithRetry runs Set.Execute under the retry policy. Each attempt's
// error is classified first, so raw API errors never decide retryability.
func ExecuteWithRetry(ctx context.Context, s *Set, policy RetryPolicy, cap cluster.Capability, kind string, verb toolreg.Verb, req Request) (any, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = policy.InitialInterval
	bo.MaxInterval = policy.MaxInterval

	operation := func() (any, error) {
		payload, err := s.Execute(ctx, cap, kind, verb, req)
		if err != nil {
			err = Classify(err, kind, req.Namespace, req.Name)
			if errors.Is(err, ErrTransient) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return payload, nil
	}

	payload, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(policy.MaxTries),
	)
	if err != nil {
		// backoff.Permanent wrapping is transparent to errors.Is but the
		// classified error must come back unwrapped for callers.
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Unwrap()
		}
		return nil, err
	}
	return payload, nil
}
