package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
)

func TestClassify(t *testing.T) {
	podsResource := schema.GroupResource{Resource: "pods"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "not found",
			err:  apierrors.NewNotFound(podsResource, "web-0"),
			want: ErrNotFound,
		},
		{
			name: "bad request",
			err:  apierrors.NewBadRequest("spec is malformed"),
			want: ErrValidation,
		},
		{
			name: "already exists",
			err:  apierrors.NewAlreadyExists(podsResource, "web-0"),
			want: ErrValidation,
		},
		{
			name: "conflict",
			err:  apierrors.NewConflict(podsResource, "web-0", errors.New("stale version")),
			want: ErrValidation,
		},
		{
			name: "unauthorized",
			err:  apierrors.NewUnauthorized("token expired"),
			want: cluster.ErrAuthentication,
		},
		{
			name: "forbidden",
			err:  apierrors.NewForbidden(podsResource, "web-0", errors.New("rbac")),
			want: cluster.ErrAuthentication,
		},
		{
			name: "server timeout",
			err:  apierrors.NewServerTimeout(podsResource, "list", 2),
			want: ErrTransient,
		},
		{
			name: "rate limited",
			err:  apierrors.NewTooManyRequests("slow down", 1),
			want: ErrTransient,
		},
		{
			name: "service unavailable",
			err:  apierrors.NewServiceUnavailable("apiserver restarting"),
			want: ErrTransient,
		},
		{
			name: "context deadline",
			err:  fmt.Errorf("calling apiserver: %w", context.DeadlineExceeded),
			want: ErrTransient,
		},
		{
			name: "unclassified falls back to transient",
			err:  errors.New("connection reset by peer"),
			want: ErrTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "pods", "prod", "web-0")
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, Classify(nil, "pods", "", ""))
}

func TestClassifyPassesThroughTaxonomyErrors(t *testing.T) {
	taxonomy := []error{
		&NotFoundError{Kind: "pods", Name: "x"},
		&ValidationError{Kind: "pods", Reason: "bad"},
		&TransientError{Reason: "busy"},
		&UnsupportedOperationError{Kind: "nodes", Verb: "delete"},
		&cluster.AuthenticationError{ClusterName: "alpha", Reason: "expired"},
	}
	for _, err := range taxonomy {
		assert.Same(t, err, Classify(err, "pods", "prod", "web-0"))
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := &NotFoundError{Kind: "pods", Namespace: "prod", Name: "web-0"}
	assert.Contains(t, err.Error(), `"web-0"`)
	assert.Contains(t, err.Error(), `"prod"`)

	clusterScoped := &NotFoundError{Kind: "nodes", Name: "node-1"}
	assert.NotContains(t, clusterScoped.Error(), "namespace")
}

func TestClassifyKeepsStatusReason(t *testing.T) {
	err := Classify(apierrors.NewBadRequest("replicas must be non-negative"), "deployments", "prod", "web")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "replicas must be non-negative")
}
