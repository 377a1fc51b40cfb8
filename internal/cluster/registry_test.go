package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// fakeCapability is a minimal Capability for registry tests.
type fakeCapability struct {
	name string
}

func (f *fakeCapability) ClusterName() string                     { return f.name }
func (f *fakeCapability) Clientset() kubernetes.Interface         { return nil }
func (f *fakeCapability) Dynamic() dynamic.Interface              { return nil }
func (f *fakeCapability) Discovery() discovery.DiscoveryInterface { return nil }
func (f *fakeCapability) RESTConfig() *rest.Config                { return nil }

// countingSource records how many times Connect is called per cluster and can
// be armed to fail a fixed number of times first.
type countingSource struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int

	// block, when non-nil, is closed by the test to release in-flight
	// Connect calls. Used to hold builds open while more callers pile up.
	block chan struct{}
}

func newCountingSource() *countingSource {
	return &countingSource{
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}
}

func (s *countingSource) Connect(_ context.Context, cc Context) (Capability, error) {
	s.mu.Lock()
	s.calls[cc.Name]++
	shouldFail := s.failures[cc.Name] > 0
	if shouldFail {
		s.failures[cc.Name]--
	}
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}
	if shouldFail {
		return nil, &AuthenticationError{ClusterName: cc.Name, Reason: "stubbed failure"}
	}
	return &fakeCapability{name: cc.Name}, nil
}

func (s *countingSource) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func newTestRegistry(t *testing.T, source CredentialSource, names ...string) *Registry {
	t.Helper()
	reg := NewRegistry(source)
	for _, name := range names {
		require.NoError(t, reg.Register(Context{Name: name}))
	}
	return reg
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	reg := newTestRegistry(t, newCountingSource(), "alpha")

	err := reg.Register(Context{Name: "alpha"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateCluster)

	var dup *DuplicateClusterError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "alpha", dup.Name)
}

func TestResolve(t *testing.T) {
	reg := newTestRegistry(t, newCountingSource(), "alpha", "beta", "gamma")

	tests := []struct {
		name      string
		selector  Selector
		wantNames []string
		wantErr   error
	}{
		{
			name:      "all follows registration order",
			selector:  All(),
			wantNames: []string{"alpha", "beta", "gamma"},
		},
		{
			name:      "single name",
			selector:  Names("beta"),
			wantNames: []string{"beta"},
		},
		{
			name:      "set preserves selector order",
			selector:  Names("gamma", "alpha"),
			wantNames: []string{"gamma", "alpha"},
		},
		{
			name:     "unknown name fails whole resolution",
			selector: Names("alpha", "missing"),
			wantErr:  ErrUnknownCluster,
		},
		{
			name:     "repeated name fails",
			selector: Names("alpha", "alpha"),
			wantErr:  ErrDuplicateCluster,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contexts, err := reg.Resolve(tt.selector)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(contexts))
			for _, cc := range contexts {
				names = append(names, cc.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestResolveAllOnEmptyRegistry(t *testing.T) {
	reg := NewRegistry(newCountingSource())

	contexts, err := reg.Resolve(All())
	require.NoError(t, err)
	assert.Empty(t, contexts)
}

func TestCapabilityBuiltOnceAndCached(t *testing.T) {
	source := newCountingSource()
	reg := newTestRegistry(t, source, "alpha")
	ctx := context.Background()

	first, err := reg.Capability(ctx, "alpha")
	require.NoError(t, err)

	second, err := reg.Capability(ctx, "alpha")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, source.callCount("alpha"))
}

func TestCapabilityUnknownCluster(t *testing.T) {
	reg := newTestRegistry(t, newCountingSource(), "alpha")

	_, err := reg.Capability(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownCluster)
}

func TestConcurrentCapabilityCallsShareOneBuild(t *testing.T) {
	source := newCountingSource()
	source.block = make(chan struct{})
	reg := newTestRegistry(t, source, "alpha")

	const callers = 50
	var (
		wg       sync.WaitGroup
		launched sync.WaitGroup
		errs     atomic.Int32
	)
	results := make([]Capability, callers)

	launched.Add(callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(slot int) {
			defer wg.Done()
			launched.Done()
			handle, err := reg.Capability(context.Background(), "alpha")
			if err != nil {
				errs.Add(1)
				return
			}
			results[slot] = handle
		}(i)
	}

	// Release the single in-flight build only after every caller started.
	launched.Wait()
	close(source.block)
	wg.Wait()

	assert.Zero(t, errs.Load())
	assert.Equal(t, 1, source.callCount("alpha"), "all callers must share one construction")
	for _, handle := range results {
		assert.Same(t, results[0], handle)
	}
}

func TestCapabilityFailureIsNotCached(t *testing.T) {
	source := newCountingSource()
	source.failures["alpha"] = 1
	reg := newTestRegistry(t, source, "alpha")
	ctx := context.Background()

	_, err := reg.Capability(ctx, "alpha")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)

	handle, err := reg.Capability(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", handle.ClusterName())
	assert.Equal(t, 2, source.callCount("alpha"), "failed build must be retried")
}

func TestCapabilitiesAreIndependentPerCluster(t *testing.T) {
	source := newCountingSource()
	reg := newTestRegistry(t, source, "alpha", "beta")
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "alpha", "beta"} {
		handle, err := reg.Capability(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, handle.ClusterName())
	}

	assert.Equal(t, 1, source.callCount("alpha"))
	assert.Equal(t, 1, source.callCount("beta"))
}

func TestSelectorString(t *testing.T) {
	assert.Equal(t, "all", All().String())
	assert.Equal(t, "alpha", Names("alpha").String())
	assert.Equal(t, "alpha,beta", Names("alpha", "beta").String())
}

func TestContextNamespaceDefault(t *testing.T) {
	assert.Equal(t, "default", Context{Name: "a"}.Namespace())
	assert.Equal(t, "kube-system", Context{Name: "a", DefaultNamespace: "kube-system"}.Namespace())
}

// errSource always fails with a plain error to check wrapping behavior.
type errSource struct{}

func (errSource) Connect(context.Context, Context) (Capability, error) {
	return nil, errors.New("boom")
}

// deadlineSensitiveSource fails when the context it receives is already
// cancelled, the way a real connection attempt would.
type deadlineSensitiveSource struct{}

func (deadlineSensitiveSource) Connect(ctx context.Context, cc Context) (Capability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &fakeCapability{name: cc.Name}, nil
}

func TestCapabilityBuildIndependentOfCallerCancellation(t *testing.T) {
	reg := newTestRegistry(t, deadlineSensitiveSource{}, "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handle, err := reg.Capability(ctx, "alpha")
	require.NoError(t, err, "a cancelled caller must not poison the shared build")
	assert.Equal(t, "alpha", handle.ClusterName())
}

func TestCapabilityPropagatesSourceError(t *testing.T) {
	reg := newTestRegistry(t, errSource{}, "alpha")

	_, err := reg.Capability(context.Background(), "alpha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRegistryList(t *testing.T) {
	reg := newTestRegistry(t, newCountingSource())
	for i := 0; i < 5; i++ {
		require.NoError(t, reg.Register(Context{Name: fmt.Sprintf("cluster-%d", i)}))
	}

	listed := reg.List()
	require.Len(t, listed, 5)
	for i, cc := range listed {
		assert.Equal(t, fmt.Sprintf("cluster-%d", i), cc.Name)
	}
	assert.Equal(t, 5, reg.Len())
}
