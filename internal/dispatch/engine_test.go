package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/handlers"
	"github.com/kubefleet/mcp-fleet/internal/instrumentation"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// The instrumentation metrics must satisfy the engine's recorder contract.
var _ MetricsRecorder = (*instrumentation.Metrics)(nil)

// stubCapability carries only its cluster name; stub handlers never touch
// the clients.
type stubCapability struct {
	name string
}

func (s *stubCapability) ClusterName() string                     { return s.name }
func (s *stubCapability) Clientset() kubernetes.Interface         { return nil }
func (s *stubCapability) Dynamic() dynamic.Interface              { return nil }
func (s *stubCapability) Discovery() discovery.DiscoveryInterface { return nil }
func (s *stubCapability) RESTConfig() *rest.Config                { return nil }

// spySource counts capability constructions per cluster.
type spySource struct {
	mu    sync.Mutex
	calls map[string]int
}

func newSpySource() *spySource {
	return &spySource{calls: make(map[string]int)}
}

func (s *spySource) Connect(_ context.Context, cc cluster.Context) (cluster.Capability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[cc.Name]++
	return &stubCapability{name: cc.Name}, nil
}

func (s *spySource) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// stubPodHandler answers the pods verb set from a per-cluster behavior map.
type stubPodHandler struct {
	behave func(ctx context.Context, clusterName string) (any, error)
}

func (h *stubPodHandler) Kind() string { return toolreg.KindPods }

func (h *stubPodHandler) run(ctx context.Context, cap cluster.Capability) (any, error) {
	return h.behave(ctx, cap.ClusterName())
}

func (h *stubPodHandler) List(ctx context.Context, cap cluster.Capability, _ handlers.Request) (any, error) {
	return h.run(ctx, cap)
}

func (h *stubPodHandler) Get(ctx context.Context, cap cluster.Capability, _ handlers.Request) (any, error) {
	return h.run(ctx, cap)
}

func (h *stubPodHandler) Create(ctx context.Context, cap cluster.Capability, _ handlers.Request) (any, error) {
	return h.run(ctx, cap)
}

func (h *stubPodHandler) Update(ctx context.Context, cap cluster.Capability, _ handlers.Request) (any, error) {
	return h.run(ctx, cap)
}

func (h *stubPodHandler) Delete(ctx context.Context, cap cluster.Capability, _ handlers.Request) (any, error) {
	return h.run(ctx, cap)
}

func singleTry() handlers.RetryPolicy {
	return handlers.RetryPolicy{
		MaxTries:        1,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}
}

// newTestEngine wires a stub handler and spy source behind a real engine.
func newTestEngine(t *testing.T, behave func(ctx context.Context, clusterName string) (any, error), source cluster.CredentialSource, clusterNames []string, opts ...Option) *Engine {
	t.Helper()

	tools := toolreg.NewRegistry()
	require.NoError(t, toolreg.RegisterCatalog(tools))

	registry := cluster.NewRegistry(source)
	for _, name := range clusterNames {
		require.NoError(t, registry.Register(cluster.Context{Name: name}))
	}

	set := handlers.NewSet()
	set.Register(&stubPodHandler{behave: behave})

	opts = append([]Option{WithRetryPolicy(singleTry())}, opts...)
	return NewEngine(tools, registry, set, opts...)
}

func okBehavior(pods ...string) func(context.Context, string) (any, error) {
	return func(context.Context, string) (any, error) {
		return pods, nil
	}
}

func TestDispatchAllOnEmptyRegistryIsVacuousSuccess(t *testing.T) {
	source := newSpySource()
	engine := newTestEngine(t, okBehavior("pod1"), source, nil)

	resp, err := engine.Dispatch(context.Background(), Invocation{
		Tool:     "list_pods",
		Selector: cluster.All(),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Empty(t, resp.Results)
	assert.Zero(t, source.total(), "no cluster may be contacted")
}

func TestDispatchUnknownClusterAbortsBeforeContact(t *testing.T) {
	source := newSpySource()
	engine := newTestEngine(t, okBehavior("pod1"), source, []string{"a", "b"})

	_, err := engine.Dispatch(context.Background(), Invocation{
		Tool:     "list_pods",
		Selector: cluster.Names("a", "nope"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cluster.ErrUnknownCluster)
	assert.Zero(t, source.total(), "no capability call may happen on resolution failure")
}

func TestDispatchUnknownToolAbortsBeforeContact(t *testing.T) {
	source := newSpySource()
	engine := newTestEngine(t, okBehavior("pod1"), source, []string{"a", "b"})

	_, err := engine.Dispatch(context.Background(), Invocation{
		Tool:     "list_widgets",
		Selector: cluster.All(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, toolreg.ErrUnknownTool)
	assert.Zero(t, source.total())
}

func TestDispatchInvalidParameterAbortsBeforeContact(t *testing.T) {
	source := newSpySource()
	engine := newTestEngine(t, okBehavior("pod1"), source, []string{"a"})

	_, err := engine.Dispatch(context.Background(), Invocation{
		Tool:     "get_pod",
		Args:     map[string]any{"namespace": "prod"}, // name missing
		Selector: cluster.All(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, toolreg.ErrInvalidParameter)
	assert.Zero(t, source.total())
}

func TestResultOrderMatchesResolutionOrderUnderSkewedLatency(t *testing.T) {
	// b is listed first but answers much slower than a.
	behave := func(ctx context.Context, name string) (any, error) {
		if name == "b" {
			time.Sleep(150 * time.Millisecond)
		}
		return []string{"pod-" + name}, nil
	}
	engine := newTestEngine(t, behave, newSpySource(), []string{"a", "b"})

	resp, err := engine.Dispatch(context.Background(), Invocation{
		Tool:     "list_pods",
		Selector: cluster.Names("b", "a"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "b", resp.Results[0].Cluster)
	assert.Equal(t, "a", resp.Results[1].Cluster)
	assert.Equal(t, StatusSuccess, resp.Status)
}

func TestOverallStatusTruthTable(t *testing.T) {
	tests := []struct {
		name    string
		failing map[string]bool
		want    Status
	}{
		{name: "all succeed", failing: map[string]bool{}, want: StatusSuccess},
		{name: "one fails", failing: map[string]bool{"b": true}, want: StatusPartialFailure},
		{name: "all but one fail", failing: map[string]bool{"a": true, "b": true}, want: StatusPartialFailure},
		{name: "all fail", failing: map[string]bool{"a": true, "b": true, "c": true}, want: StatusFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			behave := func(_ context.Context, name string) (any, error) {
				if tt.failing[name] {
					return nil, &handlers.TransientError{Reason: "stubbed"}
				}
				return []string{"pod1"}, nil
			}
			engine := newTestEngine(t, behave, newSpySource(), []string{"a", "b", "c"})

			resp, err := engine.Dispatch(context.Background(), Invocation{
				Tool:     "list_pods",
				Selector: cluster.All(),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Results, 3)
		})
	}
}

func TestListPodsPartialFailureEndToEnd(t *testing.T) {
	behave := func(_ context.Context, name string) (any, error) {
		if name == "b" {
			return nil, &handlers.TransientError{Reason: "connection reset"}
		}
		return []string{"pod1", "pod2"}, nil
	}
	engine := newTestEngine(t, behave, newSpySource(), []string{"a", "b"})

	resp, err := engine.Dispatch(context.Background(), Invocation{
		Tool:     "list_pods",
		Selector: cluster.All(),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPartialFailure, resp.Status)
	require.Len(t, resp.Results, 2)

	a := resp.Results[0]
	assert.Equal(t, "a", a.Cluster)
	assert.True(t, a.OK)
	assert.Equal(t, []string{"pod1", "pod2"}, a.Payload)
	assert.Nil(t, a.Error)

	b := resp.Results[1]
	assert.Equal(t, "b", b.Cluster)
	assert.False(t, b.OK)
	require.NotNil(t, b.Error)
	assert.Equal(t, KindTransient, b.Error.Kind)
	assert.Nil(t, b.Payload)
}

func TestDeadlineYieldsTimeoutResult(t *testing.T) {
	behave := func(ctx context.Context, name string) (any, error) {
		if name != "slow" {
			return []string{"pod1"}, nil
		}
		select {
		case <-time.After(5 * time.Second):
			return []string{"late"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	engine := newTestEngine(t, behave, newSpySource(), []string{"fast", "slow"},
		WithTimeout(100*time.Millisecond))

	start := time.Now()
	resp, err := engine.Dispatch(context.Background(), Invocation{
		Tool:     "list_pods",
		Selector: cluster.All(),
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "dispatch must not hang on the slow cluster")

	assert.Equal(t, StatusPartialFailure, resp.Status)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].OK)

	slow := resp.Results[1]
	assert.Equal(t, "slow", slow.Cluster)
	assert.False(t, slow.OK)
	require.NotNil(t, slow.Error)
	assert.Equal(t, KindTimeout, slow.Error.Kind)
}

func TestConcurrentDispatchesShareOneCapabilityBuild(t *testing.T) {
	source := newSpySource()
	engine := newTestEngine(t, okBehavior("pod1"), source, []string{"a"})

	const dispatches = 25
	var wg sync.WaitGroup
	wg.Add(dispatches)
	for i := 0; i < dispatches; i++ {
		go func() {
			defer wg.Done()
			_, err := engine.Dispatch(context.Background(), Invocation{
				Tool:     "list_pods",
				Selector: cluster.All(),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, source.calls["a"], "capability construction must be single-flight")
}

func TestFanOutHonorsMaxInFlight(t *testing.T) {
	var inFlight, peak atomic.Int32
	behave := func(context.Context, string) (any, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return []string{"pod1"}, nil
	}

	names := make([]string, 12)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	engine := newTestEngine(t, behave, newSpySource(), names, WithMaxInFlight(3))

	resp, err := engine.Dispatch(context.Background(), Invocation{
		Tool:     "list_pods",
		Selector: cluster.All(),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestParseSelector(t *testing.T) {
	assert.True(t, ParseSelector("").IsAll())
	assert.True(t, ParseSelector("all").IsAll())
	assert.True(t, ParseSelector("  all  ").IsAll())
	assert.Equal(t, []string{"a"}, ParseSelector("a").List())
	assert.Equal(t, []string{"a", "b"}, ParseSelector("a, b").List())
	assert.True(t, ParseSelector(" , ").IsAll())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&handlers.NotFoundError{Kind: "pods", Name: "x"}, KindNotFound},
		{&handlers.ValidationError{Kind: "pods", Reason: "bad"}, KindValidation},
		{&handlers.TransientError{Reason: "busy"}, KindTransient},
		{&handlers.UnsupportedOperationError{Kind: "nodes", Verb: "delete"}, KindUnsupported},
		{&cluster.AuthenticationError{ClusterName: "a", Reason: "expired"}, KindAuthentication},
		{&cluster.UnknownClusterError{Name: "a"}, KindUnknownCluster},
		{&toolreg.UnknownToolError{Name: "t"}, KindUnknownTool},
		{&toolreg.InvalidParameterError{Tool: "t", Parameter: "p", Reason: "r"}, KindInvalidParam},
		{&TimeoutError{Cluster: "a"}, KindTimeout},
		{context.Canceled, KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err))
	}
}
