package cluster

import (
	"context"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// CredentialSource turns a cluster context into an authenticated Capability.
// The registry calls Connect at most once per cluster name; implementations
// do not need to cache.
type CredentialSource interface {
	Connect(ctx context.Context, cc Context) (Capability, error)
}

// KubeconfigSource builds capabilities from kubeconfig files on disk. The
// zero value uses the standard kubeconfig discovery chain (KUBECONFIG, then
// ~/.kube/config).
type KubeconfigSource struct {
	// DefaultPath is the kubeconfig file used when a cluster context does
	// not name its own. Empty means the standard discovery chain.
	DefaultPath string

	// QPS and Burst bound client-side request rates per cluster. Zero
	// keeps client-go defaults.
	QPS   float32
	Burst int
}

// Connect implements CredentialSource.
func (s *KubeconfigSource) Connect(_ context.Context, cc Context) (Capability, error) {
	cfg, err := s.restConfig(cc)
	if err != nil {
		return nil, &AuthenticationError{
			ClusterName: cc.Name,
			Reason:      "loading kubeconfig",
			Err:         err,
		}
	}

	if s.QPS > 0 {
		cfg.QPS = s.QPS
	}
	if s.Burst > 0 {
		cfg.Burst = s.Burst
	}

	handle, err := newCapability(cc.Name, cfg)
	if err != nil {
		return nil, &AuthenticationError{
			ClusterName: cc.Name,
			Reason:      "building clients",
			Err:         err,
		}
	}
	return handle, nil
}

// restConfig loads the rest config for one cluster context, honoring the
// per-cluster kubeconfig path and context name overrides.
func (s *KubeconfigSource) restConfig(cc Context) (*rest.Config, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path := cc.Kubeconfig; path != "" {
		rules.ExplicitPath = path
	} else if s.DefaultPath != "" {
		rules.ExplicitPath = s.DefaultPath
	}

	overrides := &clientcmd.ConfigOverrides{}
	if cc.KubeContext != "" {
		overrides.CurrentContext = cc.KubeContext
	}

	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
}
