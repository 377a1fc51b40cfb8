package cluster

import (
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Capability is an authenticated handle to one cluster. Instances are built
// lazily by the registry and cached for the lifetime of the process, so
// implementations must be safe for concurrent use.
type Capability interface {
	// ClusterName returns the registry name this handle was built for.
	ClusterName() string

	// Clientset returns the typed Kubernetes client.
	Clientset() kubernetes.Interface

	// Dynamic returns the dynamic client for unstructured access.
	Dynamic() dynamic.Interface

	// Discovery returns the discovery client for API surface queries.
	Discovery() discovery.DiscoveryInterface

	// RESTConfig returns the rest config the clients were built from.
	RESTConfig() *rest.Config
}

// capability is the production Capability built from a rest.Config.
type capability struct {
	name       string
	clientset  kubernetes.Interface
	dynamic    dynamic.Interface
	discovery  discovery.DiscoveryInterface
	restConfig *rest.Config
}

// newCapability builds all client flavors from one rest config. Any client
// construction failure is surfaced as an AuthenticationError by the caller.
func newCapability(name string, cfg *rest.Config) (*capability, error) {
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}

	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}

	disc, err := discovery.NewDiscoveryClientForConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &capability{
		name:       name,
		clientset:  clientset,
		dynamic:    dyn,
		discovery:  disc,
		restConfig: cfg,
	}, nil
}

func (c *capability) ClusterName() string                     { return c.name }
func (c *capability) Clientset() kubernetes.Interface         { return c.clientset }
func (c *capability) Dynamic() dynamic.Interface              { return c.dynamic }
func (c *capability) Discovery() discovery.DiscoveryInterface { return c.discovery }
func (c *capability) RESTConfig() *rest.Config                { return c.restConfig }
