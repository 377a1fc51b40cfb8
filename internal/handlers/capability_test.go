package handlers

import (
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
)

// fakeCapability backs handler tests with a fake clientset.
type fakeCapability struct {
	name      string
	clientset *fake.Clientset
}

func newFakeCapability(name string, objects ...runtime.Object) *fakeCapability {
	return &fakeCapability{
		name:      name,
		clientset: fake.NewSimpleClientset(objects...),
	}
}

func (f *fakeCapability) ClusterName() string                     { return f.name }
func (f *fakeCapability) Clientset() kubernetes.Interface         { return f.clientset }
func (f *fakeCapability) Dynamic() dynamic.Interface              { return nil }
func (f *fakeCapability) Discovery() discovery.DiscoveryInterface { return f.clientset.Discovery() }
func (f *fakeCapability) RESTConfig() *rest.Config                { return nil }

var _ cluster.Capability = (*fakeCapability)(nil)
