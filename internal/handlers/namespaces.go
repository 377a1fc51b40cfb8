package handlers

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// NamespaceSummary is the shape returned for namespaces.
type NamespaceSummary struct {
	Name   string            `json:"name"`
	Phase  string            `json:"phase"`
	Labels map[string]string `json:"labels,omitempty"`
}

// NamespaceHandler exposes namespaces read-only. Mutating verbs yield
// UnsupportedOperationError via the embedded default.
type NamespaceHandler struct {
	unsupported
}

// NewNamespaceHandler creates the namespaces handler.
func NewNamespaceHandler() *NamespaceHandler {
	return &NamespaceHandler{unsupported{kind: toolreg.KindNamespaces}}
}

// Kind implements Handler.
func (h *NamespaceHandler) Kind() string {
	return toolreg.KindNamespaces
}

// List implements Handler.
func (h *NamespaceHandler) List(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	namespaces, err := cap.Clientset().CoreV1().Namespaces().List(ctx, metav1.ListOptions{
		LabelSelector: req.Filters.LabelSelector,
		FieldSelector: req.Filters.FieldSelector,
	})
	if err != nil {
		return nil, Classify(err, h.Kind(), "", "")
	}

	summaries := make([]NamespaceSummary, 0, len(namespaces.Items))
	for i := range namespaces.Items {
		summaries = append(summaries, summarizeNamespace(&namespaces.Items[i]))
	}
	return summaries, nil
}

// Get implements Handler.
func (h *NamespaceHandler) Get(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	namespace, err := cap.Clientset().CoreV1().Namespaces().Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), "", req.Name)
	}
	return summarizeNamespace(namespace), nil
}

func summarizeNamespace(ns *corev1.Namespace) NamespaceSummary {
	return NamespaceSummary{
		Name:   ns.Name,
		Phase:  string(ns.Status.Phase),
		Labels: ns.Labels,
	}
}
