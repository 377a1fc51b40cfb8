package handlers

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// NodeSummary is the shape returned for nodes.
type NodeSummary struct {
	Name           string `json:"name"`
	Ready          bool   `json:"ready"`
	KubeletVersion string `json:"kubeletVersion,omitempty"`
	OSImage        string `json:"osImage,omitempty"`
	Unschedulable  bool   `json:"unschedulable,omitempty"`
}

// NodeHandler exposes nodes read-only. Mutating verbs yield
// UnsupportedOperationError via the embedded default.
type NodeHandler struct {
	unsupported
}

// NewNodeHandler creates the nodes handler.
func NewNodeHandler() *NodeHandler {
	return &NodeHandler{unsupported{kind: toolreg.KindNodes}}
}

// Kind implements Handler.
func (h *NodeHandler) Kind() string {
	return toolreg.KindNodes
}

// List implements Handler.
func (h *NodeHandler) List(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	nodes, err := cap.Clientset().CoreV1().Nodes().List(ctx, metav1.ListOptions{
		LabelSelector: req.Filters.LabelSelector,
		FieldSelector: req.Filters.FieldSelector,
	})
	if err != nil {
		return nil, Classify(err, h.Kind(), "", "")
	}

	summaries := make([]NodeSummary, 0, len(nodes.Items))
	for i := range nodes.Items {
		summaries = append(summaries, summarizeNode(&nodes.Items[i]))
	}
	return summaries, nil
}

// Get implements Handler.
func (h *NodeHandler) Get(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	node, err := cap.Clientset().CoreV1().Nodes().Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), "", req.Name)
	}
	return summarizeNode(node), nil
}

func summarizeNode(node *corev1.Node) NodeSummary {
	summary := NodeSummary{
		Name:           node.Name,
		KubeletVersion: node.Status.NodeInfo.KubeletVersion,
		OSImage:        node.Status.NodeInfo.OSImage,
		Unschedulable:  node.Spec.Unschedulable,
	}
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			summary.Ready = cond.Status == corev1.ConditionTrue
			break
		}
	}
	return summary
}
