package handlers

import (
	"context"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// ConfigMapSummary is the list-item shape returned for configmaps. Only key
// names are listed so large payloads stay out of list responses.
type ConfigMapSummary struct {
	Name      string   `json:"name"`
	Namespace string   `json:"namespace"`
	Keys      []string `json:"keys,omitempty"`
}

// ConfigMapDetail is the full shape returned by get.
type ConfigMapDetail struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Data      map[string]string `json:"data,omitempty"`
}

// ConfigMapHandler exposes configmaps read-only. Mutating verbs yield
// UnsupportedOperationError via the embedded default.
type ConfigMapHandler struct {
	unsupported
}

// NewConfigMapHandler creates the configmaps handler.
func NewConfigMapHandler() *ConfigMapHandler {
	return &ConfigMapHandler{unsupported{kind: toolreg.KindConfigMaps}}
}

// Kind implements Handler.
func (h *ConfigMapHandler) Kind() string {
	return toolreg.KindConfigMaps
}

// List implements Handler.
func (h *ConfigMapHandler) List(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	configMaps, err := cap.Clientset().CoreV1().ConfigMaps(req.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: req.Filters.LabelSelector,
		FieldSelector: req.Filters.FieldSelector,
	})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, "")
	}

	summaries := make([]ConfigMapSummary, 0, len(configMaps.Items))
	for i := range configMaps.Items {
		summaries = append(summaries, summarizeConfigMap(&configMaps.Items[i]))
	}
	return summaries, nil
}

// Get implements Handler.
func (h *ConfigMapHandler) Get(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	configMap, err := cap.Clientset().CoreV1().ConfigMaps(req.Namespace).Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return ConfigMapDetail{
		Name:      configMap.Name,
		Namespace: configMap.Namespace,
		Data:      configMap.Data,
	}, nil
}

func summarizeConfigMap(cm *corev1.ConfigMap) ConfigMapSummary {
	summary := ConfigMapSummary{Name: cm.Name, Namespace: cm.Namespace}
	for key := range cm.Data {
		summary.Keys = append(summary.Keys, key)
	}
	sort.Strings(summary.Keys)
	return summary
}
