package handlers

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// EventSummary is the shape returned for events. Object names the resource
// the event is about as kind/name.
type EventSummary struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Object    string `json:"object"`
	Message   string `json:"message"`
	Count     int32  `json:"count,omitempty"`
	LastSeen  string `json:"lastSeen,omitempty"`
}

// EventHandler exposes events read-only. Mutating verbs yield
// UnsupportedOperationError via the embedded default.
type EventHandler struct {
	unsupported
}

// NewEventHandler creates the events handler.
func NewEventHandler() *EventHandler {
	return &EventHandler{unsupported{kind: toolreg.KindEvents}}
}

// Kind implements Handler.
func (h *EventHandler) Kind() string {
	return toolreg.KindEvents
}

// List implements Handler.
func (h *EventHandler) List(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	events, err := cap.Clientset().CoreV1().Events(req.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: req.Filters.LabelSelector,
		FieldSelector: req.Filters.FieldSelector,
	})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, "")
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for i := range events.Items {
		summaries = append(summaries, summarizeEvent(&events.Items[i]))
	}
	return summaries, nil
}

// Get implements Handler.
func (h *EventHandler) Get(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	event, err := cap.Clientset().CoreV1().Events(req.Namespace).Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return summarizeEvent(event), nil
}

func summarizeEvent(ev *corev1.Event) EventSummary {
	summary := EventSummary{
		Name:      ev.Name,
		Namespace: ev.Namespace,
		Type:      ev.Type,
		Reason:    ev.Reason,
		Object:    ev.InvolvedObject.Kind + "/" + ev.InvolvedObject.Name,
		Message:   ev.Message,
		Count:     ev.Count,
	}
	if !ev.LastTimestamp.IsZero() {
		summary.LastSeen = ev.LastTimestamp.UTC().Format(time.RFC3339)
	}
	return summary
}
