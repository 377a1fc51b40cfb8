package handlers

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// ReplicaSetSummary is the list-item shape returned for replicasets.
type ReplicaSetSummary struct {
	Name          string `json:"name"`
	Namespace     string `json:"namespace"`
	Replicas      int32  `json:"replicas"`
	ReadyReplicas int32  `json:"readyReplicas"`
	Owner         string `json:"owner,omitempty"`
}

// ReplicaSetHandler implements the replicaset verb set plus scaling.
type ReplicaSetHandler struct{}

// NewReplicaSetHandler creates the replicasets handler.
func NewReplicaSetHandler() *ReplicaSetHandler {
	return &ReplicaSetHandler{}
}

// Kind implements Handler.
func (h *ReplicaSetHandler) Kind() string {
	return toolreg.KindReplicaSets
}

// List implements Handler.
func (h *ReplicaSetHandler) List(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	sets, err := cap.Clientset().AppsV1().ReplicaSets(req.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: req.Filters.LabelSelector,
		FieldSelector: req.Filters.FieldSelector,
	})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, "")
	}

	summaries := make([]ReplicaSetSummary, 0, len(sets.Items))
	for i := range sets.Items {
		summaries = append(summaries, summarizeReplicaSet(&sets.Items[i]))
	}
	return summaries, nil
}

// Get implements Handler.
func (h *ReplicaSetHandler) Get(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	set, err := cap.Clientset().AppsV1().ReplicaSets(req.Namespace).Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return summarizeReplicaSet(set), nil
}

// Create implements Handler.
func (h *ReplicaSetHandler) Create(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	var set appsv1.ReplicaSet
	if err := decodeManifest(req.Manifest, &set); err != nil {
		return nil, &ValidationError{Kind: h.Kind(), Reason: err.Error(), Err: err}
	}

	created, err := cap.Clientset().AppsV1().ReplicaSets(req.Namespace).Create(ctx, &set, metav1.CreateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, set.Name)
	}
	return summarizeReplicaSet(created), nil
}

// Update implements Handler.
func (h *ReplicaSetHandler) Update(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	var set appsv1.ReplicaSet
	if err := decodeManifest(req.Manifest, &set); err != nil {
		return nil, &ValidationError{Kind: h.Kind(), Reason: err.Error(), Err: err}
	}

	updated, err := cap.Clientset().AppsV1().ReplicaSets(req.Namespace).Update(ctx, &set, metav1.UpdateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, set.Name)
	}
	return summarizeReplicaSet(updated), nil
}

// Delete implements Handler.
func (h *ReplicaSetHandler) Delete(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	err := cap.Clientset().AppsV1().ReplicaSets(req.Namespace).Delete(ctx, req.Name, metav1.DeleteOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return deletedPayload(h.Kind(), req.Namespace, req.Name), nil
}

// Scale implements Scaler via the scale subresource.
func (h *ReplicaSetHandler) Scale(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	replicas, err := scaleTarget(h.Kind(), req.Replicas)
	if err != nil {
		return nil, err
	}
	scale := &autoscalingv1.Scale{
		ObjectMeta: metav1.ObjectMeta{Name: req.Name, Namespace: req.Namespace},
		Spec:       autoscalingv1.ScaleSpec{Replicas: replicas},
	}

	updated, err := cap.Clientset().AppsV1().ReplicaSets(req.Namespace).UpdateScale(ctx, req.Name, scale, metav1.UpdateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return ScaleResult{Name: req.Name, Namespace: req.Namespace, Replicas: updated.Spec.Replicas}, nil
}

func summarizeReplicaSet(set *appsv1.ReplicaSet) ReplicaSetSummary {
	summary := ReplicaSetSummary{
		Name:          set.Name,
		Namespace:     set.Namespace,
		ReadyReplicas: set.Status.ReadyReplicas,
	}
	if set.Spec.Replicas != nil {
		summary.Replicas = *set.Spec.Replicas
	}
	if owners := set.OwnerReferences; len(owners) > 0 {
		summary.Owner = owners[0].Kind + "/" + owners[0].Name
	}
	return summary
}
