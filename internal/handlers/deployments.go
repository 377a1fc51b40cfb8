package handlers

import (
	"context"
	"fmt"
	"math"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// DeploymentSummary is the list-item shape returned for deployments.
type DeploymentSummary struct {
	Name          string `json:"name"`
	Namespace     string `json:"namespace"`
	Replicas      int32  `json:"replicas"`
	ReadyReplicas int32  `json:"readyReplicas"`
	Available     int32  `json:"availableReplicas"`
	Image         string `json:"image,omitempty"`
}

// ScaleResult reports the outcome of a scale verb.
type ScaleResult struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Replicas  int32  `json:"replicas"`
}

// scaleTarget narrows the requested replica count to the int32 the scale
// subresource accepts. Values outside [0, MaxInt32] would silently wrap in a
// plain conversion, so they are rejected up front.
func scaleTarget(kind string, replicas int64) (int32, error) {
	if replicas < 0 || replicas > math.MaxInt32 {
		return 0, &ValidationError{
			Kind:   kind,
			Reason: fmt.Sprintf("replicas must be between 0 and %d, got %d", math.MaxInt32, replicas),
		}
	}
	return int32(replicas), nil
}

// DeploymentHandler implements the deployment verb set plus scaling.
type DeploymentHandler struct{}

// NewDeploymentHandler creates the deployments handler.
func NewDeploymentHandler() *DeploymentHandler {
	return &DeploymentHandler{}
}

// Kind implements Handler.
func (h *DeploymentHandler) Kind() string {
	return toolreg.KindDeployments
}

// List implements Handler.
func (h *DeploymentHandler) List(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	deployments, err := cap.Clientset().AppsV1().Deployments(req.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: req.Filters.LabelSelector,
		FieldSelector: req.Filters.FieldSelector,
	})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, "")
	}

	summaries := make([]DeploymentSummary, 0, len(deployments.Items))
	for i := range deployments.Items {
		summaries = append(summaries, summarizeDeployment(&deployments.Items[i]))
	}
	return summaries, nil
}

// Get implements Handler.
func (h *DeploymentHandler) Get(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	deployment, err := cap.Clientset().AppsV1().Deployments(req.Namespace).Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return summarizeDeployment(deployment), nil
}

// Create implements Handler.
func (h *DeploymentHandler) Create(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	var deployment appsv1.Deployment
	if err := decodeManifest(req.Manifest, &deployment); err != nil {
		return nil, &ValidationError{Kind: h.Kind(), Reason: err.Error(), Err: err}
	}

	created, err := cap.Clientset().AppsV1().Deployments(req.Namespace).Create(ctx, &deployment, metav1.CreateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, deployment.Name)
	}
	return summarizeDeployment(created), nil
}

// Update implements Handler.
func (h *DeploymentHandler) Update(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	var deployment appsv1.Deployment
	if err := decodeManifest(req.Manifest, &deployment); err != nil {
		return nil, &ValidationError{Kind: h.Kind(), Reason: err.Error(), Err: err}
	}

	updated, err := cap.Clientset().AppsV1().Deployments(req.Namespace).Update(ctx, &deployment, metav1.UpdateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, deployment.Name)
	}
	return summarizeDeployment(updated), nil
}

// Delete implements Handler.
func (h *DeploymentHandler) Delete(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	err := cap.Clientset().AppsV1().Deployments(req.Namespace).Delete(ctx, req.Name, metav1.DeleteOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return deletedPayload(h.Kind(), req.Namespace, req.Name), nil
}

// Scale implements Scaler via the scale subresource.
func (h *DeploymentHandler) Scale(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	replicas, err := scaleTarget(h.Kind(), req.Replicas)
	if err != nil {
		return nil, err
	}
	scale := &autoscalingv1.Scale{
		ObjectMeta: metav1.ObjectMeta{Name: req.Name, Namespace: req.Namespace},
		Spec:       autoscalingv1.ScaleSpec{Replicas: replicas},
	}

	updated, err := cap.Clientset().AppsV1().Deployments(req.Namespace).UpdateScale(ctx, req.Name, scale, metav1.UpdateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return ScaleResult{Name: req.Name, Namespace: req.Namespace, Replicas: updated.Spec.Replicas}, nil
}

func summarizeDeployment(d *appsv1.Deployment) DeploymentSummary {
	summary := DeploymentSummary{
		Name:          d.Name,
		Namespace:     d.Namespace,
		ReadyReplicas: d.Status.ReadyReplicas,
		Available:     d.Status.AvailableReplicas,
	}
	if d.Spec.Replicas != nil {
		summary.Replicas = *d.Spec.Replicas
	}
	if containers := d.Spec.Template.Spec.Containers; len(containers) > 0 {
		summary.Image = containers[0].Image
	}
	return summary
}
