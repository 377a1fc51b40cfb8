package handlers

import (
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// PodSummary is the list-item shape returned for pods.
type PodSummary struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Phase     string `json:"phase"`
	NodeName  string `json:"nodeName,omitempty"`
	Ready     string `json:"ready"`
	Restarts  int32  `json:"restarts"`
}

// PodDetail is the get shape returned for a single pod.
type PodDetail struct {
	Name       string            `json:"name"`
	Namespace  string            `json:"namespace"`
	Phase      string            `json:"phase"`
	NodeName   string            `json:"nodeName,omitempty"`
	PodIP      string            `json:"podIP,omitempty"`
	HostIP     string            `json:"hostIP,omitempty"`
	StartTime  *metav1.Time      `json:"startTime,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
	Containers []ContainerStatus `json:"containers"`
}

// ContainerStatus summarizes one container of a pod.
type ContainerStatus struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	Ready    bool   `json:"ready"`
	Restarts int32  `json:"restarts"`
}

// PodLogs is the payload returned by the logs verb.
type PodLogs struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Container string `json:"container,omitempty"`
	Logs      string `json:"logs"`
}

// PodHandler implements the pod verb set plus log retrieval.
type PodHandler struct{}

// NewPodHandler creates the pods handler.
func NewPodHandler() *PodHandler {
	return &PodHandler{}
}

// Kind implements Handler.
func (h *PodHandler) Kind() string {
	return toolreg.KindPods
}

// List implements Handler.
func (h *PodHandler) List(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	pods, err := cap.Clientset().CoreV1().Pods(req.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: req.Filters.LabelSelector,
		FieldSelector: req.Filters.FieldSelector,
	})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, "")
	}

	summaries := make([]PodSummary, 0, len(pods.Items))
	for i := range pods.Items {
		summaries = append(summaries, summarizePod(&pods.Items[i]))
	}
	return summaries, nil
}

// Get implements Handler.
func (h *PodHandler) Get(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	pod, err := cap.Clientset().CoreV1().Pods(req.Namespace).Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return detailPod(pod), nil
}

// Create implements Handler.
func (h *PodHandler) Create(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	var pod corev1.Pod
	if err := decodeManifest(req.Manifest, &pod); err != nil {
		return nil, &ValidationError{Kind: h.Kind(), Reason: err.Error(), Err: err}
	}

	created, err := cap.Clientset().CoreV1().Pods(req.Namespace).Create(ctx, &pod, metav1.CreateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, pod.Name)
	}
	return summarizePod(created), nil
}

// Update implements Handler.
func (h *PodHandler) Update(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	var pod corev1.Pod
	if err := decodeManifest(req.Manifest, &pod); err != nil {
		return nil, &ValidationError{Kind: h.Kind(), Reason: err.Error(), Err: err}
	}

	updated, err := cap.Clientset().CoreV1().Pods(req.Namespace).Update(ctx, &pod, metav1.UpdateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, pod.Name)
	}
	return summarizePod(updated), nil
}

// Delete implements Handler.
func (h *PodHandler) Delete(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	err := cap.Clientset().CoreV1().Pods(req.Namespace).Delete(ctx, req.Name, metav1.DeleteOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return deletedPayload(h.Kind(), req.Namespace, req.Name), nil
}

// Logs implements LogSource.
func (h *PodHandler) Logs(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	opts := &corev1.PodLogOptions{Container: req.Container}
	if req.TailLines > 0 {
		tail := req.TailLines
		opts.TailLines = &tail
	}

	stream, err := cap.Clientset().CoreV1().Pods(req.Namespace).GetLogs(req.Name, opts).Stream(ctx)
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}

	return PodLogs{
		Name:      req.Name,
		Namespace: req.Namespace,
		Container: req.Container,
		Logs:      string(data),
	}, nil
}

func summarizePod(pod *corev1.Pod) PodSummary {
	ready := 0
	var restarts int32
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
		restarts += cs.RestartCount
	}
	return PodSummary{
		Name:      pod.Name,
		Namespace: pod.Namespace,
		Phase:     string(pod.Status.Phase),
		NodeName:  pod.Spec.NodeName,
		Ready:     fmt.Sprintf("%d/%d", ready, len(pod.Spec.Containers)),
		Restarts:  restarts,
	}
}

func detailPod(pod *corev1.Pod) PodDetail {
	containers := make([]ContainerStatus, 0, len(pod.Status.ContainerStatuses))
	for _, cs := range pod.Status.ContainerStatuses {
		containers = append(containers, ContainerStatus{
			Name:     cs.Name,
			Image:    cs.Image,
			Ready:    cs.Ready,
			Restarts: cs.RestartCount,
		})
	}
	return PodDetail{
		Name:       pod.Name,
		Namespace:  pod.Namespace,
		Phase:      string(pod.Status.Phase),
		NodeName:   pod.Spec.NodeName,
		PodIP:      pod.Status.PodIP,
		HostIP:     pod.Status.HostIP,
		StartTime:  pod.Status.StartTime,
		Labels:     pod.Labels,
		Containers: containers,
	}
}

// decodeManifest converts a JSON-decoded manifest into a typed object,
// rejecting fields the type does not declare.
func decodeManifest(manifest map[string]any, into runtime.Object) error {
	if len(manifest) == 0 {
		return fmt.Errorf("manifest is empty")
	}
	return runtime.DefaultUnstructuredConverter.FromUnstructured(manifest, into)
}

// deletedPayload is the uniform success payload for delete verbs.
func deletedPayload(kind, namespace, name string) map[string]string {
	payload := map[string]string{
		"kind":    kind,
		"name":    name,
		"deleted": "true",
	}
	if namespace != "" {
		payload["namespace"] = namespace
	}
	return payload
}
