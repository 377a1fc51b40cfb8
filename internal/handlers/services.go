package handlers

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// ServiceSummary is the list-item shape returned for services.
type ServiceSummary struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Type      string `json:"type"`
	ClusterIP string `json:"clusterIP,omitempty"`
	Ports     string `json:"ports,omitempty"`
}

// ServiceHandler implements the service verb set.
type ServiceHandler struct{}

// NewServiceHandler creates the services handler.
func NewServiceHandler() *ServiceHandler {
	return &ServiceHandler{}
}

// Kind implements Handler.
func (h *ServiceHandler) Kind() string {
	return toolreg.KindServices
}

// List implements Handler.
func (h *ServiceHandler) List(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	services, err := cap.Clientset().CoreV1().Services(req.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: req.Filters.LabelSelector,
		FieldSelector: req.Filters.FieldSelector,
	})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, "")
	}

	summaries := make([]ServiceSummary, 0, len(services.Items))
	for i := range services.Items {
		summaries = append(summaries, summarizeService(&services.Items[i]))
	}
	return summaries, nil
}

// Get implements Handler.
func (h *ServiceHandler) Get(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	service, err := cap.Clientset().CoreV1().Services(req.Namespace).Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return summarizeService(service), nil
}

// Create implements Handler.
func (h *ServiceHandler) Create(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	var service corev1.Service
	if err := decodeManifest(req.Manifest, &service); err != nil {
		return nil, &ValidationError{Kind: h.Kind(), Reason: err.Error(), Err: err}
	}

	created, err := cap.Clientset().CoreV1().Services(req.Namespace).Create(ctx, &service, metav1.CreateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, service.Name)
	}
	return summarizeService(created), nil
}

// Update implements Handler.
func (h *ServiceHandler) Update(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	var service corev1.Service
	if err := decodeManifest(req.Manifest, &service); err != nil {
		return nil, &ValidationError{Kind: h.Kind(), Reason: err.Error(), Err: err}
	}

	updated, err := cap.Clientset().CoreV1().Services(req.Namespace).Update(ctx, &service, metav1.UpdateOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, service.Name)
	}
	return summarizeService(updated), nil
}

// Delete implements Handler.
func (h *ServiceHandler) Delete(ctx context.Context, cap cluster.Capability, req Request) (any, error) {
	err := cap.Clientset().CoreV1().Services(req.Namespace).Delete(ctx, req.Name, metav1.DeleteOptions{})
	if err != nil {
		return nil, Classify(err, h.Kind(), req.Namespace, req.Name)
	}
	return deletedPayload(h.Kind(), req.Namespace, req.Name), nil
}

func summarizeService(svc *corev1.Service) ServiceSummary {
	ports := make([]string, 0, len(svc.Spec.Ports))
	for _, p := range svc.Spec.Ports {
		ports = append(ports, fmt.Sprintf("%d/%s", p.Port, p.Protocol))
	}
	return ServiceSummary{
		Name:      svc.Name,
		Namespace: svc.Namespace,
		Type:      string(svc.Spec.Type),
		ClusterIP: svc.Spec.ClusterIP,
		Ports:     strings.Join(ports, ","),
	}
}
