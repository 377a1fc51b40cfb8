package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

func testPod(namespace, name string, phase corev1.PodPhase) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{"app": name},
		},
		Spec: corev1.PodSpec{
			NodeName: "node-1",
			Containers: []corev1.Container{
				{Name: "main", Image: "nginx:1.27"},
			},
		},
		Status: corev1.PodStatus{
			Phase: phase,
			ContainerStatuses: []corev1.ContainerStatus{
				{Name: "main", Image: "nginx:1.27", Ready: phase == corev1.PodRunning, RestartCount: 2},
			},
		},
	}
}

func TestPodList(t *testing.T) {
	cap := newFakeCapability("alpha",
		testPod("prod", "web-0", corev1.PodRunning),
		testPod("prod", "web-1", corev1.PodPending),
		testPod("staging", "api-0", corev1.PodRunning),
	)
	h := NewPodHandler()

	payload, err := h.List(context.Background(), cap, Request{Namespace: "prod"})
	require.NoError(t, err)

	summaries, ok := payload.([]PodSummary)
	require.True(t, ok)
	require.Len(t, summaries, 2)
	assert.Equal(t, "web-0", summaries[0].Name)
	assert.Equal(t, "Running", summaries[0].Phase)
	assert.Equal(t, "1/1", summaries[0].Ready)
	assert.Equal(t, int32(2), summaries[0].Restarts)
	assert.Equal(t, "0/1", summaries[1].Ready)
}

func TestPodGet(t *testing.T) {
	cap := newFakeCapability("alpha", testPod("prod", "web-0", corev1.PodRunning))
	h := NewPodHandler()

	payload, err := h.Get(context.Background(), cap, Request{Namespace: "prod", Name: "web-0"})
	require.NoError(t, err)

	detail, ok := payload.(PodDetail)
	require.True(t, ok)
	assert.Equal(t, "web-0", detail.Name)
	assert.Equal(t, "node-1", detail.NodeName)
	require.Len(t, detail.Containers, 1)
	assert.Equal(t, "nginx:1.27", detail.Containers[0].Image)
}

func TestPodGetNotFound(t *testing.T) {
	cap := newFakeCapability("alpha")
	h := NewPodHandler()

	_, err := h.Get(context.Background(), cap, Request{Namespace: "prod", Name: "absent"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "absent", nfe.Name)
	assert.Equal(t, "prod", nfe.Namespace)
}

func TestPodCreateAndDelete(t *testing.T) {
	cap := newFakeCapability("alpha")
	h := NewPodHandler()
	ctx := context.Background()

	manifest := map[string]any{
		"apiVersion": "v1",
		"kind":       "Pod",
		"metadata":   map[string]any{"name": "web-0", "namespace": "prod"},
		"spec": map[string]any{
			"containers": []any{
				map[string]any{"name": "main", "image": "nginx:1.27"},
			},
		},
	}

	payload, err := h.Create(ctx, cap, Request{Namespace: "prod", Manifest: manifest})
	require.NoError(t, err)
	assert.Equal(t, "web-0", payload.(PodSummary).Name)

	_, err = h.Get(ctx, cap, Request{Namespace: "prod", Name: "web-0"})
	require.NoError(t, err)

	deleted, err := h.Delete(ctx, cap, Request{Namespace: "prod", Name: "web-0"})
	require.NoError(t, err)
	assert.Equal(t, "true", deleted.(map[string]string)["deleted"])

	_, err = h.Get(ctx, cap, Request{Namespace: "prod", Name: "web-0"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPodCreateRejectsBadManifest(t *testing.T) {
	cap := newFakeCapability("alpha")
	h := NewPodHandler()

	_, err := h.Create(context.Background(), cap, Request{Namespace: "prod", Manifest: nil})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPodLogs(t *testing.T) {
	cap := newFakeCapability("alpha", testPod("prod", "web-0", corev1.PodRunning))
	h := NewPodHandler()

	payload, err := h.Logs(context.Background(), cap, Request{
		Namespace: "prod",
		Name:      "web-0",
		TailLines: 50,
	})
	require.NoError(t, err)

	logs, ok := payload.(PodLogs)
	require.True(t, ok)
	assert.Equal(t, "web-0", logs.Name)
	// The fake clientset serves a fixed body; only presence matters here.
	assert.NotEmpty(t, logs.Logs)
}

func TestExecuteRoutesExtensionVerbs(t *testing.T) {
	set := DefaultSet()
	cap := newFakeCapability("alpha", testPod("prod", "web-0", corev1.PodRunning))

	payload, err := set.Execute(context.Background(), cap, toolreg.KindPods, toolreg.VerbLogs, Request{
		Namespace: "prod",
		Name:      "web-0",
	})
	require.NoError(t, err)
	assert.IsType(t, PodLogs{}, payload)

	// Services have no logs verb.
	_, err = set.Execute(context.Background(), cap, toolreg.KindServices, toolreg.VerbLogs, Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}
