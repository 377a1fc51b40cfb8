package dispatch

import (
	"strings"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/handlers"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// Invocation is one validated-on-entry tool call: the tool to run, its raw
// arguments, and the clusters to run it on. Invocations are per-request and
// consumed by exactly one Dispatch call.
type Invocation struct {
	Tool     string
	Args     map[string]any
	Selector cluster.Selector
}

// ParseSelector interprets the wire form of the clusters argument: empty or
// "all" targets the whole fleet, otherwise a comma-separated name list.
func ParseSelector(raw string) cluster.Selector {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "all" {
		return cluster.All()
	}

	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return cluster.All()
	}
	return cluster.Names(names...)
}

// buildRequest maps validated arguments onto a handler request. The
// namespace falls back to the target cluster's configured default.
func buildRequest(args map[string]any, cc cluster.Context) handlers.Request {
	req := handlers.Request{Namespace: cc.Namespace()}

	if ns, ok := args[toolreg.ParamNamespace].(string); ok && ns != "" {
		req.Namespace = ns
	}
	if name, ok := args[toolreg.ParamName].(string); ok {
		req.Name = name
	}
	if manifest, ok := args[toolreg.ParamManifest].(map[string]any); ok {
		req.Manifest = manifest
	}
	if replicas, ok := args[toolreg.ParamReplicas].(int64); ok {
		req.Replicas = replicas
	}
	if container, ok := args[toolreg.ParamContainer].(string); ok {
		req.Container = container
	}
	if tail, ok := args[toolreg.ParamTailLines].(int64); ok {
		req.TailLines = tail
	}
	if label, ok := args[toolreg.ParamLabelSelector].(string); ok {
		req.Filters.LabelSelector = label
	}
	if field, ok := args[toolreg.ParamFieldSelector].(string); ok {
		req.Filters.FieldSelector = field
	}

	return req
}
