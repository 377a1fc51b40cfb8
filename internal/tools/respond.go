package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubefleet/mcp-fleet/internal/dispatch"
)

// renderResponse turns an aggregated dispatch response into an MCP tool
// result. The JSON body always carries the per-cluster breakdown; a dispatch
// where every cluster failed is additionally flagged as a tool error so
// clients do not have to inspect the status field to notice.
func renderResponse(resp *dispatch.AggregatedResponse) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding dispatch response: %w", err)
	}

	if resp.Status == dispatch.StatusFailure && len(resp.Results) > 0 {
		return mcp.NewToolResultError(string(body)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

// renderDispatchError reports a dispatch that was rejected before any cluster
// was contacted, such as an unknown tool, a bad argument, or an unknown
// cluster name in the selector.
func renderDispatchError(err error) *mcp.CallToolResult {
	detail := struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}{
		Kind:    dispatch.KindOf(err),
		Message: err.Error(),
	}

	body, marshalErr := json.Marshal(detail)
	if marshalErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(body))
}
