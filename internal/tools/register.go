// Package tools binds the tool catalog to the MCP server and routes
// invocations into the dispatch engine.
package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kubefleet/mcp-fleet/internal/dispatch"
	"github.com/kubefleet/mcp-fleet/internal/instrumentation"
	"github.com/kubefleet/mcp-fleet/internal/server"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// RegisterTools exposes every tool in the registry on the MCP server. Each
// tool's schema is derived from its descriptor, so the MCP surface and the
// validation layer cannot drift apart.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	for _, descriptor := range sc.Tools().List() {
		tool, err := buildTool(descriptor)
		if err != nil {
			return fmt.Errorf("building tool %q: %w", descriptor.Name, err)
		}

		d := descriptor
		s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleInvocation(ctx, request, sc, d)
		})
	}
	return nil
}

// buildTool converts a descriptor into an MCP tool definition.
func buildTool(d toolreg.Descriptor) (mcp.Tool, error) {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}

	for _, p := range d.Params {
		var propOpts []mcp.PropertyOption
		propOpts = append(propOpts, mcp.Description(p.Description))
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		if len(p.Enum) > 0 {
			propOpts = append(propOpts, mcp.Enum(p.Enum...))
		}

		switch p.Type {
		case toolreg.TypeString:
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		case toolreg.TypeInt:
			opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
		case toolreg.TypeBool:
			opts = append(opts, mcp.WithBoolean(p.Name, propOpts...))
		case toolreg.TypeObject:
			opts = append(opts, mcp.WithObject(p.Name, propOpts...))
		default:
			return mcp.Tool{}, fmt.Errorf("parameter %q has unknown type %q", p.Name, p.Type)
		}
	}

	return mcp.NewTool(d.Name, opts...), nil
}

// handleInvocation runs one tool call: safety check, selector parsing, then
// fan-out through the dispatch engine.
func handleInvocation(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, d toolreg.Descriptor) (*mcp.CallToolResult, error) {
	if result := CheckMutatingTool(sc, d); result != nil {
		return result, nil
	}

	args := request.GetArguments()
	if args == nil {
		args = map[string]any{}
	}

	// The clusters argument addresses the fleet, not the resource operation.
	// It stays in the argument map so validation type-checks it like any
	// other declared parameter.
	rawSelector, _ := args[toolreg.ParamClusters].(string)

	inv := dispatch.Invocation{
		Tool:     d.Name,
		Args:     args,
		Selector: dispatch.ParseSelector(rawSelector),
	}

	ctx, span := instrumentation.StartToolSpan(ctx, d.Name,
		attribute.String(instrumentation.SpanAttrSelector, inv.Selector.String()),
	)
	defer span.End()

	resp, err := sc.Engine().Dispatch(ctx, inv)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return renderDispatchError(err), nil
	}

	span.SetAttributes(attribute.String(instrumentation.SpanAttrStatus, string(resp.Status)))
	instrumentation.SetSpanSuccess(span)
	return renderResponse(resp)
}
