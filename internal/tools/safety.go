package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kubefleet/mcp-fleet/internal/server"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
)

// CheckMutatingTool verifies that a tool which changes cluster state is
// allowed under the current server configuration. Returns an error result
// when blocked, nil when allowed.
//
// Tools are allowed if:
//   - the tool's verb does not mutate cluster state, OR
//   - NonDestructiveMode is disabled, OR
//   - the tool is explicitly listed in AllowedMutatingTools
func CheckMutatingTool(sc *server.ServerContext, d toolreg.Descriptor) *mcp.CallToolResult {
	if !d.Verb.Mutating() {
		return nil
	}
	if sc.Config().MutatingToolAllowed(d.Name) {
		return nil
	}

	return mcp.NewToolResultError(fmt.Sprintf(
		"%s operations are not allowed in non-destructive mode (allow %q explicitly or disable non-destructive mode)",
		cases.Title(language.English).String(string(d.Verb)),
		d.Name,
	))
}
