// Package cmd provides the command-line interface for mcp-fleet.
//
// This package implements a Cobra-based CLI with multiple subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - version: Displays the application version
//
// The CLI runs the serve command when no subcommand is specified, so the
// binary can be dropped into an MCP client configuration as-is.
//
// Command Structure:
//
//	mcp-fleet [flags]                 # Starts the MCP server (default)
//	mcp-fleet serve [flags]           # Explicitly starts the MCP server
//	mcp-fleet version                 # Shows version information
//	mcp-fleet help [command]          # Shows help information
//
// The serve command supports multiple transport options:
//   - stdio: Standard input/output (default) - for command-line integration
//   - sse: Server-Sent Events over HTTP - for web-based clients
//   - streamable-http: Streamable HTTP transport - for HTTP-based integration
//
// Transport Configuration Examples:
//
//	mcp-fleet serve --transport stdio
//	mcp-fleet serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-fleet serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// Fleet membership comes either from a YAML fleet configuration file
// (--fleet-config) or, when none is given, from the contexts of the local
// kubeconfig. The serve command also exposes flags for the dispatch engine
// (fan-out width, per-dispatch deadline) and the non-destructive safety mode.
package cmd
