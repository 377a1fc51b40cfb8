package server

import "time"

// Config holds the server-level configuration shared by all transports.
type Config struct {
	// ServerName is the name advertised in the MCP initialize response.
	ServerName string

	// Version is the server version advertised to clients.
	Version string

	// NonDestructiveMode refuses tools that mutate cluster state unless
	// they are explicitly listed in AllowedMutatingTools.
	NonDestructiveMode bool

	// AllowedMutatingTools lists mutating tool names permitted even when
	// NonDestructiveMode is on.
	AllowedMutatingTools []string

	// MaxInFlight bounds the number of clusters contacted concurrently
	// by a single dispatch.
	MaxInFlight int

	// DispatchTimeout bounds the wall-clock time of a whole fan-out.
	// Zero means no deadline.
	DispatchTimeout time.Duration

	// FleetConfigPath points at an optional fleet configuration file.
	// When empty, clusters are discovered from the kubeconfig.
	FleetConfigPath string

	// KubeconfigPath overrides the default kubeconfig location.
	KubeconfigPath string
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:         "mcp-fleet",
		Version:            "dev",
		NonDestructiveMode: true,
		MaxInFlight:        8,
	}
}

// MutatingToolAllowed reports whether a mutating tool may run under the
// current safety settings.
func (c *Config) MutatingToolAllowed(name string) bool {
	if !c.NonDestructiveMode {
		return true
	}
	for _, allowed := range c.AllowedMutatingTools {
		if allowed == name {
			return true
		}
	}
	return false
}
