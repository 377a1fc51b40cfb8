package cmd

import "time"

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	// Fleet membership
	FleetConfigPath string
	KubeconfigPath  string

	// Kubernetes client settings
	QPSLimit   float32
	BurstLimit int

	// Dispatch settings
	MaxInFlight     int
	DispatchTimeout time.Duration

	// Safety settings
	NonDestructiveMode   bool
	AllowedMutatingTools []string

	// Logging
	LogLevel string

	// Metrics
	Metrics MetricsServeConfig
}

// MetricsServeConfig configures the dedicated Prometheus scrape listener.
// The metrics server only starts when instrumentation is enabled and backed
// by the Prometheus exporter.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}
