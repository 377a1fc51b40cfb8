package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubefleet/mcp-fleet/internal/cluster"
	"github.com/kubefleet/mcp-fleet/internal/dispatch"
	"github.com/kubefleet/mcp-fleet/internal/handlers"
	"github.com/kubefleet/mcp-fleet/internal/instrumentation"
	"github.com/kubefleet/mcp-fleet/internal/logging"
	"github.com/kubefleet/mcp-fleet/internal/server"
	"github.com/kubefleet/mcp-fleet/internal/toolreg"
	"github.com/kubefleet/mcp-fleet/internal/tools"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP fleet server",
		Long: `Start the MCP fleet server to dispatch Kubernetes operations across
a fleet of clusters via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Fleet membership:
  - With --fleet-config, clusters come from the named YAML file.
  - Without it, every context of the local kubeconfig becomes a cluster.

Safety:
  Non-destructive mode is on by default and refuses tools that change
  cluster state. Allow individual tools with --allow-mutating, or disable
  the mode entirely with --non-destructive=false.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(config)
		},
	}

	cmd.Flags().BoolVar(&config.NonDestructiveMode, "non-destructive", true, "Refuse tools that mutate cluster state (default: true)")
	cmd.Flags().StringSliceVar(&config.AllowedMutatingTools, "allow-mutating", nil, "Mutating tool names permitted even in non-destructive mode (repeatable)")
	cmd.Flags().StringVar(&config.FleetConfigPath, "fleet-config", "", "Path to a YAML fleet configuration file (defaults to kubeconfig discovery)")
	cmd.Flags().StringVar(&config.KubeconfigPath, "kubeconfig", "", "Path to the kubeconfig file (defaults to the standard discovery chain)")
	cmd.Flags().Float32Var(&config.QPSLimit, "qps-limit", 20.0, "QPS limit for Kubernetes API calls, per cluster")
	cmd.Flags().IntVar(&config.BurstLimit, "burst-limit", 30, "Burst limit for Kubernetes API calls, per cluster")
	cmd.Flags().IntVar(&config.MaxInFlight, "max-in-flight", dispatch.DefaultMaxInFlight, "Maximum clusters contacted concurrently per dispatch")
	cmd.Flags().DurationVar(&config.DispatchTimeout, "dispatch-timeout", 30*time.Second, "Deadline for a whole fan-out; 0 disables the deadline")
	cmd.Flags().StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, or error")

	// Transport flags
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	// Metrics flags
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics", false, "Serve Prometheus metrics on a dedicated listener (requires instrumentation)")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", ":9090", "Listen address for the metrics server")

	return cmd
}

// parseLogLevel maps the flag value onto a slog level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (use debug, info, warn, or error)", level)
	}
}

// loadFleetContexts resolves the cluster contexts the registry starts with.
func loadFleetContexts(config ServeConfig) ([]cluster.Context, error) {
	if config.FleetConfigPath != "" {
		fleet, err := cluster.LoadFleetConfig(config.FleetConfigPath)
		if err != nil {
			return nil, fmt.Errorf("loading fleet configuration: %w", err)
		}
		return fleet.Clusters, nil
	}
	contexts, err := cluster.DiscoverFromKubeconfig(config.KubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("discovering clusters from kubeconfig: %w", err)
	}
	return contexts, nil
}

// runServe contains the main server logic with support for multiple transports.
func runServe(config ServeConfig) error {
	level, err := parseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(level)

	// Graceful shutdown on both SIGINT and SIGTERM.
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// OpenTelemetry instrumentation, disabled unless configured via env.
	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	instrumentationProvider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("creating instrumentation provider: %w", err)
	}
	defer func() {
		if shutdownErr := instrumentationProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(shutdownErr))
		}
	}()

	if instrumentationProvider.Enabled() {
		logger.Info("instrumentation enabled",
			slog.String("metrics_exporter", instrumentationConfig.MetricsExporter),
			slog.String("tracing_exporter", instrumentationConfig.TracingExporter))
	}

	// Cluster registry: credentials come from kubeconfig contexts, fleet
	// membership from the fleet file or kubeconfig discovery.
	creds := &cluster.KubeconfigSource{
		DefaultPath: config.KubeconfigPath,
		QPS:         config.QPSLimit,
		Burst:       config.BurstLimit,
	}

	registryOpts := []cluster.RegistryOption{cluster.WithLogger(logger)}
	if instrumentationProvider.Enabled() {
		registryOpts = append(registryOpts, cluster.WithMetrics(instrumentationProvider.Metrics()))
	}
	clusterRegistry := cluster.NewRegistry(creds, registryOpts...)

	contexts, err := loadFleetContexts(config)
	if err != nil {
		return err
	}
	for _, cc := range contexts {
		if err := clusterRegistry.Register(cc); err != nil {
			return fmt.Errorf("registering cluster %q: %w", cc.Name, err)
		}
	}
	logger.Info("fleet registered", slog.Int("clusters", clusterRegistry.Len()))

	// Tool registry and resource handlers.
	toolRegistry := toolreg.NewRegistry()
	if err := toolreg.RegisterCatalog(toolRegistry); err != nil {
		return fmt.Errorf("registering tool catalog: %w", err)
	}
	handlerSet := handlers.DefaultSet()

	// Dispatch engine.
	engineOpts := []dispatch.Option{
		dispatch.WithMaxInFlight(config.MaxInFlight),
		dispatch.WithEngineLogger(logger),
	}
	if config.DispatchTimeout > 0 {
		engineOpts = append(engineOpts, dispatch.WithTimeout(config.DispatchTimeout))
	}
	if instrumentationProvider.Enabled() {
		engineOpts = append(engineOpts, dispatch.WithEngineMetrics(instrumentationProvider.Metrics()))
	}
	engine := dispatch.NewEngine(toolRegistry, clusterRegistry, handlerSet, engineOpts...)

	serverConfig := server.NewDefaultConfig()
	serverConfig.Version = rootCmd.Version
	serverConfig.NonDestructiveMode = config.NonDestructiveMode
	serverConfig.AllowedMutatingTools = config.AllowedMutatingTools
	serverConfig.MaxInFlight = config.MaxInFlight
	serverConfig.DispatchTimeout = config.DispatchTimeout
	serverConfig.FleetConfigPath = config.FleetConfigPath
	serverConfig.KubeconfigPath = config.KubeconfigPath

	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithLogger(logger),
		server.WithConfig(serverConfig),
		server.WithClusterRegistry(clusterRegistry),
		server.WithToolRegistry(toolRegistry),
		server.WithHandlerSet(handlerSet),
		server.WithEngine(engine),
		server.WithInstrumentationProvider(instrumentationProvider),
	)
	if err != nil {
		return fmt.Errorf("creating server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	// MCP server with the full tool surface.
	mcpSrv := mcpserver.NewMCPServer(serverConfig.ServerName, rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := tools.RegisterTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	switch config.Transport {
	case transportStdio:
		// No startup message for stdio mode, it would corrupt the MCP stream.
		return runStdioServer(shutdownCtx, mcpSrv)
	case transportSSE:
		return runSSEServer(shutdownCtx, mcpSrv, config, logger)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, config, serverContext, instrumentationProvider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", config.Transport)
	}
}
