// Package cluster maintains the registry of named cluster contexts that
// tool invocations can target. Contexts are registered once at startup;
// authenticated client handles (capabilities) are built lazily on first use,
// deduplicated with singleflight, and cached for the process lifetime.
package cluster
