// Package logging provides structured logging helpers built on log/slog.
//
// It defines the attribute keys used across the codebase so that log output
// stays queryable (every dispatch logs the same "cluster", "tool" and
// "status" keys), plus sanitization helpers that redact IP addresses from
// hosts and error strings before they reach the logs.
package logging
