// Package dispatch is the fan-out core of the server. It validates a tool
// invocation, resolves its cluster selector, runs the operation against every
// target with bounded concurrency, and aggregates per-cluster outcomes into a
// slot-ordered response with a three-way overall status.
package dispatch
