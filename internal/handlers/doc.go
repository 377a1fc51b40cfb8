// Package handlers implements the per-resource-kind operations executed
// against one cluster at a time. Handlers are stateless, translate every
// Kubernetes API error into a small taxonomy of permanent and transient
// failures, and are wrapped by a bounded retry that only retries the
// transient ones.
package handlers
