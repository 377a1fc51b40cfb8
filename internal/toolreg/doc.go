// Package toolreg holds the static tool descriptor table and validates
// inbound invocations against each tool's parameter schema before any
// cluster is contacted.
package toolreg
