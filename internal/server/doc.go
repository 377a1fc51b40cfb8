// Package server wires the fleet components together behind a ServerContext
// and provides the HTTP health and metrics endpoints shared by the network
// transports.
package server
