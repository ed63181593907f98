// Package endpoint provides the operational HTTP endpoints every flowview
// server exposes: /health, /ready, /alive, /info and /metrics.
package endpoint
