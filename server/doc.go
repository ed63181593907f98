// Package server provides the flowview HTTP server: Gin routing behind an
// h2c handler with a net/http middleware stack, operational endpoints and
// the component adapter used by bootstrap.
//
// # Middleware
//
// Applied to every request (server/middleware):
//
//   - Recovery: panics become a 500 error envelope
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: cross-origin access for the JSON API
//   - BodySizeLimit: caps graph uploads
//   - RequestLogger: one structured line per request
//
// RateLimit is attached per route group through Server.Throttle.
//
// # Endpoints
//
// Registered by RegisterDefaultEndpoints (server/endpoint): /health,
// /ready, /alive, /info and /metrics.
package server
