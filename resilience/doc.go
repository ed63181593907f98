// Package resilience guards engine calls with a circuit breaker and a
// context-aware retry loop.
package resilience
