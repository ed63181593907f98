// Package component defines lifecycle-managed parts of a flowview process
// (HTTP server, redis client, telemetry providers, mounted executions) and
// a registry that starts them in order and stops them in reverse.
package component
