// Package errors provides the structured error type shared by flowview.
// Each AppError carries a machine-readable code, an HTTP status mapping and
// a retryable flag, and renders as an RFC 7807 style envelope.
package errors
