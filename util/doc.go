// Package util holds small helpers shared across flowview packages: secret
// masking for startup output and pointer helpers for optional config
// fields.
package util
