// Package storage holds keyed byte blobs such as graph snapshots behind
// pluggable backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Load when no blob exists under the key.
var ErrNotFound = errors.New("storage: key not found")

// Storage defines keyed blob operations.
type Storage interface {
	// Load returns the blob stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores data under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes the blob under key.
	// Returns nil if the key does not exist.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}

// ValidateKey rejects keys that are empty or could escape a namespace.
// Backends call it before touching their medium.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return errors.New("storage: empty key")
	case strings.ContainsAny(key, `/\`) || strings.Contains(key, ".."):
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
