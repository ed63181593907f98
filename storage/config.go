package storage

import (
	"fmt"
	"strings"
)

// Provider constants for supported storage backends.
const (
	ProviderMemory = "memory"
	ProviderLocal  = "local"
	ProviderS3     = "s3"
	ProviderRedis  = "redis"
)

// DefaultProvider keeps snapshots in process memory.
const DefaultProvider = ProviderMemory

// Config holds storage configuration. Provider-specific settings live in
// the provider's own config type and are passed to New separately.
type Config struct {
	// Provider selects the backend: "memory", "local", "s3" or "redis".
	Provider string `mapstructure:"provider" json:"provider"`

	// KeyPrefix is prepended to every key.
	KeyPrefix string `mapstructure:"key_prefix" json:"key_prefix"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
}

// Validate checks the provider name and the key prefix.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMemory, ProviderLocal, ProviderS3, ProviderRedis:
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	if strings.ContainsAny(c.KeyPrefix, `/\`) {
		return fmt.Errorf("storage: key_prefix %q must not contain path separators", c.KeyPrefix)
	}
	return nil
}
