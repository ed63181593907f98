package local

import "fmt"

// DefaultBasePath is the default root directory for snapshot files.
const DefaultBasePath = "./data/graphs"

// Config holds local filesystem storage configuration.
type Config struct {
	// BasePath is the directory holding one file per key.
	BasePath string `mapstructure:"base_path" json:"base_path"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
}

// Validate checks that the local configuration is valid.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("local: base_path is required")
	}
	return nil
}

// Describe implements storage.Describer.
func (c *Config) Describe() string { return "path=" + c.BasePath }
