package poller

import (
	"fmt"
	"time"
)

const (
	// DefaultInterval is the polling period for the api dialect.
	DefaultInterval = 5 * time.Second
	// LegacyInterval is the polling period preset for the legacy dialect.
	LegacyInterval = 2 * time.Second
)

// Config configures status polling.
type Config struct {
	Interval     time.Duration `yaml:"interval" mapstructure:"interval"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
}

// ApplyDefaults fills zero values. The legacy dialect polls faster.
func (c *Config) ApplyDefaults(dialect string) {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
		if dialect == "legacy" {
			c.Interval = LegacyInterval
		}
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
}

// Validate rejects intervals too short to be sensible.
func (c *Config) Validate() error {
	if c.Interval < 100*time.Millisecond {
		return fmt.Errorf("poller.interval must be at least 100ms (got: %s)", c.Interval)
	}
	return nil
}
