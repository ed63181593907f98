package engine

import (
	"fmt"
	"time"

	"github.com/kbukum/flowview/security"
)

// DefaultBaseURL is the engine address used when none is configured.
const DefaultBaseURL = "http://localhost:8080"

// Config configures the engine client.
type Config struct {
	BaseURL string             `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	Dialect string             `yaml:"dialect" mapstructure:"dialect" validate:"omitempty,oneof=api legacy auto"`
	Timeout time.Duration      `yaml:"timeout" mapstructure:"timeout"`
	TLS     security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	Retry          RetryConfig   `yaml:"retry" mapstructure:"retry"`
	CircuitBreaker BreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
}

// RetryConfig enables retries of failed engine calls. Off by default since
// a failed poll simply waits for the next tick.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff" mapstructure:"backoff"`
}

// BreakerConfig enables a circuit breaker around engine calls.
type BreakerConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxFailures int           `yaml:"max_failures" mapstructure:"max_failures"`
	Cooldown    time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Dialect == "" {
		c.Dialect = DialectAPI
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.Backoff <= 0 {
		c.Retry.Backoff = 200 * time.Millisecond
	}
	if c.CircuitBreaker.MaxFailures <= 0 {
		c.CircuitBreaker.MaxFailures = 5
	}
	if c.CircuitBreaker.Cooldown <= 0 {
		c.CircuitBreaker.Cooldown = 30 * time.Second
	}
}

// Validate checks the dialect name.
func (c *Config) Validate() error {
	if _, err := dialectByName(c.Dialect); err != nil {
		return fmt.Errorf("engine.dialect: %w", err)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("engine.tls: %w", err)
	}
	return nil
}
