package execution

import (
	"fmt"
	"time"
)

// Completion modes.
const (
	// ModeForm opens a form and posts its values to complete the node.
	ModeForm = "form"
	// ModeDirect completes the node's engine task on click, without a form.
	ModeDirect = "direct"
)

// Config configures task interaction.
type Config struct {
	Mode          string        `yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=form direct"`
	SubmitTimeout time.Duration `yaml:"submit_timeout" mapstructure:"submit_timeout"`
	// IdleTimeout unmounts pages nobody has read for this long. A negative
	// value keeps pages mounted until they are unmounted explicitly.
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// DefaultIdleTimeout is the idle period after which a page is unmounted.
const DefaultIdleTimeout = 10 * time.Minute

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeForm
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
}

// Validate checks the mode.
func (c *Config) Validate() error {
	if c.Mode != ModeForm && c.Mode != ModeDirect {
		return fmt.Errorf("interaction.mode must be %q or %q (got: %s)", ModeForm, ModeDirect, c.Mode)
	}
	return nil
}
