package app

import (
	"github.com/kbukum/flowview/config"
	"github.com/kbukum/flowview/engine"
	"github.com/kbukum/flowview/execution"
	"github.com/kbukum/flowview/observability"
	"github.com/kbukum/flowview/poller"
	"github.com/kbukum/flowview/redis"
	"github.com/kbukum/flowview/server"
	"github.com/kbukum/flowview/storage"
	"github.com/kbukum/flowview/storage/local"
	"github.com/kbukum/flowview/storage/s3"
	"github.com/kbukum/flowview/validation"
	"github.com/kbukum/flowview/view"
)

// Config is the full flowview configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Engine        engine.Config        `yaml:"engine" mapstructure:"engine"`
	Poller        poller.Config        `yaml:"poller" mapstructure:"poller"`
	Interaction   execution.Config     `yaml:"interaction" mapstructure:"interaction"`
	Store         StoreConfig          `yaml:"store" mapstructure:"store"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	View          view.Config          `yaml:"view" mapstructure:"view"`
}

// StoreConfig selects the snapshot backend. Only the selected provider's
// section is defaulted and validated.
type StoreConfig struct {
	storage.Config `yaml:",inline" mapstructure:",squash"`

	Local local.Config `yaml:"local" mapstructure:"local"`
	S3    s3.Config    `yaml:"s3" mapstructure:"s3"`
}

// ProviderConfig returns the provider-specific config storage.New expects.
// Redis settings live in the top-level redis section.
func (c *Config) ProviderConfig() any {
	switch c.Store.Provider {
	case storage.ProviderLocal:
		return &c.Store.Local
	case storage.ProviderS3:
		return &c.Store.S3
	case storage.ProviderRedis:
		return &c.Redis
	}
	return nil
}

// ApplyDefaults fills every section. The poller preset depends on the
// engine dialect, so the engine is defaulted first.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Engine.ApplyDefaults()
	c.Poller.ApplyDefaults(c.Engine.Dialect)
	c.Interaction.ApplyDefaults()
	c.Store.ApplyDefaults()
	switch c.Store.Provider {
	case storage.ProviderLocal:
		c.Store.Local.ApplyDefaults()
	case storage.ProviderS3:
		c.Store.S3.ApplyDefaults()
	case storage.ProviderRedis:
		c.Redis.ApplyDefaults()
	}
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Observability.ServiceName = c.Name
	c.Observability.ServiceVersion = c.Version
	c.Observability.Environment = c.Environment
}

// Validate checks struct tags first, then each section's own rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	v := validation.New().
		Nested("service", c.ServiceConfig.Validate).
		Nested("engine", c.Engine.Validate).
		Nested("poller", c.Poller.Validate).
		Nested("interaction", c.Interaction.Validate).
		Nested("store", c.Store.Config.Validate).
		Nested("server", c.Server.Validate).
		Nested("observability", c.Observability.Validate)
	switch c.Store.Provider {
	case storage.ProviderLocal:
		v.Nested("store.local", c.Store.Local.Validate)
	case storage.ProviderS3:
		v.Nested("store.s3", c.Store.S3.Validate)
	case storage.ProviderRedis:
		v.Nested("redis", c.Redis.Validate)
	}
	return v.Err()
}

// Load reads config.yml, .env and FLOWVIEW_* variables into a Config.
// An explicit path overrides the search.
func Load(path string) (*Config, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg := &Config{}
	if err := config.LoadConfig("flowview", cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
