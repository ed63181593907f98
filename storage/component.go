package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/flowview/component"
	"github.com/kbukum/flowview/logger"
)

const healthKey = "flowview_health_probe"

// Component wraps Storage and implements component.Component.
type Component struct {
	cfg         Config
	providerCfg any
	log         *logger.Logger

	mu      sync.RWMutex
	storage Storage
}

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, providerCfg any, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:         cfg,
		providerCfg: providerCfg,
		log:         log.WithComponent("storage"),
	}
}

// Storage returns the underlying Storage, or nil if not started.
func (c *Component) Storage() Storage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storage
}

var _ component.Component = (*Component)(nil)

// ErrNotStarted is returned by the delegating methods before Start.
var ErrNotStarted = errors.New("storage: component not started")

// Load delegates to the started backend so consumers can be wired before
// the registry starts the component.
func (c *Component) Load(ctx context.Context, key string) ([]byte, error) {
	s := c.Storage()
	if s == nil {
		return nil, ErrNotStarted
	}
	return s.Load(ctx, key)
}

// Save delegates to the started backend.
func (c *Component) Save(ctx context.Context, key string, data []byte) error {
	s := c.Storage()
	if s == nil {
		return ErrNotStarted
	}
	return s.Save(ctx, key, data)
}

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start initializes the storage backend.
func (c *Component) Start(_ context.Context) error {
	s, err := New(c.cfg, c.providerCfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.mu.Lock()
	c.storage = s
	c.mu.Unlock()
	return nil
}

// Stop releases the backend. Backends holding connections implement io.Closer.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	s := c.storage
	c.storage = nil
	c.mu.Unlock()

	if closer, ok := unwrap(s).(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Health probes the backend with an existence check.
func (c *Component) Health(ctx context.Context) component.Health {
	s := c.Storage()
	if s == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "storage not initialized",
		}
	}
	if _, err := s.Exists(ctx, healthKey); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("health probe failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the bootstrap display.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s", c.cfg.Provider)
	if d, ok := c.providerCfg.(Describer); ok {
		if extra := d.Describe(); extra != "" {
			details += " " + extra
		}
	}
	if c.cfg.KeyPrefix != "" {
		details += fmt.Sprintf(" prefix=%s", c.cfg.KeyPrefix)
	}
	return component.Description{
		Name:    "Snapshot store",
		Type:    "storage",
		Details: details,
	}
}

// Describer is optionally implemented by provider configs to add details
// to the startup summary.
type Describer interface {
	Describe() string
}

func unwrap(s Storage) Storage {
	if p, ok := s.(*prefixed); ok {
		return p.Storage
	}
	return s
}
