package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/flowview/logger"
)

// Factory creates a Storage from core config and provider-specific
// configuration. Each provider type-asserts providerCfg to its own type.
type Factory func(cfg Config, providerCfg any, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a backend factory for the given provider name.
// Backend packages call this from init, so the desired backend must be
// imported (e.g. _ "github.com/kbukum/flowview/storage/local").
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Providers lists the registered provider names.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a Storage for cfg.Provider.
func New(cfg Config, providerCfg any, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", logger.Fields("provider", cfg.Provider))

	s, err := f(cfg, providerCfg, l)
	if err != nil {
		return nil, err
	}
	if cfg.KeyPrefix != "" {
		s = &prefixed{Storage: s, prefix: cfg.KeyPrefix}
	}
	return s, nil
}
