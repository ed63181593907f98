package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderRedis, func(_ storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		c := &Config{}
		if providerCfg != nil {
			pc, ok := providerCfg.(*Config)
			if !ok {
				return nil, fmt.Errorf("redis: expected *redis.Config, got %T", providerCfg)
			}
			c = pc
		}
		client, err := New(*c, log.WithComponent("redis"))
		if err != nil {
			return nil, err
		}
		ttl, _ := c.ttl()
		return NewStore(client, ttl), nil
	})
}

// Store implements storage.Storage with one Redis string per key.
type Store struct {
	client *Client
	ttl    time.Duration
}

// NewStore creates a Store; ttl of 0 keeps values forever.
func NewStore(client *Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Load returns the value under key, or storage.ErrNotFound.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key)
	if err != nil {
		if IsNil(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis store load %q: %w", key, err)
	}
	return data, nil
}

// Save stores data under key with the configured TTL.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("redis store save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key); err != nil {
		return fmt.Errorf("redis store delete %q: %w", key, err)
	}
	return nil
}

// Exists reports whether the key is set.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("redis store exists %q: %w", key, err)
	}
	return n > 0, nil
}

// Close closes the underlying client.
func (s *Store) Close() error { return s.client.Close() }

var _ storage.Storage = (*Store)(nil)
