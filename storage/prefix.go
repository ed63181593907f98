package storage

import "context"

// prefixed namespaces every key of the wrapped Storage.
type prefixed struct {
	Storage
	prefix string
}

func (p *prefixed) key(k string) string { return p.prefix + k }

func (p *prefixed) Load(ctx context.Context, key string) ([]byte, error) {
	return p.Storage.Load(ctx, p.key(key))
}

func (p *prefixed) Save(ctx context.Context, key string, data []byte) error {
	return p.Storage.Save(ctx, p.key(key), data)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.Storage.Delete(ctx, p.key(key))
}

func (p *prefixed) Exists(ctx context.Context, key string) (bool, error) {
	return p.Storage.Exists(ctx, p.key(key))
}
