package graphsource

import (
	"context"
	"errors"

	apperrors "github.com/kbukum/flowview/errors"
	"github.com/kbukum/flowview/graph"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/storage"
)

const keyPrefix = "graphData_"

// ErrNotFound is returned by a Store when no snapshot exists under a key.
var ErrNotFound = storage.ErrNotFound

// Key returns the snapshot key of a process instance.
func Key(instanceID string) string {
	return keyPrefix + instanceID
}

// Store is the part of storage.Storage the source needs.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Option customizes a Source.
type Option func(*Source)

// WithLogger replaces the source's logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Source) { s.log = l }
}

// Source resolves the graph shown for a process instance.
type Source struct {
	store Store
	log   *logger.Logger
}

// New creates a Source over store. A nil store means only navigation
// state can supply a graph.
func New(store Store, opts ...Option) *Source {
	s := &Source{
		store: store,
		log:   logger.WithComponent("graphsource"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates the page scope for instanceID. Navigation state wins when
// present; otherwise the scope is hydrated from the store. Every failure
// yields an empty graph and is only logged.
func (s *Source) Open(ctx context.Context, instanceID string, navState *graph.Graph) *Scope {
	sc := newScope(instanceID)
	if navState != nil {
		sc.graph = navState
		return sc
	}

	log := s.log.WithInstance(instanceID)
	key := Key(instanceID)
	if s.store == nil {
		log.Warn("no graph store configured, showing empty graph")
		return sc
	}

	data, err := s.store.Load(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Info("no stored graph, showing empty graph", logger.Fields("key", key))
		return sc
	case err != nil:
		log.Warn("graph store load failed, showing empty graph", logger.MergeWithError(logger.Fields("key", key), err))
		return sc
	}

	sc.values[key] = data
	g, err := graph.Decode(data)
	if err != nil {
		log.Warn("stored graph is corrupt, showing empty graph", logger.MergeWithError(logger.Fields("key", key), err))
		return sc
	}
	sc.graph = g
	return sc
}

// Load resolves the graph once without keeping a scope.
func (s *Source) Load(ctx context.Context, instanceID string, navState *graph.Graph) *graph.Graph {
	sc := s.Open(ctx, instanceID, navState)
	defer sc.Close()
	return sc.Graph()
}

// Import stores g as the snapshot of instanceID.
func (s *Source) Import(ctx context.Context, instanceID string, g *graph.Graph) error {
	if instanceID == "" {
		return apperrors.MissingField("instanceId")
	}
	if s.store == nil {
		return apperrors.Storage("import graph", errors.New("no graph store configured"))
	}
	if err := g.Validate(); err != nil {
		return apperrors.InvalidInput("graph", err.Error())
	}
	data, err := graph.Encode(g)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.store.Save(ctx, Key(instanceID), data); err != nil {
		return apperrors.Storage("import graph", err)
	}
	s.log.WithInstance(instanceID).Info("graph imported", logger.Fields("nodes", len(g.Nodes), "edges", len(g.Edges)))
	return nil
}

// ImportJSON decodes a builder export and stores it.
func (s *Source) ImportJSON(ctx context.Context, instanceID string, data []byte) error {
	g, err := graph.Decode(data)
	if err != nil {
		return apperrors.InvalidInput("graph", err.Error())
	}
	return s.Import(ctx, instanceID, g)
}
