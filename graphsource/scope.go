package graphsource

import (
	"sync"

	"github.com/kbukum/flowview/graph"
)

// Scope is the snapshot storage owned by one mounted page. It is hydrated
// once by Source.Open and cleared by Close.
type Scope struct {
	instanceID string

	mu     sync.RWMutex
	values map[string][]byte
	graph  *graph.Graph
	closed bool
}

func newScope(instanceID string) *Scope {
	return &Scope{
		instanceID: instanceID,
		values:     make(map[string][]byte),
		graph:      graph.Empty(),
	}
}

// InstanceID returns the owning process instance.
func (s *Scope) InstanceID() string { return s.instanceID }

// Graph returns the resolved graph; empty after Close.
func (s *Scope) Graph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Value returns a raw hydrated entry.
func (s *Scope) Value(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Close clears the scope. It is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	clear(s.values)
	s.graph = graph.Empty()
}

// Closed reports whether Close has run.
func (s *Scope) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
