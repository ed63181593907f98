package engine

import (
	"slices"
	"time"
)

// Task is an actionable user task reported by the engine.
type Task struct {
	ID     string `json:"id"`
	NodeID string `json:"nodeId"`
	Name   string `json:"name"`
}

// Snapshot is the latest known execution state of one process instance.
// It is replaced wholesale by each successful poll.
type Snapshot struct {
	ActiveNodes     []string  `json:"activeNodes"`
	CompletedNodes  []string  `json:"completedNodes"`
	Tasks           []Task    `json:"tasks"`
	CurrentActivity string    `json:"currentActivity,omitempty"`
	Dialect         string    `json:"dialect"`
	Seq             uint64    `json:"seq"`
	FetchedAt       time.Time `json:"fetchedAt"`
}

// IsCompleted reports whether nodeID is in the completed collection.
func (s *Snapshot) IsCompleted(nodeID string) bool {
	return s != nil && slices.Contains(s.CompletedNodes, nodeID)
}

// IsActive reports whether nodeID is active. The current activity of a
// legacy payload counts as active.
func (s *Snapshot) IsActive(nodeID string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.ActiveNodes, nodeID) || (s.CurrentActivity != "" && s.CurrentActivity == nodeID)
}

// TaskForNode returns the first task bound to nodeID.
func (s *Snapshot) TaskForNode(nodeID string) (Task, bool) {
	if s == nil {
		return Task{}, false
	}
	for _, t := range s.Tasks {
		if t.NodeID == nodeID {
			return t, true
		}
	}
	return Task{}, false
}

// Execution is the result of launching a graph on the engine.
type Execution struct {
	InstanceID string   `json:"processInstanceId"`
	Tasks      []string `json:"tasks"`
}
