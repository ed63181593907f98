// Package projector merges engine status into graph nodes.
package projector

import (
	"github.com/kbukum/flowview/engine"
	"github.com/kbukum/flowview/graph"
)

// Status returns the status of nodeID under snap. Completed wins over
// active, active over pending. A nil snapshot or an unknown node is pending.
func Status(snap *engine.Snapshot, nodeID string) graph.Status {
	switch {
	case snap == nil:
		return graph.StatusPending
	case snap.IsCompleted(nodeID):
		return graph.StatusCompleted
	case snap.IsActive(nodeID):
		return graph.StatusActive
	default:
		return graph.StatusPending
	}
}

// Project returns every node of g with its current status, in graph order.
// It is recomputed on each call.
func Project(g *graph.Graph, snap *engine.Snapshot) []graph.NodeView {
	if g == nil {
		return []graph.NodeView{}
	}
	out := make([]graph.NodeView, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = graph.NodeView{
			Node:   n,
			Status: Status(snap, n.ID),
			Kind:   graph.KindOf(n.Data.NodeType),
		}
	}
	return out
}

// Counts tallies projected statuses.
func Counts(views []graph.NodeView) map[graph.Status]int {
	c := map[graph.Status]int{
		graph.StatusPending:   0,
		graph.StatusActive:    0,
		graph.StatusCompleted: 0,
	}
	for _, v := range views {
		c[v.Status]++
	}
	return c
}
