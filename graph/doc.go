// Package graph holds the workflow graph exported by the builder: nodes,
// edges and viewport, the per-node-type kind table and the status colour
// encoding used by every renderer.
package graph
