// Package graphsource resolves the graph a page displays for a process
// instance: navigation state when the page was opened from the builder,
// otherwise the snapshot persisted under graphData_{instanceId}. A missing
// or corrupt snapshot shows as an empty graph.
package graphsource
