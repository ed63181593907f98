// Package view renders execution pages read-only: an SVG page served over
// HTTP, a JSON model for programmatic clients and a tabular terminal
// listing for `flowview watch`.
//
// Nodes are never draggable or connectable. A click is forwarded to the
// execution page, which decides between plain selection, opening a task
// form and completing a task directly.
package view
