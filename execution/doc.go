// Package execution holds the interactive state of execution pages: which
// node is selected, the open task form, and how a click on an active user
// node completes its task.
//
// In form mode a click opens a form seeded from the node's custom fields
// and SubmitForm posts it. In direct mode a click completes the engine task
// bound to the node; when no task matches, the click only selects.
//
// Registry mounts a Page per process instance together with its status
// poller and graph scope, and unmounts them on request or shutdown.
package execution
