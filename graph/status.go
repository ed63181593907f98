package graph

// Status is the execution state of a node as observed from the engine.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Style is the colour override a renderer applies to a node. Empty fields
// mean the renderer keeps its own colours.
type Style struct {
	Border string `json:"border,omitempty"`
	Fill   string `json:"fill,omitempty"`
}

// IsZero reports whether the style overrides nothing.
func (s Style) IsZero() bool { return s.Border == "" && s.Fill == "" }

var (
	completedStyle = Style{Border: "#22c55e", Fill: "rgba(34,197,94,0.2)"}
	pendingStyle   = Style{Border: "#f87171", Fill: "rgba(248,113,113,0.2)"}
)

// StyleOptions toggles optional parts of the encoding.
type StyleOptions struct {
	// PendingTint colours pending nodes red.
	PendingTint bool
}

// DefaultStyleOptions has the pending tint on.
var DefaultStyleOptions = StyleOptions{PendingTint: true}

// StyleFor returns the colour override for a node. Completed nodes are
// green, pending nodes red when PendingTint is set, active nodes keep the
// renderer's colours. A selected node never gets an override.
func StyleFor(status Status, selected bool, opts StyleOptions) Style {
	if selected {
		return Style{}
	}
	switch status {
	case StatusCompleted:
		return completedStyle
	case StatusPending:
		if opts.PendingTint {
			return pendingStyle
		}
	}
	return Style{}
}

// NodeView is a node with its projected status.
type NodeView struct {
	Node
	Status Status `json:"status"`
	Kind   Kind   `json:"kind"`
}
