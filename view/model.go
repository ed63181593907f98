package view

import (
	"math"
	"time"

	"github.com/kbukum/flowview/engine"
	"github.com/kbukum/flowview/execution"
	"github.com/kbukum/flowview/graph"
	"github.com/kbukum/flowview/poller"
	"github.com/kbukum/flowview/projector"
	"github.com/kbukum/flowview/util"
)

// Config is the `view` configuration section.
type Config struct {
	// PendingTint colours pending nodes red. Unset means on.
	PendingTint *bool `yaml:"pending_tint" mapstructure:"pending_tint"`
}

// Options returns the rendering options for the config.
func (c Config) Options() Options {
	return Options{PendingTint: util.Deref(c.PendingTint, DefaultOptions.PendingTint)}
}

// Options tunes rendering.
type Options struct {
	PendingTint bool
}

// DefaultOptions has the pending tint on.
var DefaultOptions = Options{PendingTint: true}

func (o Options) style() graph.StyleOptions {
	return graph.StyleOptions{PendingTint: o.PendingTint}
}

// Flags are the interaction switches of the canvas.
type Flags struct {
	Draggable   bool `json:"draggable"`
	Connectable bool `json:"connectable"`
	Selectable  bool `json:"selectable"`
	FitView     bool `json:"fitView"`
}

// ReadOnly is the only flag set the viewer uses.
var ReadOnly = Flags{FitView: true}

// Node is a projected node with its colour override.
type Node struct {
	graph.NodeView
	Style      graph.Style `json:"style"`
	Selected   bool        `json:"selected"`
	Actionable bool        `json:"actionable"`
}

// Card describes the selected node.
type Card struct {
	NodeID      string       `json:"nodeId"`
	Label       string       `json:"label"`
	Type        string       `json:"type"`
	Description string       `json:"description,omitempty"`
	Status      graph.Status `json:"status"`
	TaskID      string       `json:"taskId,omitempty"`
}

// Model is everything a renderer needs for one page.
type Model struct {
	InstanceID     string               `json:"instanceId"`
	Mode           string               `json:"mode"`
	Flags          Flags                `json:"flags"`
	Viewport       *graph.Viewport      `json:"viewport,omitempty"`
	Nodes          []Node               `json:"nodes"`
	Edges          []graph.Edge         `json:"edges"`
	Counts         map[graph.Status]int `json:"counts"`
	Selection      *Card                `json:"selection,omitempty"`
	Form           *execution.Form      `json:"form,omitempty"`
	Tasks          []engine.Task        `json:"tasks"`
	Seq            uint64               `json:"seq"`
	Poll           poller.Stats         `json:"poll"`
	RefreshSeconds int                  `json:"refreshSeconds"`
}

// Build projects a page state into a render model. The selection card
// shows the node's status as of this snapshot, not as of the click.
func Build(st execution.State, opts Options) Model {
	g := st.Graph
	if g == nil {
		g = graph.Empty()
	}
	selectedID := ""
	if st.Selection != nil {
		selectedID = st.Selection.Node.ID
	}

	views := projector.Project(g, st.Snapshot)
	nodes := make([]Node, len(views))
	for i, v := range views {
		selected := v.ID == selectedID
		nodes[i] = Node{
			NodeView:   v,
			Style:      graph.StyleFor(v.Status, selected, opts.style()),
			Selected:   selected,
			Actionable: v.Kind.Capabilities.Completable && v.Status == graph.StatusActive,
		}
	}

	m := Model{
		InstanceID:     st.InstanceID,
		Mode:           st.Mode,
		Flags:          ReadOnly,
		Viewport:       g.Viewport,
		Nodes:          nodes,
		Edges:          g.Edges,
		Counts:         projector.Counts(views),
		Form:           st.Form,
		Tasks:          []engine.Task{},
		Poll:           st.Poll,
		RefreshSeconds: refreshSeconds(st.Interval),
	}
	if st.Snapshot != nil {
		m.Seq = st.Snapshot.Seq
		if st.Snapshot.Tasks != nil {
			m.Tasks = st.Snapshot.Tasks
		}
	}
	if st.Selection != nil {
		m.Selection = card(st.Selection.Node, st.Snapshot)
	}
	return m
}

func card(n graph.Node, snap *engine.Snapshot) *Card {
	c := &Card{
		NodeID:      n.ID,
		Label:       n.Data.Label,
		Type:        n.Data.NodeType,
		Description: n.Data.Description,
		Status:      projector.Status(snap, n.ID),
	}
	if t, ok := snap.TaskForNode(n.ID); ok {
		c.TaskID = t.ID
	}
	return c
}

func refreshSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
