package graph

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Graph is the builder export of one workflow. It is never mutated after
// it has been loaded.
type Graph struct {
	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Viewport *Viewport `json:"viewport,omitempty"`
}

// Node is a vertex of the graph.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type,omitempty"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NodeData is the builder payload carried by a node.
type NodeData struct {
	NodeType       string       `json:"nodeType"`
	Label          string       `json:"label"`
	Description    string       `json:"description,omitempty"`
	SelectedFields []string     `json:"selectedFields,omitempty"`
	CustomFields   CustomFields `json:"customFields,omitempty"`
}

// Position is a node's canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the canvas pan and zoom saved with the graph.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
}

// CustomField is a user-defined form field with its default value.
type CustomField struct {
	Name    string
	Default string
}

// CustomFields keeps custom fields in document order. Scalar values of
// any JSON type are read as their text.
type CustomFields []CustomField

func (c *CustomFields) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*c = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("customFields: expected object, got %s", res.Type)
	}
	out := CustomFields{}
	res.ForEach(func(key, value gjson.Result) bool {
		out = append(out, CustomField{Name: key.String(), Default: value.String()})
		return true
	})
	*c = out
	return nil
}

func (c CustomFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Default)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Default returns the default value of the named field.
func (c CustomFields) Default(name string) (string, bool) {
	for _, f := range c {
		if f.Name == name {
			return f.Default, true
		}
	}
	return "", false
}

// Empty returns a graph with no nodes and no edges.
func Empty() *Graph {
	return &Graph{Nodes: []Node{}, Edges: []Edge{}}
}

// Decode parses a builder export. The payload must be a JSON object; a
// missing nodes or edges array decodes as empty.
func Decode(data []byte) (*Graph, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("graph: invalid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("graph: expected a JSON object")
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return &g, nil
}

// Encode serializes the graph in builder export form.
func Encode(g *Graph) ([]byte, error) {
	return json.Marshal(g)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// IsEmpty reports whether the graph has neither nodes nor edges.
func (g *Graph) IsEmpty() bool {
	return g == nil || (len(g.Nodes) == 0 && len(g.Edges) == 0)
}

// Validate checks that node ids are unique and edges reference known nodes.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("graph: node without id")
		}
		if seen[n.ID] {
			return fmt.Errorf("graph: duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	for _, e := range g.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			return fmt.Errorf("graph: edge %q references unknown node", e.ID)
		}
	}
	return nil
}
