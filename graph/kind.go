package graph

// Capabilities lists what a user can do with a node of a kind.
type Capabilities struct {
	// Completable nodes can be completed by the user while active.
	Completable bool `json:"completable"`
	// Form nodes collect field values on completion.
	Form bool `json:"form"`
}

// Kind describes how a node type is drawn and what it allows.
type Kind struct {
	Type         string       `json:"type"`
	Icon         string       `json:"icon"`
	Color        string       `json:"color"`
	Shape        string       `json:"shape"`
	Capabilities Capabilities `json:"capabilities"`
}

const (
	ShapeCircle  = "circle"
	ShapeBox     = "box"
	ShapeDiamond = "diamond"
)

// Node type tags emitted by the builder.
const (
	TypeUser    = "user"
	TypeService = "service"
	TypeScript  = "script"
	TypeStart   = "start"
	TypeEnd     = "end"
	TypeGateway = "gateway"
	TypeTimer   = "timer"
	TypeEmail   = "email"
)

var kinds = map[string]Kind{
	TypeUser:    {Type: TypeUser, Icon: "user", Color: "#3b82f6", Shape: ShapeBox, Capabilities: Capabilities{Completable: true, Form: true}},
	TypeService: {Type: TypeService, Icon: "cog", Color: "#8b5cf6", Shape: ShapeBox},
	TypeScript:  {Type: TypeScript, Icon: "file-code", Color: "#f59e0b", Shape: ShapeBox},
	TypeStart:   {Type: TypeStart, Icon: "play", Color: "#10b981", Shape: ShapeCircle},
	TypeEnd:     {Type: TypeEnd, Icon: "square", Color: "#ef4444", Shape: ShapeCircle},
	TypeGateway: {Type: TypeGateway, Icon: "git-branch", Color: "#eab308", Shape: ShapeDiamond},
	TypeTimer:   {Type: TypeTimer, Icon: "clock", Color: "#06b6d4", Shape: ShapeCircle},
	TypeEmail:   {Type: TypeEmail, Icon: "mail", Color: "#ec4899", Shape: ShapeBox},
}

var genericKind = Kind{Icon: "circle", Color: "#64748b", Shape: ShapeBox}

// KindOf returns the kind registered for a node type tag. Unknown tags get
// a generic kind with no capabilities.
func KindOf(nodeType string) Kind {
	if k, ok := kinds[nodeType]; ok {
		return k
	}
	k := genericKind
	k.Type = nodeType
	return k
}

// Kind returns the kind of the node.
func (n Node) Kind() Kind { return KindOf(n.Data.NodeType) }
