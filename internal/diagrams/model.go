package diagrams

import "strings"

// NodeKind is the cosmetic flowchart role of a node.
type NodeKind string

const (
	KindStart   NodeKind = "start"
	KindProcess NodeKind = "process"
	KindCustom  NodeKind = "custom"
	KindEnd     NodeKind = "end"
)

// NodeType is the renderer type every node carries.
const NodeType = "flowchartNode"

// ParseKind accepts a known kind in any case.
func ParseKind(s string) (NodeKind, bool) {
	switch k := NodeKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindStart, KindProcess, KindCustom, KindEnd:
		return k, true
	}
	return "", false
}

func defaultLabel(k NodeKind) string {
	switch k {
	case KindStart:
		return "Start"
	case KindEnd:
		return "End"
	case KindCustom:
		return "Custom"
	default:
		return "Process"
	}
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the node payload. IsEditing is derived from the editor's active edit.
type NodeData struct {
	Label     string   `json:"label"`
	NodeType  NodeKind `json:"nodeType"`
	IsEditing bool     `json:"isEditing"`
}

type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
}

type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is the canvas position of a fresh diagram.
var DefaultViewport = Viewport{Zoom: 1}

// Diagram is the persisted graph: one blob per saved row.
type Diagram struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// State is a diagram plus the label edit in progress, if any.
type State struct {
	Diagram
	ActiveEditID string `json:"activeEditId,omitempty"`
	EditBuffer   string `json:"editBuffer,omitempty"`
}

func (d Diagram) clone() Diagram {
	out := Diagram{Viewport: d.Viewport}
	out.Nodes = append(make([]Node, 0, len(d.Nodes)), d.Nodes...)
	out.Edges = append(make([]Edge, 0, len(d.Edges)), d.Edges...)
	return out
}
