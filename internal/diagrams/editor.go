package diagrams

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Editor holds one diagram and its label-editing state. At most one node is
// in editing state, identified by activeEditID. Not safe for concurrent use.
type Editor struct {
	nodes        []Node
	edges        []Edge
	viewport     Viewport
	activeEditID string
	buffer       string
	newID        func() string
}

// NewEditor starts an empty diagram.
func NewEditor() *Editor {
	return &Editor{viewport: DefaultViewport, newID: uuid.NewString}
}

// Load rebuilds an editor from a saved or client-held state. Edges whose
// endpoints are missing and repeated ordered pairs are dropped. Edges with
// an empty or repeated id get a fresh one.
func Load(st State) (*Editor, error) {
	e := NewEditor()
	seen := make(map[string]bool, len(st.Nodes))
	for _, n := range st.Nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" || seen[id] {
			return nil, fmt.Errorf("%w: node ids must be unique and non-empty", ErrInvalidDiagram)
		}
		kind, ok := ParseKind(string(n.Data.NodeType))
		if !ok {
			kind = KindProcess
		}
		seen[id] = true
		n.ID = id
		n.Type = NodeType
		n.Data.NodeType = kind
		n.Data.IsEditing = false
		e.nodes = append(e.nodes, n)
	}
	edgeIDs := make(map[string]bool, len(st.Edges))
	for _, edge := range st.Edges {
		if !seen[edge.Source] || !seen[edge.Target] || e.hasEdge(edge.Source, edge.Target) {
			continue
		}
		edge.ID = strings.TrimSpace(edge.ID)
		if edge.ID == "" || edgeIDs[edge.ID] {
			edge.ID = e.newID()
		}
		edgeIDs[edge.ID] = true
		e.edges = append(e.edges, edge)
	}
	if st.Viewport.Zoom > 0 {
		e.viewport = st.Viewport
	}
	if st.ActiveEditID != "" && seen[st.ActiveEditID] {
		e.activeEditID = st.ActiveEditID
		e.buffer = st.EditBuffer
	}
	return e, nil
}

// State returns a copy of the diagram with isEditing derived for each node.
func (e *Editor) State() State {
	d := Diagram{Nodes: e.nodes, Edges: e.edges, Viewport: e.viewport}.clone()
	for i := range d.Nodes {
		d.Nodes[i].Data.IsEditing = d.Nodes[i].ID == e.activeEditID
	}
	st := State{Diagram: d, ActiveEditID: e.activeEditID}
	if e.activeEditID != "" {
		st.EditBuffer = e.buffer
	}
	return st
}

// Diagram returns the persistable graph.
func (e *Editor) Diagram() Diagram {
	return e.State().Diagram
}

// AddNode appends a node of the given kind. An empty label uses the kind's name.
func (e *Editor) AddNode(kind NodeKind, label string, pos Position) (Node, error) {
	k, ok := ParseKind(string(kind))
	if !ok {
		return Node{}, ErrUnknownKind
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = defaultLabel(k)
	}
	n := Node{
		ID:       e.newID(),
		Type:     NodeType,
		Data:     NodeData{Label: label, NodeType: k},
		Position: pos,
	}
	e.nodes = append(e.nodes, n)
	return n, nil
}

// Connect adds an edge from source to target. Any direction is allowed; a
// repeat of an existing ordered pair returns that edge with added=false.
func (e *Editor) Connect(source, target string) (edge Edge, added bool, err error) {
	if e.nodeIndex(source) < 0 || e.nodeIndex(target) < 0 {
		return Edge{}, false, ErrUnknownNode
	}
	for _, existing := range e.edges {
		if existing.Source == source && existing.Target == target {
			return existing, false, nil
		}
	}
	edge = Edge{ID: e.newID(), Source: source, Target: target}
	e.edges = append(e.edges, edge)
	return edge, true, nil
}

// BeginEdit puts id into editing state. A node already being edited is
// committed first, as a blur would.
func (e *Editor) BeginEdit(id string) error {
	i := e.nodeIndex(id)
	if i < 0 {
		return ErrUnknownNode
	}
	if e.activeEditID == id {
		return nil
	}
	e.Blur()
	e.activeEditID = id
	e.buffer = e.nodes[i].Data.Label
	return nil
}

// EditLabel replaces the in-progress label.
func (e *Editor) EditLabel(text string) error {
	if e.activeEditID == "" {
		return ErrNotEditing
	}
	e.buffer = text
	return nil
}

// CommitEdit stores the in-progress label and leaves editing state. A blank
// buffer keeps the previous label.
func (e *Editor) CommitEdit() error {
	if e.activeEditID == "" {
		return ErrNotEditing
	}
	if i := e.nodeIndex(e.activeEditID); i >= 0 {
		if label := strings.TrimSpace(e.buffer); label != "" {
			e.nodes[i].Data.Label = label
		}
	}
	e.clearEdit()
	return nil
}

// CancelEdit discards the in-progress label.
func (e *Editor) CancelEdit() error {
	if e.activeEditID == "" {
		return ErrNotEditing
	}
	e.clearEdit()
	return nil
}

// Blur commits any edit in progress.
func (e *Editor) Blur() {
	if e.activeEditID != "" {
		_ = e.CommitEdit()
	}
}

// MoveNode sets a node's canvas position.
func (e *Editor) MoveNode(id string, pos Position) error {
	i := e.nodeIndex(id)
	if i < 0 {
		return ErrUnknownNode
	}
	e.nodes[i].Position = pos
	return nil
}

// DeleteNode removes a node and every edge touching it. It returns the number of edges removed.
func (e *Editor) DeleteNode(id string) (int, error) {
	i := e.nodeIndex(id)
	if i < 0 {
		return 0, ErrUnknownNode
	}
	e.nodes = append(e.nodes[:i], e.nodes[i+1:]...)
	if e.activeEditID == id {
		e.clearEdit()
	}
	kept := e.edges[:0]
	pruned := 0
	for _, edge := range e.edges {
		if edge.Source == id || edge.Target == id {
			pruned++
			continue
		}
		kept = append(kept, edge)
	}
	e.edges = kept
	return pruned, nil
}

func (e *Editor) DeleteEdge(id string) error {
	for i, edge := range e.edges {
		if edge.ID == id {
			e.edges = append(e.edges[:i], e.edges[i+1:]...)
			return nil
		}
	}
	return ErrUnknownEdge
}

func (e *Editor) SetViewport(v Viewport) error {
	if v.Zoom <= 0 {
		return ErrInvalidViewport
	}
	e.viewport = v
	return nil
}

func (e *Editor) clearEdit() {
	e.activeEditID = ""
	e.buffer = ""
}

func (e *Editor) nodeIndex(id string) int {
	for i, n := range e.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) hasEdge(source, target string) bool {
	for _, edge := range e.edges {
		if edge.Source == source && edge.Target == target {
			return true
		}
	}
	return false
}
