package diagrams

import "fmt"

// Operation names accepted in Op.Type.
const (
	OpAddNode     = "add_node"
	OpConnect     = "connect"
	OpBeginEdit   = "begin_edit"
	OpEditLabel   = "edit_label"
	OpCommitEdit  = "commit_edit"
	OpCancelEdit  = "cancel_edit"
	OpBlur        = "blur"
	OpMoveNode    = "move_node"
	OpDeleteNode  = "delete_node"
	OpDeleteEdge  = "delete_edge"
	OpSetViewport = "set_viewport"
)

// Op is one editor operation in wire form.
type Op struct {
	Type     string    `json:"op"`
	ID       string    `json:"id,omitempty"`
	Kind     NodeKind  `json:"kind,omitempty"`
	Label    string    `json:"label,omitempty"`
	Text     string    `json:"text,omitempty"`
	Source   string    `json:"source,omitempty"`
	Target   string    `json:"target,omitempty"`
	Position *Position `json:"position,omitempty"`
	Viewport *Viewport `json:"viewport,omitempty"`
}

// OpError reports which operation in a batch failed.
type OpError struct {
	Index int
	Op    string
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("op %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Apply runs a single operation.
func (e *Editor) Apply(op Op) error {
	switch op.Type {
	case OpAddNode:
		var pos Position
		if op.Position != nil {
			pos = *op.Position
		}
		_, err := e.AddNode(op.Kind, op.Label, pos)
		return err
	case OpConnect:
		_, _, err := e.Connect(op.Source, op.Target)
		return err
	case OpBeginEdit:
		return e.BeginEdit(op.ID)
	case OpEditLabel:
		return e.EditLabel(op.Text)
	case OpCommitEdit:
		return e.CommitEdit()
	case OpCancelEdit:
		return e.CancelEdit()
	case OpBlur:
		e.Blur()
		return nil
	case OpMoveNode:
		if op.Position == nil {
			return fmt.Errorf("%w: position is required", ErrInvalidDiagram)
		}
		return e.MoveNode(op.ID, *op.Position)
	case OpDeleteNode:
		_, err := e.DeleteNode(op.ID)
		return err
	case OpDeleteEdge:
		return e.DeleteEdge(op.ID)
	case OpSetViewport:
		if op.Viewport == nil {
			return ErrInvalidViewport
		}
		return e.SetViewport(*op.Viewport)
	default:
		return ErrUnknownOp
	}
}

// ApplyAll runs ops in order and stops at the first failure. Operations
// before the failing one stay applied.
func (e *Editor) ApplyAll(ops []Op) error {
	for i, op := range ops {
		if err := e.Apply(op); err != nil {
			return &OpError{Index: i, Op: op.Type, Err: err}
		}
	}
	return nil
}

