package diagrams

import "errors"

var (
	ErrUnknownNode     = errors.New("node not found")
	ErrUnknownEdge     = errors.New("edge not found")
	ErrUnknownKind     = errors.New("node kind must be start, process, custom or end")
	ErrNotEditing      = errors.New("no node is being edited")
	ErrInvalidViewport = errors.New("viewport zoom must be positive")
	ErrUnknownOp       = errors.New("unknown operation")
	ErrInvalidDiagram  = errors.New("invalid diagram")
)
