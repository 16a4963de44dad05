package codegen

import (
	"errors"
	"fmt"

	"github.com/hassan/vibelang/internal/lexer"
	"github.com/hassan/vibelang/internal/parser/ast"
)

// ErrAnalysisFailed is returned when asked to generate code for a tree
// whose analysis reported errors.
var ErrAnalysisFailed = errors.New("codegen: semantic analysis failed")

// UnknownNodeError reports a construct the generator has no lowering for.
type UnknownNodeError struct {
	Node   ast.NodeID
	Kind   ast.Kind
	Pos    lexer.Position
	Reason string
}

func (e *UnknownNodeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: cannot generate %s: %s", e.Pos, e.Kind, e.Reason)
	}
	return fmt.Sprintf("cannot generate %s: %s", e.Kind, e.Reason)
}

func (g *Generator) unknown(id ast.NodeID, reason string) error {
	return &UnknownNodeError{Node: id, Kind: g.tree.Kind(id), Pos: g.tree.Pos(id), Reason: reason}
}

func (g *Generator) shapeError(id ast.NodeID, err error) error {
	var se *ast.ShapeError
	if errors.As(err, &se) {
		return &UnknownNodeError{Node: se.Node, Kind: se.Kind, Pos: se.Pos, Reason: se.Reason}
	}
	return g.unknown(id, err.Error())
}
