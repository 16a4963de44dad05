package optimizer

import (
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic"
)

// EmptyStatementPass removes `;` statements and nested blocks with no
// statements. Function bodies are kept even when empty.
type EmptyStatementPass struct{}

func (*EmptyStatementPass) Name() string { return "EmptyStatement" }

func (p *EmptyStatementPass) Run(u *Unit, fn *semantic.Function, stats *Stats) error {
	b, err := body(u, fn)
	if err != nil {
		return err
	}
	return p.sweep(u.Tree, b, stats)
}

// sweep works from the last child backwards so indices stay valid while
// children are removed.
func (p *EmptyStatementPass) sweep(tree *ast.Tree, block ast.NodeID, stats *Stats) error {
	for i := tree.Len(block) - 1; i >= 0; i-- {
		stmt := tree.Child(block, i)
		switch tree.Kind(stmt) {
		case ast.KindBlock:
			if err := p.sweep(tree, stmt, stats); err != nil {
				return err
			}
			if tree.Len(stmt) > 0 {
				continue
			}
		case ast.KindExprStmt:
			if tree.Len(stmt) > 0 {
				continue
			}
		default:
			continue
		}
		if err := tree.RemoveChild(block, i); err != nil {
			return err
		}
		stats.EmptyRemoved++
	}
	return nil
}
