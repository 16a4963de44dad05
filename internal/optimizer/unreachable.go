package optimizer

import (
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic"
	"github.com/hassan/vibelang/internal/semantic/types"
)

// UnreachableCodePass removes statements that can never run.
//
// EXAMPLE:
//
//	Before:  fn f() -> Int {       After:  fn f() -> Int {
//	           return 1;                     return 1;
//	           let x = 2;                  }
//	         }
//
// A statement terminates its block when it is a return, a prompt in a
// function with a return type, or a nested block that terminates.
type UnreachableCodePass struct{}

func (*UnreachableCodePass) Name() string { return "UnreachableCode" }

func (p *UnreachableCodePass) Run(u *Unit, fn *semantic.Function, stats *Stats) error {
	b, err := body(u, fn)
	if err != nil {
		return err
	}
	_, err = p.prune(u, fn, b, stats)
	return err
}

// prune removes what follows the first terminating statement of block and
// reports whether block terminates.
func (p *UnreachableCodePass) prune(u *Unit, fn *semantic.Function, block ast.NodeID, stats *Stats) (bool, error) {
	tree := u.Tree
	for i, stmt := range tree.Children(block) {
		term := false
		switch tree.Kind(stmt) {
		case ast.KindReturnStmt:
			term = true
		case ast.KindPromptBlock:
			term = !types.IsVoid(fn.Return)
		case ast.KindBlock:
			var err error
			if term, err = p.prune(u, fn, stmt, stats); err != nil {
				return false, err
			}
		}
		if !term {
			continue
		}
		if i+1 < tree.Len(block) {
			u.Log.WithField("pos", tree.Pos(tree.Child(block, i+1))).Warn("unreachable code removed")
		}
		n, err := removeFrom(tree, block, i+1)
		stats.UnreachableRemoved += n
		return true, err
	}
	return false, nil
}
