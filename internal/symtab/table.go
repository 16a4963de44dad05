package symtab

import "github.com/hassan/vibelang/internal/parser/ast"

// Table is an explicit stack of open scopes. The root scope is created with
// the table and stays open until the table itself is discarded.
type Table struct {
	root  *Scope
	stack []*Scope
}

// NewTable creates a table whose root scope was introduced by program.
func NewTable(program ast.NodeID) *Table {
	root := NewScope(ScopeGlobal, nil, program)
	return &Table{root: root, stack: []*Scope{root}}
}

// Root returns the global scope.
func (t *Table) Root() *Scope { return t.root }

// Current returns the innermost open scope.
func (t *Table) Current() *Scope { return t.stack[len(t.stack)-1] }

// Depth returns the number of open scopes above the root.
func (t *Table) Depth() int { return len(t.stack) - 1 }

// Open pushes a new scope nested in the current one.
func (t *Table) Open(kind ScopeKind, node ast.NodeID) *Scope {
	s := NewScope(kind, t.Current(), node)
	t.stack = append(t.stack, s)
	return s
}

// Close pops and closes the innermost scope. The root scope is never
// popped.
func (t *Table) Close() {
	if len(t.stack) == 1 {
		return
	}
	s := t.Current()
	t.stack = t.stack[:len(t.stack)-1]
	s.Close()
}

// Lookup resolves name from the current scope outward.
func (t *Table) Lookup(name string) *Symbol {
	return t.Current().Lookup(name)
}
