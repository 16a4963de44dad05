package semantic

import (
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic/types"
	"github.com/hassan/vibelang/internal/symtab"
)

// Param is one resolved function parameter.
type Param struct {
	Name string
	Type types.Type
}

// Function is the resolved signature of a function or method.
type Function struct {
	Name   string
	Decl   ast.NodeID
	Class  string // owning class for methods, "" otherwise
	Params []Param
	Return types.Type
}

// Ref describes what an identifier resolved to.
type Ref struct {
	Name   string
	Kind   symtab.SymbolKind
	Type   types.Type
	Member bool // a member variable of the enclosing class
}

// Result holds the diagnostics of one analysis and the annotations the
// code generator consumes. Annotations are keyed by node handle.
type Result struct {
	Errors   []Diagnostic
	Warnings []Diagnostic

	// Types holds the resolved type of every type node and the inferred
	// type of every analyzed expression.
	Types map[ast.NodeID]types.Type

	// Functions maps function declaration nodes to their signatures.
	Functions map[ast.NodeID]*Function

	// Calls maps call expressions to the function they invoke.
	Calls map[ast.NodeID]*Function

	// Refs maps identifier expressions to what they name.
	Refs map[ast.NodeID]Ref

	// Locals maps variable declarations to their resolved type.
	Locals map[ast.NodeID]types.Type

	// Captures lists, per prompt node, the variables its {markers} name,
	// in order of first appearance.
	Captures map[ast.NodeID][]Ref

	// Imports lists import paths in source order.
	Imports []string
}

func newResult() *Result {
	return &Result{
		Types:     make(map[ast.NodeID]types.Type),
		Functions: make(map[ast.NodeID]*Function),
		Calls:     make(map[ast.NodeID]*Function),
		Refs:      make(map[ast.NodeID]Ref),
		Locals:    make(map[ast.NodeID]types.Type),
		Captures:  make(map[ast.NodeID][]Ref),
	}
}

// OK reports whether the analysis found no errors.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// TypeOf returns the recorded type of a node, or types.Invalid.
func (r *Result) TypeOf(id ast.NodeID) types.Type {
	if t, ok := r.Types[id]; ok && t != nil {
		return t
	}
	return types.Invalid
}

// Diagnostics returns errors followed by warnings.
func (r *Result) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

// HasKind reports whether any error or warning has the given kind.
func (r *Result) HasKind(k Kind) bool {
	for _, d := range r.Diagnostics() {
		if d.Kind == k {
			return true
		}
	}
	return false
}
