// Package symtab implements lexically scoped symbol tables for name
// resolution.
//
// The semantic analyzer uses it to:
// 1. Resolve names to their declarations
// 2. Detect redeclarations in the same scope
// 3. Support nested scopes with shadowing (functions, classes, blocks)
//
// Symbols never own syntax nodes. Decl and Type are handles into the
// ast.Tree that the analyzer is walking.
package symtab

import (
	"github.com/hassan/vibelang/internal/lexer"
	"github.com/hassan/vibelang/internal/parser/ast"
)

// SymbolKind represents the kind of symbol.
type SymbolKind int

const (
	// SymbolType is a type name (type Temperature = Meaning<Int>(...)).
	SymbolType SymbolKind = iota

	// SymbolFunction is a function or method.
	SymbolFunction

	// SymbolVariable is a let binding or class member variable.
	SymbolVariable

	// SymbolParameter is a function parameter.
	SymbolParameter

	// SymbolClass is a class name.
	SymbolClass
)

// String returns a human-readable representation of the symbol kind.
func (sk SymbolKind) String() string {
	switch sk {
	case SymbolType:
		return "type"
	case SymbolFunction:
		return "function"
	case SymbolVariable:
		return "variable"
	case SymbolParameter:
		return "parameter"
	case SymbolClass:
		return "class"
	default:
		return "unknown"
	}
}

// Symbol represents a named entity in the program.
//
// Symbols refer to the AST by NodeID rather than holding decoded nodes.
// The tree outlives the symbol table, so a symbol stays valid for as long
// as the analysis that created it.
//
// DESIGN CHOICE: Type is a node, not a resolved type. The symbol table
// knows nothing about the type system; the semantic analyzer resolves
// the node against the symbol's declaring scope when it needs to.
type Symbol struct {
	// Name is the symbol's identifier.
	Name string

	// Kind is what kind of symbol this is.
	Kind SymbolKind

	// Scope is the scope the symbol was declared in, nil once that scope
	// has been closed.
	Scope *Scope

	// Decl is the declaring node.
	Decl ast.NodeID

	// Type is the node describing the symbol's type: the defining type of
	// a type alias, the return type of a function, the declared or
	// inferred type of a variable. NoNode when there is none.
	Type ast.NodeID

	// Pos is where this symbol was declared, for "already declared at"
	// messages.
	Pos lexer.Position

	// Used tracks if this symbol has been referenced.
	// Lookup sets it; the analyzer reads it when a function or block scope
	// closes and warns about variables that were never read.
	Used bool

	// Index is the declaration order within the scope, 0-based. For
	// parameters this is the argument position.
	Index int
}

// String returns "kind name at position".
// Example: "parameter city at weather.vibe:3:20"
func (s *Symbol) String() string {
	return s.Kind.String() + " " + s.Name + " at " + s.Pos.String()
}

// IsGlobal returns true if this symbol is declared at the root scope.
func (s *Symbol) IsGlobal() bool {
	return s.Scope != nil && s.Scope.IsGlobal()
}

// IsValue returns true for symbols that can appear in an expression:
// variables and parameters.
func (s *Symbol) IsValue() bool {
	return s.Kind == SymbolVariable || s.Kind == SymbolParameter
}

// MarkUsed marks this symbol as used.
func (s *Symbol) MarkUsed() {
	s.Used = true
}
