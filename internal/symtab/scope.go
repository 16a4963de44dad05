package symtab

import (
	"fmt"

	"github.com/hassan/vibelang/internal/lexer"
	"github.com/hassan/vibelang/internal/parser/ast"
)

// ScopeKind represents the construct that introduced a scope.
type ScopeKind int

const (
	// ScopeGlobal is the program scope. It lives for the whole analysis.
	ScopeGlobal ScopeKind = iota

	// ScopeFunction holds a function's parameters and body declarations.
	ScopeFunction

	// ScopeClass holds a class's members and methods.
	ScopeClass

	// ScopeBlock is a nested { ... } block.
	ScopeBlock
)

// String returns a human-readable representation of the scope kind.
func (sk ScopeKind) String() string {
	switch sk {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeClass:
		return "class"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// DuplicateError is returned by Declare when a name already exists in the
// same scope. The existing symbol is left untouched.
type DuplicateError struct {
	Name     string
	Existing *Symbol
}

func (e *DuplicateError) Error() string {
	if e.Existing != nil && e.Existing.Pos.IsValid() {
		return fmt.Sprintf("symbol %s already declared at %s", e.Name, e.Existing.Pos)
	}
	return fmt.Sprintf("symbol %s already declared", e.Name)
}

// Scope is one lexical region.
//
// EXAMPLE:
//
//	type T = Int;            // global scope
//	fn foo(x: Int) {         // function scope (sees T, x)
//	    let y = x;
//	    {                    // block scope
//	        let y = 1;       // shadows the outer y
//	    }
//	}
//
// Names are unique per scope and the first declaration wins. Symbols are
// kept in declaration order for deterministic iteration.
type Scope struct {
	// Kind is the kind of scope.
	Kind ScopeKind

	// Parent is the enclosing scope (nil for the global scope).
	Parent *Scope

	// Node is the AST node that introduced this scope.
	Node ast.NodeID

	// Depth is 0 for the global scope and grows by one per nesting level.
	Depth int

	symbols map[string]*Symbol
	order   []*Symbol
	closed  bool
}

// NewScope creates a scope nested in parent (nil for the root).
func NewScope(kind ScopeKind, parent *Scope, node ast.NodeID) *Scope {
	depth := 0
	if parent != nil {
		depth = parent.Depth + 1
	}
	return &Scope{
		Kind:    kind,
		Parent:  parent,
		Node:    node,
		Depth:   depth,
		symbols: make(map[string]*Symbol),
	}
}

// Declare adds a new symbol to this scope.
//
// It checks this scope only, so shadowing an outer declaration is allowed.
// On a duplicate it returns *DuplicateError and does not modify the scope.
func (s *Scope) Declare(name string, kind SymbolKind, decl, typ ast.NodeID) (*Symbol, error) {
	return s.DeclareAt(name, kind, decl, typ, lexer.Position{})
}

// DeclareAt is Declare with a source position recorded on the symbol.
func (s *Scope) DeclareAt(name string, kind SymbolKind, decl, typ ast.NodeID, pos lexer.Position) (*Symbol, error) {
	if existing, ok := s.symbols[name]; ok {
		return nil, &DuplicateError{Name: name, Existing: existing}
	}

	sym := &Symbol{
		Name:  name,
		Kind:  kind,
		Scope: s,
		Decl:  decl,
		Type:  typ,
		Pos:   pos,
		Index: len(s.order),
	}
	s.symbols[name] = sym
	s.order = append(s.order, sym)
	return sym, nil
}

// Lookup finds the nearest declaration of name, walking outward through
// the parent chain. The symbol found is marked used. Returns nil when the
// name is not declared anywhere in the chain.
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.symbols[name]; ok {
			sym.MarkUsed()
			return sym
		}
	}
	return nil
}

// LookupLocal finds a symbol declared in this scope only.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.symbols[name]
}

// Symbols returns the symbols of this scope in declaration order.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, len(s.order))
	copy(out, s.order)
	return out
}

// UnusedSymbols returns the symbols of this scope that no Lookup has
// found, in declaration order.
//
// Only this scope is checked: a symbol of an enclosing scope may still be
// used after this scope closes.
func (s *Scope) UnusedSymbols() []*Symbol {
	var unused []*Symbol
	for _, sym := range s.order {
		if !sym.Used {
			unused = append(unused, sym)
		}
	}
	return unused
}

// Len returns the number of symbols in this scope.
func (s *Scope) Len() int {
	return len(s.order)
}

// IsGlobal returns true if this is the root scope.
func (s *Scope) IsGlobal() bool {
	return s.Parent == nil
}

// Close releases the symbols of this scope. The AST nodes they reference
// belong to the tree and are not touched. Closing twice is harmless.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	for _, sym := range s.order {
		sym.Scope = nil
	}
	s.symbols = map[string]*Symbol{}
	s.order = nil
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	return s.closed
}

// String returns a debug representation such as "function scope (depth 1, 2 symbols)".
func (s *Scope) String() string {
	return fmt.Sprintf("%s scope (depth %d, %d symbols)", s.Kind, s.Depth, len(s.order))
}
