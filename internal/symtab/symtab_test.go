package symtab

import (
	"errors"
	"strings"
	"testing"

	"github.com/hassan/vibelang/internal/lexer"
	"github.com/hassan/vibelang/internal/parser/ast"
)

func TestSymbol_String(t *testing.T) {
	symbol := &Symbol{
		Name: "city",
		Kind: SymbolParameter,
		Pos:  lexer.Position{Filename: "weather.vibe", Line: 3, Column: 20},
	}

	expected := "parameter city at weather.vibe:3:20"
	if result := symbol.String(); result != expected {
		t.Errorf("Symbol.String() = %q, want %q", result, expected)
	}
}

func TestSymbolKind_String(t *testing.T) {
	tests := []struct {
		kind SymbolKind
		want string
	}{
		{SymbolType, "type"},
		{SymbolFunction, "function"},
		{SymbolVariable, "variable"},
		{SymbolParameter, "parameter"},
		{SymbolClass, "class"},
		{SymbolKind(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("SymbolKind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScope_Declare(t *testing.T) {
	scope := NewScope(ScopeGlobal, nil, ast.NoNode)

	sym, err := scope.Declare("Temperature", SymbolType, 1, 2)
	if err != nil {
		t.Fatalf("Declare() error: %v", err)
	}
	if sym.Scope != scope || sym.Decl != 1 || sym.Type != 2 || sym.Index != 0 {
		t.Errorf("Declare() = %+v", sym)
	}
	if !sym.IsGlobal() {
		t.Error("expected global symbol")
	}
}

// TestScope_DuplicateRejected checks that a second declaration of the same
// name fails and leaves the first one in place.
func TestScope_DuplicateRejected(t *testing.T) {
	scope := NewScope(ScopeFunction, nil, ast.NoNode)
	first, err := scope.DeclareAt("x", SymbolVariable, 10, ast.NoNode,
		lexer.Position{Filename: "a.vibe", Line: 2, Column: 5})
	if err != nil {
		t.Fatal(err)
	}

	_, err = scope.Declare("x", SymbolParameter, 11, ast.NoNode)
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("Declare() duplicate error = %v, want *DuplicateError", err)
	}
	if dup.Name != "x" {
		t.Errorf("DuplicateError.Name = %q, want %q", dup.Name, "x")
	}
	if want := "symbol x already declared at a.vibe:2:5"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if got := scope.LookupLocal("x"); got != first || got.Decl != 10 {
		t.Errorf("LookupLocal() after duplicate = %+v, want first declaration", got)
	}
	if scope.Len() != 1 {
		t.Errorf("Len() = %d, want 1", scope.Len())
	}
}

func TestScope_Shadowing(t *testing.T) {
	names := []string{"x", "city", "Temperature"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			parent := NewScope(ScopeGlobal, nil, ast.NoNode)
			child := NewScope(ScopeBlock, parent, ast.NoNode)

			outer, _ := parent.Declare(name, SymbolVariable, 1, ast.NoNode)
			inner, err := child.Declare(name, SymbolVariable, 2, ast.NoNode)
			if err != nil {
				t.Fatalf("shadowing Declare() error: %v", err)
			}
			if got := child.Lookup(name); got != inner {
				t.Errorf("child.Lookup() = %+v, want inner", got)
			}
			if got := parent.Lookup(name); got != outer {
				t.Errorf("parent.Lookup() = %+v, want outer", got)
			}
		})
	}
}

func TestScope_LookupWalksParents(t *testing.T) {
	global := NewScope(ScopeGlobal, nil, ast.NoNode)
	fn := NewScope(ScopeFunction, global, ast.NoNode)
	block := NewScope(ScopeBlock, fn, ast.NoNode)

	g, _ := global.Declare("getTemperature", SymbolFunction, 1, ast.NoNode)

	if got := block.Lookup("getTemperature"); got != g {
		t.Errorf("Lookup() through parents = %v, want global symbol", got)
	}
	if !g.Used {
		t.Error("Lookup() did not mark the symbol used")
	}
	if got := block.LookupLocal("getTemperature"); got != nil {
		t.Errorf("LookupLocal() = %v, want nil", got)
	}
	if got := block.Lookup("missing"); got != nil {
		t.Errorf("Lookup(missing) = %v, want nil", got)
	}
	if block.Depth != 2 {
		t.Errorf("Depth = %d, want 2", block.Depth)
	}
}

func TestScope_SymbolsInOrder(t *testing.T) {
	scope := NewScope(ScopeFunction, nil, ast.NoNode)
	for _, name := range []string{"city", "day", "location"} {
		if _, err := scope.Declare(name, SymbolParameter, ast.NoNode, ast.NoNode); err != nil {
			t.Fatal(err)
		}
	}
	syms := scope.Symbols()
	for i, want := range []string{"city", "day", "location"} {
		if syms[i].Name != want || syms[i].Index != i {
			t.Errorf("Symbols()[%d] = %s/%d, want %s/%d", i, syms[i].Name, syms[i].Index, want, i)
		}
	}
}

func TestScope_Close(t *testing.T) {
	scope := NewScope(ScopeBlock, nil, ast.NoNode)
	sym, _ := scope.Declare("x", SymbolVariable, ast.NoNode, ast.NoNode)
	scope.Close()
	scope.Close()

	if !scope.Closed() || scope.Len() != 0 {
		t.Errorf("Close() left %d symbols", scope.Len())
	}
	if sym.Scope != nil {
		t.Error("closed symbol still points at its scope")
	}
	if scope.Lookup("x") != nil {
		t.Error("Lookup() found a symbol in a closed scope")
	}
}

func TestTable_OpenClose(t *testing.T) {
	table := NewTable(1)
	if _, err := table.Root().Declare("Weather", SymbolType, 2, 3); err != nil {
		t.Fatal(err)
	}

	fn := table.Open(ScopeFunction, 4)
	if _, err := fn.Declare("city", SymbolParameter, 5, 6); err != nil {
		t.Fatal(err)
	}
	table.Open(ScopeBlock, 7)
	if table.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", table.Depth())
	}
	if table.Lookup("city") == nil || table.Lookup("Weather") == nil {
		t.Error("Lookup() failed from nested block")
	}

	table.Close()
	table.Close()
	if table.Current() != table.Root() {
		t.Error("Current() is not root after closing all scopes")
	}
	if table.Lookup("city") != nil {
		t.Error("parameter leaked out of its function scope")
	}

	table.Close()
	if table.Current() != table.Root() || table.Root().Len() != 1 {
		t.Error("Close() popped or cleared the root scope")
	}
}

func TestScope_UnusedSymbols(t *testing.T) {
	s := NewScope(ScopeFunction, NewScope(ScopeGlobal, nil, ast.NoNode), ast.NoNode)
	for i, name := range []string{"a", "b", "c"} {
		if _, err := s.Declare(name, SymbolVariable, ast.NodeID(i+1), ast.NoNode); err != nil {
			t.Fatal(err)
		}
	}
	s.Lookup("b")

	var got []string
	for _, sym := range s.UnusedSymbols() {
		got = append(got, sym.Name)
	}
	if strings.Join(got, ",") != "a,c" {
		t.Errorf("UnusedSymbols() = %v, want [a c]", got)
	}
}
