package semantic

import (
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/prompt"
	"github.com/hassan/vibelang/internal/semantic/types"
	"github.com/hassan/vibelang/internal/symtab"
)

func (a *Analyzer) analyzeStmts(ids []ast.NodeID) {
	for _, id := range ids {
		if a.aborted {
			return
		}
		a.analyzeStmt(id)
	}
}

// analyzeStmt checks one statement. A failing statement is abandoned and
// its siblings are still checked.
func (a *Analyzer) analyzeStmt(id ast.NodeID) {
	if !a.enter(id) {
		return
	}
	defer a.leave()

	v, err := ast.Decode(a.tree, id)
	if err != nil {
		a.shapeError(id, err)
		return
	}

	switch s := v.(type) {
	case *ast.Block:
		a.table.Open(symtab.ScopeBlock, id)
		a.analyzeStmts(s.Stmts)
		a.closeScope()

	case *ast.VarDecl:
		a.analyzeVarDecl(s)

	case *ast.Return:
		a.analyzeReturn(s)

	case *ast.Prompt:
		a.analyzePrompt(s)

	case *ast.ExprStmt:
		if s.X == ast.NoNode {
			a.warnf(EmptyStatement, id, "empty expression statement")
			return
		}
		a.exprType(s.X)

	default:
		a.errorf(UnknownNodeShape, id, "%s is not a statement", a.tree.Kind(id))
	}
}

// analyzeVarDecl declares a local variable. Its type is the declared type
// when present, otherwise the initializer's type.
func (a *Analyzer) analyzeVarDecl(s *ast.VarDecl) {
	if s.Name == "" {
		a.errorf(MissingName, s.ID, "variable declaration without a name")
		return
	}

	var declared, inferred types.Type
	if s.Type != ast.NoNode {
		declared = a.resolveType(s.Type)
	}
	if s.Init != ast.NoNode {
		inferred = a.exprType(s.Init)
	}

	var t types.Type
	switch {
	case declared == nil && inferred == nil:
		a.errorf(UninferableType, s.ID, "Cannot determine type for variable '%s'", s.Name)
		t = types.Invalid
	case declared != nil && inferred != nil:
		if !types.IsInvalid(declared) && !types.IsInvalid(inferred) && !types.Compatible(declared, inferred) {
			a.errorf(TypeMismatch, s.Init, "cannot initialize '%s' of type %s with a value of type %s",
				s.Name, declared, inferred)
		}
		t = declared
	case declared != nil:
		t = declared
	default:
		t = inferred
		if types.IsVoid(t) {
			a.errorf(UninferableType, s.Init, "Cannot determine type for variable '%s': initializer has no value", s.Name)
			t = types.Invalid
		}
	}

	// Declared even when broken, so later uses do not cascade into
	// unresolved-identifier errors.
	a.result.Locals[s.ID] = t
	typeNode := s.Type
	if typeNode == ast.NoNode {
		typeNode = s.Init
	}
	if sym := a.declare(s.Name, symtab.SymbolVariable, s.ID, typeNode); sym != nil {
		a.symTypes[sym] = t
	}
}

func (a *Analyzer) analyzeReturn(s *ast.Return) {
	fn := a.function
	if fn == nil {
		a.errorf(UnknownNodeShape, s.ID, "return outside a function")
		return
	}

	if s.Value == ast.NoNode {
		if !types.IsVoid(fn.Return) && !types.IsInvalid(fn.Return) {
			a.errorf(TypeMismatch, s.ID, "missing return value in '%s', which returns %s", fn.Name, fn.Return)
		}
		return
	}

	t := a.exprType(s.Value)
	switch {
	case types.IsInvalid(t):
	case types.IsVoid(fn.Return):
		a.errorf(TypeMismatch, s.Value, "'%s' has no return type but returns a value of type %s", fn.Name, t)
	case types.IsInvalid(fn.Return):
	case !types.Compatible(fn.Return, t):
		a.errorf(TypeMismatch, s.Value, "cannot return %s from '%s', which returns %s", t, fn.Name, fn.Return)
	}
}

// analyzePrompt records which in-scope variables the template's markers
// capture. Markers naming nothing are left in the text and only warned
// about.
func (a *Analyzer) analyzePrompt(s *ast.Prompt) {
	var captures []Ref
	for _, name := range prompt.Markers(s.Template) {
		sym := a.table.Lookup(name)
		if sym == nil || !sym.IsValue() {
			a.warnf(UnresolvedMarker, s.ID, "prompt marker {%s} does not name a variable and is sent verbatim", name)
			continue
		}
		captures = append(captures, a.ref(sym))
	}
	a.result.Captures[s.ID] = captures
}
