package semantic

import (
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic/types"
	"github.com/hassan/vibelang/internal/symtab"
)

// exprType infers the type of an expression and records it. Expressions
// that fail to check have type types.Invalid.
func (a *Analyzer) exprType(id ast.NodeID) types.Type {
	t := a.inferExpr(id)
	a.result.Types[id] = t
	return t
}

func (a *Analyzer) inferExpr(id ast.NodeID) types.Type {
	if !a.enter(id) {
		return types.Invalid
	}
	defer a.leave()

	if !a.tree.Kind(id).IsExpr() {
		a.errorf(UnknownNodeShape, id, "%s is not an expression", a.tree.Kind(id))
		return types.Invalid
	}
	v, err := ast.Decode(a.tree, id)
	if err != nil {
		a.shapeError(id, err)
		return types.Invalid
	}

	switch e := v.(type) {
	case *ast.Literal:
		return literalType(e.Kind)
	case *ast.Ident:
		return a.identType(e)
	case *ast.Call:
		return a.callType(e)
	}
	return types.Invalid
}

func literalType(k ast.Kind) types.Type {
	switch k {
	case ast.KindIntLiteral:
		return types.Int
	case ast.KindFloatLiteral:
		return types.Float
	case ast.KindStringLiteral:
		return types.String
	case ast.KindBoolLiteral:
		return types.Bool
	}
	return types.Invalid
}

// identType resolves a variable or parameter reference.
func (a *Analyzer) identType(e *ast.Ident) types.Type {
	if e.Name == "" {
		a.errorf(MissingName, e.ID, "identifier without a name")
		return types.Invalid
	}
	sym := a.table.Lookup(e.Name)
	if sym == nil {
		a.errorf(UnresolvedIdentifier, e.ID, "undefined identifier '%s'", e.Name)
		return types.Invalid
	}
	if !sym.IsValue() {
		a.errorf(TypeMismatch, e.ID, "'%s' is a %s and cannot be used as a value", e.Name, sym.Kind)
		return types.Invalid
	}
	r := a.ref(sym)
	a.result.Refs[e.ID] = r
	return r.Type
}

// callType checks a call against the callee's signature and returns the
// callee's return type.
//
// Arguments are checked even when the callee cannot be resolved, so errors
// inside them are still reported.
func (a *Analyzer) callType(e *ast.Call) types.Type {
	if e.Func == "" {
		a.errorf(MissingName, e.ID, "call without a function name")
		a.argTypes(e.Args)
		return types.Invalid
	}

	sym := a.table.Lookup(e.Func)
	if sym == nil {
		a.errorf(UnresolvedFunction, e.ID, "Call to undefined function '%s'", e.Func)
		a.argTypes(e.Args)
		return types.Invalid
	}
	if sym.Kind != symtab.SymbolFunction {
		a.errorf(NotAFunction, e.ID, "'%s' is not a function", e.Func)
		a.argTypes(e.Args)
		return types.Invalid
	}

	fn := a.signature(sym.Decl, sym.Scope)
	args := a.argTypes(e.Args)
	if fn == nil {
		return types.Invalid
	}
	a.result.Calls[e.ID] = fn

	if len(args) != len(fn.Params) {
		a.errorf(ArgumentCountMismatch, e.ID, "wrong number of arguments in call to '%s' (expected %d, got %d)",
			e.Func, len(fn.Params), len(args))
		return types.Invalid
	}

	ok := true
	for i, at := range args {
		p := fn.Params[i]
		if types.IsInvalid(at) {
			ok = false
			continue
		}
		if types.IsInvalid(p.Type) {
			continue
		}
		if !types.Compatible(p.Type, at) {
			a.errorf(TypeMismatch, e.Args[i], "Type mismatch for argument %d in call to '%s' (parameter '%s'): expected %s, got %s",
				i+1, e.Func, p.Name, p.Type, at)
			ok = false
		}
	}
	if !ok {
		return types.Invalid
	}
	return fn.Return
}

func (a *Analyzer) argTypes(args []ast.NodeID) []types.Type {
	out := make([]types.Type, len(args))
	for i, arg := range args {
		out[i] = a.exprType(arg)
	}
	return out
}
