package semantic

import (
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic/types"
	"github.com/hassan/vibelang/internal/symtab"
)

// resolveType resolves a type node to a semantic type. Results are cached
// per node, so each bad reference is reported once.
func (a *Analyzer) resolveType(id ast.NodeID) types.Type {
	if t, ok := a.result.Types[id]; ok {
		return t
	}
	t := a.resolveTypeNode(id)
	a.result.Types[id] = t
	return t
}

func (a *Analyzer) resolveTypeNode(id ast.NodeID) types.Type {
	v, err := ast.Decode(a.tree, id)
	if err != nil {
		a.shapeError(id, err)
		return types.Invalid
	}

	switch n := v.(type) {
	case *ast.BasicType:
		if n.Name == "" {
			a.errorf(MissingName, id, "type reference without a name")
			return types.Invalid
		}
		if b := types.LookupBasic(n.Name); b != nil {
			return b
		}
		return a.namedType(id, n.Name)

	case *ast.MeaningType:
		base := a.resolveType(n.Base)
		if types.IsInvalid(base) {
			return types.Invalid
		}
		if !types.IsBasic(types.Underlying(base)) || types.IsVoid(base) {
			a.errorf(TypeMismatch, id, "Meaning must wrap a basic type, got %s", base)
			return types.Invalid
		}
		return types.NewMeaning(types.Underlying(base), n.Meaning)

	default:
		a.errorf(UnknownNodeShape, id, "%s is not a type", a.tree.Kind(id))
		return types.Invalid
	}
}

// namedType resolves a type name that is not a basic type: a declared type
// alias or a class.
func (a *Analyzer) namedType(ref ast.NodeID, name string) types.Type {
	scope := a.typeScope
	if scope == nil {
		scope = a.table.Current()
	}
	sym := scope.Lookup(name)
	if sym == nil {
		a.errorf(UnresolvedIdentifier, ref, "unknown type '%s'", name)
		return types.Invalid
	}
	switch sym.Kind {
	case symtab.SymbolType:
		return a.aliasType(sym)
	case symtab.SymbolClass:
		return &types.ClassType{Name: sym.Name}
	default:
		a.errorf(TypeMismatch, ref, "'%s' is a %s, not a type", name, sym.Kind)
		return types.Invalid
	}
}

// aliasType resolves the type a type declaration names. A Meaning type
// takes the alias as its display name.
func (a *Analyzer) aliasType(sym *symtab.Symbol) types.Type {
	if t, ok := a.symTypes[sym]; ok {
		return t
	}
	if a.resolving[sym.Decl] {
		a.errorf(TypeMismatch, sym.Decl, "type '%s' is defined in terms of itself", sym.Name)
		return types.Invalid
	}

	a.resolving[sym.Decl] = true
	restore := a.resolveIn(sym.Scope)
	t := a.resolveType(sym.Type)
	restore()
	delete(a.resolving, sym.Decl)

	if m, ok := t.(*types.MeaningType); ok && m.Alias == "" {
		named := *m
		named.Alias = sym.Name
		t = &named
	}
	a.symTypes[sym] = t
	return t
}
