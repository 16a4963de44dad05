// Package semantic implements semantic analysis for VibeLang.
//
// SEMANTIC ANALYSIS:
// After parsing we have a syntactically valid tree. The analyzer checks:
// 1. Name resolution - every identifier, call and type name is declared
// 2. Declarations - no name is declared twice in the same scope
// 3. Type checking - call arguments, initializers and return values are
//    compatible with the slots they flow into (see package types)
// 4. Prompts - which variables each {marker} of a prompt template captures
//
// DESIGN:
// - Collect every error instead of stopping at the first one. A problem
//   abandons the statement or declaration it was found in and analysis
//   resumes with the next sibling.
// - Top-level names are declared before any body is checked, so functions
//   may call functions declared further down the file.
// - Results (types, call targets, prompt captures) are stored in a Result
//   keyed by node handle rather than written into the tree.
package semantic

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hassan/vibelang/internal/logging"
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic/types"
	"github.com/hassan/vibelang/internal/symtab"
)

// Analyzer performs semantic analysis on a tree. An Analyzer may be reused
// for several trees but must not be shared between goroutines.
type Analyzer struct {
	// MaxDepth bounds how deeply statements and expressions may nest
	// during the walk. Exceeding it aborts the analysis.
	MaxDepth int

	log    logrus.FieldLogger
	tree   *ast.Tree
	table  *symtab.Table
	result *Result

	// symTypes holds the resolved type of every declared symbol.
	symTypes map[*symtab.Symbol]types.Type

	// resolving guards type alias resolution against cycles.
	resolving map[ast.NodeID]bool

	// typeScope, when set, is where type names are looked up instead of
	// the current scope. Signatures and aliases resolve in the scope that
	// declares them, not in the scope of whoever uses them first.
	typeScope *symtab.Scope

	// function is the signature of the function being analyzed.
	function *Function

	depth   int
	aborted bool
}

// New creates an analyzer that reports through log. A nil logger discards
// output.
func New(log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		MaxDepth: ast.DefaultMaxDepth,
		log:      logging.OrDiscard(log),
	}
}

// Analyze checks the program rooted at tree.Root() and returns the
// diagnostics and annotations. The pass succeeds only if Result.OK().
func (a *Analyzer) Analyze(tree *ast.Tree) *Result {
	a.tree = tree
	a.result = newResult()
	a.symTypes = make(map[*symtab.Symbol]types.Type)
	a.resolving = make(map[ast.NodeID]bool)
	a.function = nil
	a.typeScope = nil
	a.depth = 0
	a.aborted = false

	root := tree.Root()
	if tree.Kind(root) != ast.KindProgram {
		a.errorf(UnknownNodeShape, root, "expected a program, got %s", tree.Kind(root))
		return a.result
	}
	a.table = symtab.NewTable(root)

	decls := tree.Children(root)
	for _, id := range decls {
		a.declareDecl(id)
	}
	for _, id := range decls {
		if a.tree.Kind(id) == ast.KindFunctionDecl && a.tree.GetString(id, ast.PropName) != "" {
			a.signature(id, a.table.Root())
		}
	}
	for _, id := range decls {
		if a.aborted {
			break
		}
		a.analyzeDecl(id)
	}

	a.log.WithFields(logrus.Fields{
		"errors":   len(a.result.Errors),
		"warnings": len(a.result.Warnings),
	}).Debug("semantic analysis finished")
	return a.result
}

// declareDecl declares a top-level name without checking its body.
func (a *Analyzer) declareDecl(id ast.NodeID) {
	name := a.tree.GetString(id, ast.PropName)

	switch kind := a.tree.Kind(id); kind {
	case ast.KindImport:
		a.result.Imports = append(a.result.Imports, a.tree.GetString(id, ast.PropPath))

	case ast.KindTypeDecl:
		if name == "" {
			a.errorf(MissingName, id, "type declaration without a name")
			return
		}
		a.declare(name, symtab.SymbolType, id, a.tree.Child(id, 0))

	case ast.KindFunctionDecl:
		if name == "" {
			a.errorf(MissingName, id, "function declaration without a name")
			return
		}
		a.declare(name, symtab.SymbolFunction, id, returnTypeNode(a.tree, id))

	case ast.KindClassDecl:
		if name == "" {
			a.errorf(MissingName, id, "class declaration without a name")
			return
		}
		a.declare(name, symtab.SymbolClass, id, ast.NoNode)

	default:
		a.errorf(UnknownNodeShape, id, "unexpected %s at top level", kind)
	}
}

// analyzeDecl checks one top-level declaration.
func (a *Analyzer) analyzeDecl(id ast.NodeID) {
	switch a.tree.Kind(id) {
	case ast.KindTypeDecl:
		if a.tree.GetString(id, ast.PropName) == "" {
			return
		}
		v, err := ast.Decode(a.tree, id)
		if err != nil {
			a.shapeError(id, err)
			return
		}
		td := v.(*ast.TypeDecl)
		if sym := a.table.Root().LookupLocal(td.Name); sym != nil && sym.Decl == id {
			a.result.Types[id] = a.aliasType(sym)
		} else {
			a.resolveType(td.Type)
		}

	case ast.KindFunctionDecl:
		a.analyzeFunc(id)

	case ast.KindClassDecl:
		a.analyzeClass(id)
	}
}

// analyzeFunc checks a function or method body in a fresh scope holding
// its parameters.
func (a *Analyzer) analyzeFunc(id ast.NodeID) {
	v, err := ast.Decode(a.tree, id)
	if err != nil {
		a.shapeError(id, err)
		return
	}
	fd := v.(*ast.FuncDecl)
	if fd.Name == "" {
		return
	}

	fn := a.signature(id, a.table.Current())
	if fn == nil {
		return
	}
	outer := a.function
	a.function = fn
	defer func() { a.function = outer }()

	a.table.Open(symtab.ScopeFunction, id)
	defer a.closeScope()

	for i, p := range fd.Params {
		if p.Name == "" {
			a.errorf(MissingName, p.ID, "parameter %d of '%s' has no name", i+1, fd.Name)
			continue
		}
		if sym := a.declare(p.Name, symtab.SymbolParameter, p.ID, p.Type); sym != nil {
			a.symTypes[sym] = fn.Params[i].Type
		}
	}

	// The body shares the function scope with the parameters.
	a.analyzeStmts(a.tree.Children(fd.Body))
}

// analyzeClass declares members and methods in a class scope, then checks
// each method.
func (a *Analyzer) analyzeClass(id ast.NodeID) {
	v, err := ast.Decode(a.tree, id)
	if err != nil {
		a.shapeError(id, err)
		return
	}
	cd := v.(*ast.ClassDecl)
	if cd.Name == "" {
		return
	}

	a.table.Open(symtab.ScopeClass, id)
	defer a.table.Close()

	for _, m := range cd.Members {
		if m.Name == "" {
			a.errorf(MissingName, m.ID, "member of class '%s' has no name", cd.Name)
			continue
		}
		t := a.resolveType(m.Type)
		if sym := a.declare(m.Name, symtab.SymbolVariable, m.ID, m.Type); sym != nil {
			a.symTypes[sym] = t
		}
	}

	var methods []ast.NodeID
	for _, mid := range cd.Methods {
		name := a.tree.GetString(mid, ast.PropName)
		if name == "" {
			a.errorf(MissingName, mid, "method of class '%s' has no name", cd.Name)
			continue
		}
		if a.declare(name, symtab.SymbolFunction, mid, returnTypeNode(a.tree, mid)) != nil {
			methods = append(methods, mid)
		}
	}
	for _, mid := range methods {
		a.signature(mid, a.table.Current())
	}
	for _, mid := range methods {
		if a.aborted {
			return
		}
		a.analyzeFunc(mid)
	}
}

// signature resolves and caches the parameter and return types of a
// function declaration, looking type names up from scope, the scope the
// function is declared in. It returns nil for malformed declarations.
func (a *Analyzer) signature(id ast.NodeID, scope *symtab.Scope) *Function {
	if fn, ok := a.result.Functions[id]; ok {
		return fn
	}
	v, err := ast.Decode(a.tree, id)
	if err != nil {
		return nil
	}
	fd, ok := v.(*ast.FuncDecl)
	if !ok {
		return nil
	}

	defer a.resolveIn(scope)()

	fn := &Function{Name: fd.Name, Decl: id, Return: types.Void}
	if p := a.tree.Parent(id); a.tree.Kind(p) == ast.KindClassDecl {
		fn.Class = a.tree.GetString(p, ast.PropName)
	}
	for _, p := range fd.Params {
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: a.resolveType(p.Type)})
	}
	if fd.Return != ast.NoNode {
		fn.Return = a.resolveType(fd.Return)
	}
	a.result.Functions[id] = fn
	return fn
}

// closeScope warns about local variables of the innermost scope that were
// never read, then closes it. Parameters are part of a function's
// signature and are not reported.
func (a *Analyzer) closeScope() {
	if !a.aborted {
		for _, sym := range a.table.Current().UnusedSymbols() {
			if sym.Kind == symtab.SymbolVariable {
				a.warnf(UnusedVariable, sym.Decl, "variable '%s' is declared but never used", sym.Name)
			}
		}
	}
	a.table.Close()
}

// resolveIn makes type names resolve from scope until the returned
// function is called.
func (a *Analyzer) resolveIn(scope *symtab.Scope) func() {
	outer := a.typeScope
	a.typeScope = scope
	return func() { a.typeScope = outer }
}

// returnTypeNode scans a function's children for its return type node.
func returnTypeNode(tree *ast.Tree, fn ast.NodeID) ast.NodeID {
	for _, c := range tree.Children(fn) {
		if tree.Kind(c).IsType() {
			return c
		}
	}
	return ast.NoNode
}

// declare adds a symbol to the current scope, reporting duplicates.
func (a *Analyzer) declare(name string, kind symtab.SymbolKind, decl, typ ast.NodeID) *symtab.Symbol {
	sym, err := a.table.Current().DeclareAt(name, kind, decl, typ, a.tree.Pos(decl))
	if err != nil {
		a.errorf(DuplicateSymbol, decl, "%v", err)
		return nil
	}
	return sym
}

// symType returns the resolved type of a symbol, or types.Invalid.
func (a *Analyzer) symType(sym *symtab.Symbol) types.Type {
	if t, ok := a.symTypes[sym]; ok {
		return t
	}
	return types.Invalid
}

// ref describes a value symbol for the code generator.
func (a *Analyzer) ref(sym *symtab.Symbol) Ref {
	return Ref{
		Name:   sym.Name,
		Kind:   sym.Kind,
		Type:   a.symType(sym),
		Member: sym.Scope != nil && sym.Scope.Kind == symtab.ScopeClass,
	}
}

// enter tracks walk depth and aborts the analysis when it grows past
// MaxDepth. Every successful enter must be paired with leave.
func (a *Analyzer) enter(id ast.NodeID) bool {
	if a.aborted {
		return false
	}
	if a.depth >= a.MaxDepth {
		a.errorf(ResourceExhausted, id, "nesting deeper than %d levels", a.MaxDepth)
		a.aborted = true
		return false
	}
	a.depth++
	return true
}

func (a *Analyzer) leave() { a.depth-- }

// errorf records an error diagnostic at the position of node id.
func (a *Analyzer) errorf(kind Kind, id ast.NodeID, format string, args ...interface{}) {
	d := a.diagnostic(kind, SeverityError, id, fmt.Sprintf(format, args...))
	a.result.Errors = append(a.result.Errors, d)
	a.log.WithFields(logrus.Fields{"pos": d.Pos.String(), "kind": kind.String()}).Debug(d.Message)
}

// warnf records a warning. Warnings never fail the analysis.
func (a *Analyzer) warnf(kind Kind, id ast.NodeID, format string, args ...interface{}) {
	d := a.diagnostic(kind, SeverityWarning, id, fmt.Sprintf(format, args...))
	a.result.Warnings = append(a.result.Warnings, d)
	a.log.WithFields(logrus.Fields{"pos": d.Pos.String(), "kind": kind.String()}).Warn(d.Message)
}

func (a *Analyzer) diagnostic(kind Kind, sev Severity, id ast.NodeID, msg string) Diagnostic {
	return Diagnostic{Kind: kind, Severity: sev, Pos: a.tree.Pos(id), Node: id, Message: msg}
}

// shapeError reports a node whose structure does not match its kind.
func (a *Analyzer) shapeError(id ast.NodeID, err error) {
	var se *ast.ShapeError
	if errors.As(err, &se) {
		a.errorf(UnknownNodeShape, se.Node, "malformed %s: %s", se.Kind, se.Reason)
		return
	}
	a.errorf(UnknownNodeShape, id, "%v", err)
}
