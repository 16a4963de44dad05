package codegen

import (
	"strings"

	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/semantic"
	"github.com/hassan/vibelang/internal/semantic/types"
)

// typeDecl emits a typedef, preceded by the meaning description when
// there is one:
//
//	// Temperature: temperature in Celsius
//	typedef int Temperature;
func (g *Generator) typeDecl(id ast.NodeID) error {
	v, err := ast.Decode(g.tree, id)
	if err != nil {
		return g.shapeError(id, err)
	}
	td := v.(*ast.TypeDecl)

	t := g.res.TypeOf(id)
	ctype, ok := cType(t)
	if !ok || types.IsVoid(t) {
		return g.unknown(id, "no C type for "+t.String())
	}
	if d := types.Description(t); d != "" {
		g.printf("// %s: %s\n", td.Name, comment(d))
	}
	g.printf("typedef %s;\n\n", cDecl(ctype, cIdent(td.Name)))
	return nil
}

// classDecl emits the struct holding a class's member variables. The
// typedef was already emitted by program, so members may refer to any
// class regardless of declaration order.
func (g *Generator) classDecl(id ast.NodeID) error {
	v, err := ast.Decode(g.tree, id)
	if err != nil {
		return g.shapeError(id, err)
	}
	cd := v.(*ast.ClassDecl)

	g.printf("// %s\n", cd.Name)
	g.printf("struct %s {\n", cIdent(cd.Name))
	for _, m := range cd.Members {
		t := g.res.TypeOf(m.Type)
		ctype, ok := cType(t)
		if !ok || types.IsVoid(t) {
			return g.unknown(m.ID, "no C type for member "+m.Name)
		}
		g.line(1, "%s;", cDecl(ctype, cIdent(m.Name)))
	}
	g.printf("};\n\n")
	return nil
}

// signature renders a function's C signature without the trailing
// semicolon or body.
func (g *Generator) signature(fn *semantic.Function) (string, error) {
	ret, ok := cType(fn.Return)
	if !ok {
		return "", g.unknown(fn.Decl, "no C type for return type "+fn.Return.String())
	}

	params := make([]string, 0, len(fn.Params)+1)
	if fn.Class != "" {
		params = append(params, cIdent(fn.Class)+" *self")
	}
	for _, p := range fn.Params {
		ctype, ok := cType(p.Type)
		if !ok || types.IsVoid(p.Type) {
			return "", g.unknown(fn.Decl, "no C type for parameter "+p.Name)
		}
		params = append(params, cDecl(ctype, cIdent(p.Name)))
	}
	return cDecl(ret, cName(fn)) + "(" + strings.Join(params, ", ") + ")", nil
}

// funcDef emits a function definition.
func (g *Generator) funcDef(fn *semantic.Function) error {
	sig, err := g.signature(fn)
	if err != nil {
		return err
	}
	v, err := ast.Decode(g.tree, fn.Decl)
	if err != nil {
		return g.shapeError(fn.Decl, err)
	}
	fd := v.(*ast.FuncDecl)

	g.fn = fn
	defer func() { g.fn = nil }()

	g.printf("%s {\n", sig)
	for _, stmt := range g.tree.Children(fd.Body) {
		if err := g.stmt(stmt, 1); err != nil {
			return err
		}
	}
	g.printf("}\n")
	return nil
}
