// Package codegen lowers an analyzed VibeLang tree to C.
//
// OUTPUT LAYOUT:
//  1. Banner, runtime includes and forward declarations of the runtime
//     entry points
//  2. One struct per class
//  3. One typedef per type declaration
//  4. One prototype per function and method
//  5. One definition per function and method
//
// Methods become free functions named Class_method that take the instance
// as an explicit `self` pointer.
//
// The generator trusts the semantic.Result: it never re-checks names or
// types, and it refuses to run when the analysis failed.
package codegen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hassan/vibelang/internal/logging"
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/runtime"
	"github.com/hassan/vibelang/internal/semantic"
	"github.com/hassan/vibelang/internal/semantic/types"
)

const banner = "// Generated by VibeLang Compiler\n"

const runtimeDecls = `// Forward declarations for runtime functions
extern VibeValue vibe_execute_prompt(const char *prompt, const char *meaning);
extern char *format_prompt(const char *template, char **var_names,
                           char **var_values, int var_count);
`

// systemHeaders follow the runtime headers in the include block.
var systemHeaders = []string{"stdio.h", "stdlib.h", "string.h"}

// Generator emits C for one analyzed tree at a time. It is not safe for
// concurrent use.
type Generator struct {
	log logrus.FieldLogger

	tree *ast.Tree
	res  *semantic.Result
	out  bytes.Buffer

	// fn is the function whose body is being emitted.
	fn *semantic.Function
}

// New creates a generator that logs through log. A nil logger discards
// output.
func New(log logrus.FieldLogger) *Generator {
	return &Generator{log: logging.OrDiscard(log)}
}

// Generate writes the C translation of tree to w. Nothing is written unless
// the whole program lowers successfully.
func (g *Generator) Generate(w io.Writer, tree *ast.Tree, res *semantic.Result) error {
	if res == nil || !res.OK() {
		return ErrAnalysisFailed
	}
	g.tree, g.res, g.fn = tree, res, nil
	g.out.Reset()

	if err := g.program(tree.Root()); err != nil {
		g.log.WithError(err).Debug("code generation failed")
		return err
	}

	g.log.WithField("bytes", g.out.Len()).Debug("code generation finished")
	_, err := w.Write(g.out.Bytes())
	return err
}

// GenerateString is Generate into a string.
func (g *Generator) GenerateString(tree *ast.Tree, res *semantic.Result) (string, error) {
	var b strings.Builder
	if err := g.Generate(&b, tree, res); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (g *Generator) program(root ast.NodeID) error {
	v, err := ast.Decode(g.tree, root)
	if err != nil {
		return g.shapeError(root, err)
	}
	prog, ok := v.(*ast.Program)
	if !ok {
		return g.unknown(root, "expected a program")
	}

	// Sort declarations into the sections of the output.
	var typeDecls, classes, funcs []ast.NodeID
	for _, id := range prog.Decls {
		switch k := g.tree.Kind(id); k {
		case ast.KindTypeDecl:
			typeDecls = append(typeDecls, id)
		case ast.KindClassDecl:
			classes = append(classes, id)
			for _, c := range g.tree.Children(id) {
				if g.tree.Kind(c) == ast.KindFunctionDecl {
					funcs = append(funcs, c)
				}
			}
		case ast.KindFunctionDecl:
			funcs = append(funcs, id)
		case ast.KindImport:
			// Imports are resolved before compilation; nothing to emit.
		default:
			return g.unknown(id, "no lowering for top-level "+k.String())
		}
	}

	g.header()

	// Classes first: a type declaration may alias a class. Every class is
	// declared before any struct body so members can name later classes.
	for _, id := range classes {
		name := cIdent(g.tree.GetString(id, ast.PropName))
		g.printf("typedef struct %s %s;\n", name, name)
	}
	if len(classes) > 0 {
		g.printf("\n")
	}
	for _, id := range classes {
		if err := g.classDecl(id); err != nil {
			return err
		}
	}
	for _, id := range typeDecls {
		if err := g.typeDecl(id); err != nil {
			return err
		}
	}

	sigs := make([]*semantic.Function, len(funcs))
	for i, id := range funcs {
		fn := g.res.Functions[id]
		if fn == nil {
			return g.unknown(id, "function was not analyzed")
		}
		sigs[i] = fn
	}
	if len(sigs) == 0 {
		return nil
	}
	for _, fn := range sigs {
		sig, err := g.signature(fn)
		if err != nil {
			return err
		}
		g.printf("%s;\n", sig)
	}
	for _, fn := range sigs {
		g.printf("\n")
		if err := g.funcDef(fn); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) header() {
	g.printf("%s\n", banner)
	for _, h := range runtime.HeaderNames {
		g.printf("#include %q\n", h)
	}
	for _, h := range systemHeaders {
		g.printf("#include <%s>\n", h)
	}
	g.printf("\n%s\n", runtimeDecls)
}

func (g *Generator) printf(format string, args ...interface{}) {
	fmt.Fprintf(&g.out, format, args...)
}

// line writes one indented line.
func (g *Generator) line(indent int, format string, args ...interface{}) {
	g.out.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(&g.out, format, args...)
	g.out.WriteByte('\n')
}

// cType maps a semantic type to its C spelling. Meaning types and aliases
// lower to the C type of the basic type they wrap.
func cType(t types.Type) (string, bool) {
	switch u := types.Underlying(t).(type) {
	case *types.ClassType:
		return cIdent(u.Name) + " *", true
	default:
		switch u {
		case types.Int, types.Bool:
			return "int", true
		case types.Float:
			return "double", true
		case types.String:
			return "const char *", true
		case types.Void:
			return "void", true
		}
	}
	return "", false
}

// cDecl joins a C type and a name, keeping pointer stars next to the name.
func cDecl(ctype, name string) string {
	if strings.HasSuffix(ctype, "*") {
		return ctype + name
	}
	return ctype + " " + name
}

// cName is the C identifier of a function or method.
func cName(fn *semantic.Function) string {
	if fn.Class != "" {
		return cIdent(fn.Class) + "_" + fn.Name
	}
	return cIdent(fn.Name)
}

// cString quotes s as a C string literal.
func cString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// comment makes s safe to place after // on a single line.
func comment(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
