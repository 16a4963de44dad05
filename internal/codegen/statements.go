package codegen

import (
	"strconv"
	"strings"

	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/runtime"
	"github.com/hassan/vibelang/internal/semantic"
	"github.com/hassan/vibelang/internal/semantic/types"
)

// numberBufSize holds any int or double printed with %d or %g.
const numberBufSize = 32

func (g *Generator) stmt(id ast.NodeID, indent int) error {
	v, err := ast.Decode(g.tree, id)
	if err != nil {
		return g.shapeError(id, err)
	}

	switch s := v.(type) {
	case *ast.Block:
		g.line(indent, "{")
		for _, c := range s.Stmts {
			if err := g.stmt(c, indent+1); err != nil {
				return err
			}
		}
		g.line(indent, "}")

	case *ast.VarDecl:
		t := g.res.Locals[s.ID]
		ctype, ok := cType(t)
		if !ok || types.IsVoid(t) {
			return g.unknown(id, "no C type for variable "+s.Name)
		}
		if s.Init == ast.NoNode {
			g.line(indent, "%s;", cDecl(ctype, cIdent(s.Name)))
			return nil
		}
		x, err := g.expr(s.Init)
		if err != nil {
			return err
		}
		g.line(indent, "%s = %s;", cDecl(ctype, cIdent(s.Name)), x)

	case *ast.Return:
		if s.Value == ast.NoNode {
			g.line(indent, "return;")
			return nil
		}
		x, err := g.expr(s.Value)
		if err != nil {
			return err
		}
		g.line(indent, "return %s;", x)

	case *ast.ExprStmt:
		if s.X == ast.NoNode {
			g.line(indent, ";")
			return nil
		}
		x, err := g.expr(s.X)
		if err != nil {
			return err
		}
		g.line(indent, "%s;", x)

	case *ast.Prompt:
		return g.prompt(s, indent)

	default:
		return g.unknown(id, "not a statement")
	}
	return nil
}

// prompt lowers a prompt statement. The captured variables are rendered to
// strings, the template is formatted with them, the runtime executes it
// with the function's meaning as tag, and the result is converted to the
// function's return type:
//
//	{
//	  VibeValue prompt_result;
//	  ...
//	  prompt_result = vibe_execute_prompt(formatted_prompt, "tag");
//	  ...
//	  return vibe_value_get_int(&prompt_result);
//	}
func (g *Generator) prompt(s *ast.Prompt, indent int) error {
	fn := g.fn
	captures := g.res.Captures[s.ID]

	accessor, convert := "", !types.IsVoid(fn.Return)
	if convert {
		var ok bool
		if accessor, ok = runtime.Accessor(fn.Return); !ok {
			return g.unknown(s.ID, "cannot convert a prompt result to "+fn.Return.String())
		}
	}

	tag := "NULL"
	if d := types.Description(fn.Return); d != "" {
		tag = cString(d)
	}

	in := indent + 1
	g.line(indent, "// LLM Prompt: %s", comment(s.Template))
	g.line(indent, "{")
	g.line(in, "VibeValue prompt_result;")
	g.line(in, "const char *prompt_template = %s;", cString(s.Template))
	g.line(in, "int var_count = %d;", len(captures))
	g.line(in, "char **var_names = malloc(sizeof(char *) * var_count);")
	g.line(in, "char **var_values = malloc(sizeof(char *) * var_count);")
	for i, c := range captures {
		g.line(in, "var_names[%d] = %s;", i, cString(c.Name))
		if err := g.captureValue(s.ID, in, i, c); err != nil {
			return err
		}
	}
	g.line(in, "char *formatted_prompt =")
	g.line(in+2, "format_prompt(prompt_template, var_names, var_values, var_count);")
	g.line(in, "prompt_result = vibe_execute_prompt(formatted_prompt, %s);", tag)
	g.line(in, "// Free resources")
	g.line(in, "free(formatted_prompt);")
	g.line(in, "for (int i = 0; i < var_count; i++) {")
	g.line(in+1, "free(var_values[i]);")
	g.line(in, "}")
	g.line(in, "free(var_names);")
	g.line(in, "free(var_values);")
	if convert {
		g.line(in, "// Convert LLM response to the appropriate return type")
		g.line(in, "return %s(&prompt_result);", accessor)
	} else {
		g.line(in, "(void)prompt_result;")
	}
	g.line(indent, "}")
	return nil
}

// captureValue renders one captured variable into var_values[i] as a heap
// string the prompt block frees.
func (g *Generator) captureValue(prompt ast.NodeID, indent, i int, c semantic.Ref) error {
	x := cIdent(c.Name)
	if c.Member {
		x = "self->" + x
	}

	switch types.Underlying(c.Type) {
	case types.String:
		g.line(indent, "var_values[%d] = strdup(%s ? %s : \"\");", i, x, x)
	case types.Bool:
		g.line(indent, "var_values[%d] = strdup(%s ? \"true\" : \"false\");", i, x)
	case types.Int:
		g.line(indent, "var_values[%d] = malloc(%d);", i, numberBufSize)
		g.line(indent, "snprintf(var_values[%d], %d, \"%%d\", %s);", i, numberBufSize, x)
	case types.Float:
		g.line(indent, "var_values[%d] = malloc(%d);", i, numberBufSize)
		g.line(indent, "snprintf(var_values[%d], %d, \"%%g\", %s);", i, numberBufSize, x)
	default:
		return g.unknown(prompt, "cannot interpolate {"+c.Name+"} of type "+c.Type.String())
	}
	return nil
}

func (g *Generator) expr(id ast.NodeID) (string, error) {
	v, err := ast.Decode(g.tree, id)
	if err != nil {
		return "", g.shapeError(id, err)
	}

	switch e := v.(type) {
	case *ast.Literal:
		return g.literal(e)

	case *ast.Ident:
		if ref, ok := g.res.Refs[id]; ok && ref.Member {
			return "self->" + cIdent(e.Name), nil
		}
		return cIdent(e.Name), nil

	case *ast.Call:
		fn := g.res.Calls[id]
		if fn == nil {
			return "", g.unknown(id, "call to "+e.Func+" was not resolved")
		}
		args := make([]string, 0, len(e.Args)+1)
		if fn.Class != "" {
			args = append(args, "self")
		}
		for _, a := range e.Args {
			x, err := g.expr(a)
			if err != nil {
				return "", err
			}
			args = append(args, x)
		}
		return cName(fn) + "(" + strings.Join(args, ", ") + ")", nil

	default:
		return "", g.unknown(id, "not an expression")
	}
}

func (g *Generator) literal(e *ast.Literal) (string, error) {
	switch e.Kind {
	case ast.KindIntLiteral:
		return strconv.FormatInt(e.Value.Int(), 10), nil
	case ast.KindFloatLiteral:
		s := strconv.FormatFloat(e.Value.Float(), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s, nil
	case ast.KindStringLiteral:
		return cString(e.Value.Str()), nil
	case ast.KindBoolLiteral:
		if e.Value.Bool() {
			return "1", nil
		}
		return "0", nil
	}
	return "", g.unknown(e.ID, "no lowering for literal")
}
