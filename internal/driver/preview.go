package driver

import (
	"github.com/pkg/errors"

	"github.com/hassan/vibelang/internal/config"
	"github.com/hassan/vibelang/internal/parser"
	"github.com/hassan/vibelang/internal/parser/ast"
	"github.com/hassan/vibelang/internal/prompt"
	"github.com/hassan/vibelang/internal/runtime"
	"github.com/hassan/vibelang/internal/semantic"
	"github.com/hassan/vibelang/internal/semantic/types"
)

// previewFunc wraps the call being previewed so it is analyzed in the
// context of the declarations it uses.
const previewFunc = "__vibec_preview"

// ErrNoPrompt is returned when the called function contains no prompt.
var ErrNoPrompt = errors.New("function has no prompt")

// Preview is what one call of a prompting function sends to the model.
type Preview struct {
	Function *semantic.Function

	// Template is the prompt as written; Text is the template with the
	// arguments substituted. Markers naming locals or members are left in
	// Text as written since their values only exist at run time.
	Template string
	Text     string

	// Meaning is the description sent with the prompt, "" for none.
	Meaning string

	// Accessor converts the reply; "" for functions without a return type.
	Accessor string

	// Params are the model parameters configured for the function.
	Params config.Params
}

// PreviewPrompt shows what call would send to the model when run against
// the declarations in source. call is a VibeLang call expression whose
// arguments are literals, such as getTemperature("Paris").
//
// The arguments are converted the way the generated code converts them:
// each literal becomes a runtime value that is read back through the
// parameter's type and substituted with the format_prompt rules.
func (c *Compiler) PreviewPrompt(name, source, call string) (*Preview, error) {
	src := source + "\nfn " + previewFunc + "() {\n" + call + ";\n}\n"
	tree, errs := parser.Parse(name, src, c.Config.Limits())
	if len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "parsing call")
	}
	a := semantic.New(c.logger())
	a.MaxDepth = c.Config.Compiler.MaxDepth
	res := a.Analyze(tree)
	if !res.OK() {
		return nil, errors.Wrap(res.Errors[0], "checking call")
	}

	callID, err := previewCall(tree)
	if err != nil {
		return nil, err
	}
	fn := res.Calls[callID]
	if fn == nil {
		return nil, errors.Errorf("%s is not a function call", call)
	}
	promptID := firstPrompt(tree, fn.Decl)
	if promptID == ast.NoNode {
		return nil, errors.Wrap(ErrNoPrompt, fn.Name)
	}

	args, err := literalArgs(tree, callID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(args))
	values := make([]string, len(args))
	for i, v := range args {
		names[i] = fn.Params[i].Name
		values[i] = runtime.Render(v, fn.Params[i].Type)
	}
	template := tree.GetString(promptID, ast.PropTemplate)

	p := &Preview{
		Function: fn,
		Template: template,
		Text:     prompt.Format(template, names, values),
		Meaning:  types.Description(fn.Return),
		Params:   c.Config.ParamsFor(fn.Name),
	}
	p.Accessor, _ = runtime.Accessor(fn.Return)
	return p, nil
}

// Convert shows how the generated code would convert reply: it is parsed
// according to the function's return type and read back through the
// accessor. ok is false for functions without a return type, whose
// prompt result is discarded.
func (p *Preview) Convert(reply string) (value string, ok bool) {
	if p.Accessor == "" {
		return "", false
	}
	return runtime.Render(runtime.ParseResponse(reply, p.Function.Return), p.Function.Return), true
}

// previewCall finds the call inside the wrapper function.
func previewCall(tree *ast.Tree) (ast.NodeID, error) {
	decls := tree.Children(tree.Root())
	v, err := ast.Decode(tree, decls[len(decls)-1])
	if err != nil {
		return ast.NoNode, err
	}
	fd, ok := v.(*ast.FuncDecl)
	if !ok || fd.Name != previewFunc {
		return ast.NoNode, errors.New("call must be a single expression")
	}
	stmts := tree.Children(fd.Body)
	if len(stmts) != 1 || tree.Kind(stmts[0]) != ast.KindExprStmt || tree.Len(stmts[0]) != 1 {
		return ast.NoNode, errors.New("call must be a single expression")
	}
	x := tree.Child(stmts[0], 0)
	if tree.Kind(x) != ast.KindCallExpr {
		return ast.NoNode, errors.New("expected a function call")
	}
	return x, nil
}

// literalArgs converts the arguments of a call to runtime values. Only
// literals are accepted.
func literalArgs(tree *ast.Tree, call ast.NodeID) ([]runtime.Value, error) {
	v, err := ast.Decode(tree, call)
	if err != nil {
		return nil, err
	}
	var vals []runtime.Value
	for i, arg := range v.(*ast.Call).Args {
		lv, err := ast.Decode(tree, arg)
		if err != nil {
			return nil, err
		}
		lit, ok := lv.(*ast.Literal)
		if !ok {
			return nil, errors.Errorf("argument %d is not a literal", i+1)
		}
		switch lit.Kind {
		case ast.KindIntLiteral:
			vals = append(vals, runtime.NumberValue(float64(lit.Value.Int())))
		case ast.KindFloatLiteral:
			vals = append(vals, runtime.NumberValue(lit.Value.Float()))
		case ast.KindStringLiteral:
			vals = append(vals, runtime.StringValue(lit.Value.Str()))
		case ast.KindBoolLiteral:
			vals = append(vals, runtime.BoolValue(lit.Value.Bool()))
		default:
			vals = append(vals, runtime.NullValue())
		}
	}
	return vals, nil
}

// firstPrompt returns the first prompt statement in a function body, in
// source order.
func firstPrompt(tree *ast.Tree, fn ast.NodeID) ast.NodeID {
	found := ast.NoNode
	tree.Walk(fn, func(id ast.NodeID) bool {
		if found == ast.NoNode && tree.Kind(id) == ast.KindPromptBlock {
			found = id
		}
		return found == ast.NoNode
	})
	return found
}
