package ast

import (
	"errors"
	"testing"
)

// buildFunc builds fn name(city: String) -> ret { prompt "..." }.
func buildFunc(t *testing.T, tree *Tree, ret string) NodeID {
	t.Helper()
	fn := mustNew(t, tree, KindFunctionDecl)
	tree.SetString(fn, PropName, "getTemperature")

	params := mustNew(t, tree, KindParamList)
	param := mustNew(t, tree, KindParameter)
	tree.SetString(param, PropName, "city")
	ptype := mustNew(t, tree, KindBasicType)
	tree.SetString(ptype, PropType, TypeString)
	mustAdd(t, tree, param, ptype)
	mustAdd(t, tree, params, param)
	mustAdd(t, tree, fn, params)

	if ret != "" {
		rt := mustNew(t, tree, KindBasicType)
		tree.SetString(rt, PropType, ret)
		mustAdd(t, tree, fn, rt)
	}

	body := mustNew(t, tree, KindFunctionBody)
	prompt := mustNew(t, tree, KindPromptBlock)
	tree.SetString(prompt, PropTemplate, "What is the temperature in {city}?")
	mustAdd(t, tree, body, prompt)
	mustAdd(t, tree, fn, body)
	return fn
}

func TestDecode_FuncDecl(t *testing.T) {
	tree := NewTree(DefaultLimits())
	id := buildFunc(t, tree, "Temperature")

	v, err := Decode(tree, id)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	fn, ok := v.(*FuncDecl)
	if !ok {
		t.Fatalf("Decode() = %T, want *FuncDecl", v)
	}
	if fn.Name != "getTemperature" {
		t.Errorf("Name = %q, want %q", fn.Name, "getTemperature")
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "city" {
		t.Fatalf("Params = %+v", fn.Params)
	}
	if got := tree.GetString(fn.Params[0].Type, PropType); got != TypeString {
		t.Errorf("param type = %q, want %q", got, TypeString)
	}
	if got := tree.GetString(fn.Return, PropType); got != "Temperature" {
		t.Errorf("return type = %q, want %q", got, "Temperature")
	}

	bv, err := Decode(tree, fn.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := bv.(*Block)
	if !body.Body || len(body.Stmts) != 1 {
		t.Fatalf("body = %+v", body)
	}
	pv, _ := Decode(tree, body.Stmts[0])
	if p, ok := pv.(*Prompt); !ok || p.Template != "What is the temperature in {city}?" {
		t.Errorf("prompt = %+v", pv)
	}
}

func TestDecode_VoidFunction(t *testing.T) {
	tree := NewTree(DefaultLimits())
	v, err := Decode(tree, buildFunc(t, tree, ""))
	if err != nil {
		t.Fatal(err)
	}
	if fn := v.(*FuncDecl); fn.Return != NoNode {
		t.Errorf("Return = %d, want NoNode", fn.Return)
	}
}

func TestDecode_VarDecl(t *testing.T) {
	tree := NewTree(DefaultLimits())
	decl := mustNew(t, tree, KindVarDecl)
	tree.SetString(decl, PropName, "temp")
	typ := mustNew(t, tree, KindBasicType)
	tree.SetString(typ, PropType, TypeInt)
	lit := mustNew(t, tree, KindIntLiteral)
	tree.SetInt(lit, PropValue, 25)
	mustAdd(t, tree, decl, typ)
	mustAdd(t, tree, decl, lit)

	v, err := Decode(tree, decl)
	if err != nil {
		t.Fatal(err)
	}
	vd := v.(*VarDecl)
	if vd.Name != "temp" || vd.Type != typ || vd.Init != lit {
		t.Errorf("VarDecl = %+v", vd)
	}

	lv, _ := Decode(tree, lit)
	if l := lv.(*Literal); l.Kind != KindIntLiteral || l.Value.Int() != 25 {
		t.Errorf("Literal = %+v", l)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tree := NewTree(DefaultLimits())

	decl := mustNew(t, tree, KindTypeDecl)
	tree.SetString(decl, PropName, "Broken")
	if _, err := Decode(tree, decl); err == nil {
		t.Errorf("Decode(type decl without type) succeeded")
	}

	meaning := mustNew(t, tree, KindMeaningType)
	var shape *ShapeError
	if _, err := Decode(tree, meaning); !errors.As(err, &shape) {
		t.Errorf("Decode(meaning without base) error = %v, want *ShapeError", err)
	}

	if _, err := Decode(tree, NoNode); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("Decode(NoNode) error = %v, want ErrInvalidNode", err)
	}
}
