package ast

import "fmt"

// View is a statically typed record decoded from one node. Every syntax form
// has exactly one view type, so consumers can type-switch exhaustively.
type View interface {
	Node() NodeID
	view()
}

// ShapeError reports a node whose children or properties do not match the
// form its kind promises.
type ShapeError struct {
	Node   NodeID
	Kind   Kind
	Pos    Position
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: malformed %s: %s", e.Pos, e.Kind, e.Reason)
	}
	return fmt.Sprintf("malformed %s: %s", e.Kind, e.Reason)
}

type base struct{ ID NodeID }

func (b base) Node() NodeID { return b.ID }
func (base) view()          {}

// Program is the root: imports and top-level declarations in source order.
type Program struct {
	base
	Decls []NodeID
}

// Import is `import "path"`.
type Import struct {
	base
	Path string
}

// TypeDecl is `type Name = T`.
type TypeDecl struct {
	base
	Name string
	Type NodeID
}

// FuncDecl is a function or method. Return is NoNode for functions without
// a declared return type.
type FuncDecl struct {
	base
	Name   string
	Params []*Param
	Return NodeID
	Body   NodeID
}

// Param is one `name: T` parameter.
type Param struct {
	base
	Name string
	Type NodeID
}

// ParamList groups the parameters of a function.
type ParamList struct {
	base
	Params []*Param
}

// ClassDecl is a class with member variables and methods.
type ClassDecl struct {
	base
	Name    string
	Members []*MemberVar
	Methods []NodeID
}

// MemberVar is one `name: T;` member of a class.
type MemberVar struct {
	base
	Name string
	Type NodeID
}

// Block is a braced statement list. Body is set for function bodies.
type Block struct {
	base
	Stmts []NodeID
	Body  bool
}

// VarDecl is `let name [: T] [= init];`.
type VarDecl struct {
	base
	Name string
	Type NodeID
	Init NodeID
}

// Return is `return [expr];`.
type Return struct {
	base
	Value NodeID
}

// Prompt is a `prompt "template"` statement.
type Prompt struct {
	base
	Template string
}

// ExprStmt is an expression used as a statement. X is NoNode for `;`.
type ExprStmt struct {
	base
	X NodeID
}

// Decode builds the typed view of a node.
func Decode(t *Tree, id NodeID) (View, error) {
	if !t.Valid(id) {
		return nil, ErrInvalidNode
	}
	d := decoder{t: t, id: id}
	switch t.Kind(id) {
	case KindProgram:
		return &Program{base{id}, t.Children(id)}, nil
	case KindImport:
		return &Import{base{id}, t.GetString(id, PropPath)}, nil
	case KindTypeDecl:
		return d.typeDecl()
	case KindFunctionDecl:
		return d.funcDecl()
	case KindParamList:
		params, err := d.params()
		if err != nil {
			return nil, err
		}
		return &ParamList{base{id}, params}, nil
	case KindParameter:
		return d.param(id)
	case KindFunctionBody, KindBlock:
		return &Block{base{id}, t.Children(id), t.Kind(id) == KindFunctionBody}, nil
	case KindClassDecl:
		return d.classDecl()
	case KindMemberVar:
		return d.member(id)
	case KindVarDecl:
		return d.varDecl()
	case KindReturnStmt:
		if t.Len(id) > 1 {
			return nil, d.malformed("more than one return value")
		}
		return &Return{base{id}, t.Child(id, 0)}, nil
	case KindPromptBlock:
		return &Prompt{base{id}, t.GetString(id, PropTemplate)}, nil
	case KindExprStmt:
		if t.Len(id) > 1 {
			return nil, d.malformed("more than one expression")
		}
		return &ExprStmt{base{id}, t.Child(id, 0)}, nil
	default:
		return d.expr()
	}
}

type decoder struct {
	t  *Tree
	id NodeID
}

func (d decoder) malformed(reason string) error {
	return &ShapeError{Node: d.id, Kind: d.t.Kind(d.id), Pos: d.t.Pos(d.id), Reason: reason}
}

func (d decoder) typeDecl() (View, error) {
	typ := d.t.Child(d.id, 0)
	if !d.t.Kind(typ).IsType() {
		return nil, d.malformed("missing type")
	}
	return &TypeDecl{base{d.id}, d.t.GetString(d.id, PropName), typ}, nil
}

// funcDecl scans the children by kind, since the return type is optional
// and may appear anywhere before the body.
func (d decoder) funcDecl() (View, error) {
	fn := &FuncDecl{base: base{d.id}, Name: d.t.GetString(d.id, PropName)}
	for _, c := range d.t.Children(d.id) {
		switch k := d.t.Kind(c); {
		case k == KindParamList:
			params, err := decoder{d.t, c}.params()
			if err != nil {
				return nil, err
			}
			fn.Params = params
		case k.IsType():
			fn.Return = c
		case k == KindFunctionBody || k == KindBlock:
			fn.Body = c
		default:
			return nil, d.malformed("unexpected " + k.String())
		}
	}
	if fn.Body == NoNode {
		return nil, d.malformed("missing body")
	}
	return fn, nil
}

func (d decoder) params() ([]*Param, error) {
	var out []*Param
	for _, c := range d.t.Children(d.id) {
		p, err := d.param(c)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (d decoder) param(id NodeID) (*Param, error) {
	if d.t.Kind(id) != KindParameter {
		return nil, decoder{d.t, id}.malformed("expected parameter")
	}
	typ := d.t.Child(id, 0)
	if !d.t.Kind(typ).IsType() {
		return nil, decoder{d.t, id}.malformed("parameter without type")
	}
	return &Param{base{id}, d.t.GetString(id, PropName), typ}, nil
}

func (d decoder) member(id NodeID) (*MemberVar, error) {
	typ := d.t.Child(id, 0)
	if !d.t.Kind(typ).IsType() {
		return nil, decoder{d.t, id}.malformed("member without type")
	}
	return &MemberVar{base{id}, d.t.GetString(id, PropName), typ}, nil
}

func (d decoder) classDecl() (View, error) {
	cls := &ClassDecl{base: base{d.id}, Name: d.t.GetString(d.id, PropName)}
	for _, c := range d.t.Children(d.id) {
		switch d.t.Kind(c) {
		case KindMemberVar:
			m, err := d.member(c)
			if err != nil {
				return nil, err
			}
			cls.Members = append(cls.Members, m)
		case KindFunctionDecl:
			cls.Methods = append(cls.Methods, c)
		default:
			return nil, d.malformed("unexpected " + d.t.Kind(c).String())
		}
	}
	return cls, nil
}

func (d decoder) varDecl() (View, error) {
	v := &VarDecl{base: base{d.id}, Name: d.t.GetString(d.id, PropName)}
	for _, c := range d.t.Children(d.id) {
		k := d.t.Kind(c)
		switch {
		case k.IsType() && v.Type == NoNode && v.Init == NoNode:
			v.Type = c
		case k.IsExpr() && v.Init == NoNode:
			v.Init = c
		default:
			return nil, d.malformed("unexpected " + k.String())
		}
	}
	return v, nil
}
