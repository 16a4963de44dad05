package ast

// Call is `name(args...)`.
type Call struct {
	base
	Func string
	Args []NodeID
}

// Ident is a reference to a named variable or parameter.
type Ident struct {
	base
	Name string
}

// Literal is an int, float, string or bool constant. Kind is the node kind
// and Value holds the tagged constant.
type Literal struct {
	base
	Kind  Kind
	Value Value
}

// BasicType names a built-in type (Int, Float, String, Bool) or a declared
// type alias such as Temperature.
type BasicType struct {
	base
	Name string
}

// MeaningType is `Meaning<Base>("description")`.
type MeaningType struct {
	base
	Meaning string
	Base    NodeID
}

// Built-in basic type names.
const (
	TypeInt    = "Int"
	TypeFloat  = "Float"
	TypeString = "String"
	TypeBool   = "Bool"
)

func (d decoder) expr() (View, error) {
	t, id := d.t, d.id
	switch k := t.Kind(id); k {
	case KindCallExpr:
		return &Call{base{id}, t.GetString(id, PropFunction), t.Children(id)}, nil
	case KindIdentifier:
		return &Ident{base{id}, t.GetString(id, PropName)}, nil
	case KindIntLiteral, KindFloatLiteral, KindStringLiteral, KindBoolLiteral:
		return &Literal{base{id}, k, t.Prop(id, PropValue)}, nil
	case KindBasicType:
		return &BasicType{base{id}, t.GetString(id, PropType)}, nil
	case KindMeaningType:
		inner := t.Child(id, 0)
		if !t.Kind(inner).IsType() {
			return nil, d.malformed("missing wrapped type")
		}
		return &MeaningType{base{id}, t.GetString(id, PropMeaning), inner}, nil
	default:
		return nil, d.malformed("unknown node kind")
	}
}

// LiteralKind returns the node kind used for literals of a basic type name,
// or KindInvalid.
func LiteralKind(typeName string) Kind {
	switch typeName {
	case TypeInt:
		return KindIntLiteral
	case TypeFloat:
		return KindFloatLiteral
	case TypeString:
		return KindStringLiteral
	case TypeBool:
		return KindBoolLiteral
	}
	return KindInvalid
}
