// Package types implements the VibeLang type system.
//
// The language has four basic types (Int, Float, String, Bool), Meaning
// types that wrap a basic type with a natural-language description, and
// class types. Compatibility is directional: Compatible(expected, actual)
// asks whether a value of type actual may flow into a slot of type
// expected.
//
// COMPATIBILITY LATTICE:
//
//	basic    <- basic    same type, or Float <- Int
//	Meaning  <- Meaning  compare the wrapped types
//	Meaning  <- basic    compare the wrapped type with the basic type
//	class    <- class    same class
//	anything else is incompatible, including basic <- Meaning
package types

// Type is the interface that all types implement.
type Type interface {
	// String returns the source spelling of the type.
	String() string

	// Equals reports type identity.
	Equals(other Type) bool

	// AssignableTo reports whether a value of this type may flow into a
	// slot of type target. It is Compatible(target, receiver).
	AssignableTo(target Type) bool

	kind() TypeKind
}

// TypeKind represents the kind of type.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindVoid
	KindInt
	KindFloat
	KindString
	KindBool
	KindMeaning
	KindClass
)

// InvalidType is the type of anything that failed to type-check. It is
// compatible with nothing, so one error does not cascade into wrong
// successes.
type InvalidType struct{}

func (*InvalidType) String() string         { return "<invalid>" }
func (*InvalidType) Equals(Type) bool       { return false }
func (*InvalidType) AssignableTo(Type) bool { return false }
func (*InvalidType) kind() TypeKind         { return KindInvalid }

// VoidType is the result of a function without a return type.
type VoidType struct{}

func (*VoidType) String() string         { return "Void" }
func (*VoidType) Equals(other Type) bool { return kindOf(other) == KindVoid }
func (*VoidType) AssignableTo(Type) bool { return false }
func (*VoidType) kind() TypeKind         { return KindVoid }

// BasicType is one of the built-in value types.
type BasicType struct {
	name string
	k    TypeKind
}

func (b *BasicType) String() string                { return b.name }
func (b *BasicType) Equals(other Type) bool        { return kindOf(other) == b.k }
func (b *BasicType) AssignableTo(target Type) bool { return Compatible(target, b) }
func (b *BasicType) kind() TypeKind                { return b.k }

// Singleton instances. Basic types carry no state, so identity comparison
// works.
var (
	Invalid Type = &InvalidType{}
	Void    Type = &VoidType{}
	Int     Type = &BasicType{name: "Int", k: KindInt}
	Float   Type = &BasicType{name: "Float", k: KindFloat}
	String  Type = &BasicType{name: "String", k: KindString}
	Bool    Type = &BasicType{name: "Bool", k: KindBool}
)

// LookupBasic returns the basic type with the given source name, or nil.
func LookupBasic(name string) Type {
	switch name {
	case "Int":
		return Int
	case "Float":
		return Float
	case "String":
		return String
	case "Bool":
		return Bool
	}
	return nil
}

// MeaningType is Meaning<Base>("Description"). Alias is the declared name
// when the meaning type was introduced by a type declaration.
type MeaningType struct {
	Base        Type
	Description string
	Alias       string
}

// NewMeaning wraps base with a description.
func NewMeaning(base Type, description string) *MeaningType {
	return &MeaningType{Base: base, Description: description}
}

func (m *MeaningType) String() string {
	if m.Alias != "" {
		return m.Alias
	}
	return "Meaning<" + m.Base.String() + ">(\"" + m.Description + "\")"
}

// Equals compares the wrapped type and the description.
func (m *MeaningType) Equals(other Type) bool {
	o, ok := other.(*MeaningType)
	return ok && m.Base.Equals(o.Base) && m.Description == o.Description
}

func (m *MeaningType) AssignableTo(target Type) bool { return Compatible(target, m) }
func (m *MeaningType) kind() TypeKind                { return KindMeaning }

// ClassType is a user-declared class. Classes are nominal.
type ClassType struct {
	Name string
}

func (c *ClassType) String() string { return c.Name }

func (c *ClassType) Equals(other Type) bool {
	o, ok := other.(*ClassType)
	return ok && o.Name == c.Name
}

func (c *ClassType) AssignableTo(target Type) bool { return Compatible(target, c) }
func (c *ClassType) kind() TypeKind                { return KindClass }

func kindOf(t Type) TypeKind {
	if t == nil {
		return KindInvalid
	}
	return t.kind()
}

// IsBasic reports whether t is Int, Float, String or Bool.
func IsBasic(t Type) bool {
	switch kindOf(t) {
	case KindInt, KindFloat, KindString, KindBool:
		return true
	}
	return false
}

// IsVoid reports whether t is the void type.
func IsVoid(t Type) bool { return kindOf(t) == KindVoid }

// IsInvalid reports whether t is nil or the invalid type.
func IsInvalid(t Type) bool { return kindOf(t) == KindInvalid }

// Underlying strips Meaning wrappers and returns the basic type beneath.
// Other types are returned unchanged.
func Underlying(t Type) Type {
	for {
		m, ok := t.(*MeaningType)
		if !ok {
			return t
		}
		t = m.Base
	}
}

// Description returns the Meaning description of t, or "" for types that
// carry none.
func Description(t Type) string {
	if m, ok := t.(*MeaningType); ok {
		return m.Description
	}
	return ""
}

// Compatible reports whether a value of type actual may be used where
// expected is required.
//
// Two Meaning types with different descriptions but compatible wrapped
// types are compatible: Meaning<Int>("distance") is accepted where
// Meaning<Int>("temperature") is expected.
func Compatible(expected, actual Type) bool {
	ek, ak := kindOf(expected), kindOf(actual)
	switch {
	case ek == KindInvalid || ak == KindInvalid:
		return false
	case IsBasic(expected) && IsBasic(actual):
		return ek == ak || (ek == KindFloat && ak == KindInt)
	case ek == KindMeaning && ak == KindMeaning:
		return Compatible(expected.(*MeaningType).Base, actual.(*MeaningType).Base)
	case ek == KindMeaning && IsBasic(actual):
		return Compatible(expected.(*MeaningType).Base, actual)
	case ek == KindClass && ak == KindClass:
		return expected.Equals(actual)
	default:
		return false
	}
}
