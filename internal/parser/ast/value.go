package ast

import (
	"sort"
	"strconv"
)

// ValueKind is the type tag of a stored property.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueFloat
	ValueString
	ValueBool
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueBool:
		return "bool"
	default:
		return "none"
	}
}

// Value is one tagged property value. Only the field selected by Kind is
// meaningful.
type Value struct {
	Kind ValueKind
	i    int64
	f    float64
	s    string
	b    bool
}

// IntValue builds a tagged integer.
func IntValue(v int64) Value     { return Value{Kind: ValueInt, i: v} }
func FloatValue(v float64) Value { return Value{Kind: ValueFloat, f: v} }
func StringValue(v string) Value { return Value{Kind: ValueString, s: v} }
func BoolValue(v bool) Value     { return Value{Kind: ValueBool, b: v} }
func (v Value) Int() int64       { return v.i }
func (v Value) Float() float64   { return v.f }
func (v Value) Str() string      { return v.s }
func (v Value) Bool() bool       { return v.b }
func (v Value) IsZero() bool     { return v.Kind == ValueNone }

// String renders the value the way the AST printer shows it.
func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueString:
		return strconv.Quote(v.s)
	case ValueBool:
		return strconv.FormatBool(v.b)
	default:
		return "<none>"
	}
}

// Set stores a property, replacing both tag and value of any previous entry
// under the same key. Setting on an invalid node does nothing.
func (t *Tree) Set(id NodeID, key string, v Value) {
	n := t.get(id)
	if n == nil || v.Kind == ValueNone {
		return
	}
	if n.props == nil {
		n.props = make(map[string]Value, 2)
	}
	n.props[key] = v
}

// SetString, SetInt, SetFloat and SetBool are typed forms of Set.
func (t *Tree) SetString(id NodeID, key, v string)        { t.Set(id, key, StringValue(v)) }
func (t *Tree) SetInt(id NodeID, key string, v int64)     { t.Set(id, key, IntValue(v)) }
func (t *Tree) SetFloat(id NodeID, key string, v float64) { t.Set(id, key, FloatValue(v)) }
func (t *Tree) SetBool(id NodeID, key string, v bool)     { t.Set(id, key, BoolValue(v)) }

// Prop returns the raw tagged value, or a ValueNone value when absent.
func (t *Tree) Prop(id NodeID, key string) Value {
	n := t.get(id)
	if n == nil {
		return Value{}
	}
	return n.props[key]
}

// Has reports whether key is set on the node, under any tag.
func (t *Tree) Has(id NodeID, key string) bool {
	return t.Prop(id, key).Kind != ValueNone
}

// GetString returns the string property, or "" when absent or not a string.
func (t *Tree) GetString(id NodeID, key string) string {
	if v := t.Prop(id, key); v.Kind == ValueString {
		return v.s
	}
	return ""
}

// GetInt returns the integer property, or 0 when absent or not an integer.
func (t *Tree) GetInt(id NodeID, key string) int64 {
	if v := t.Prop(id, key); v.Kind == ValueInt {
		return v.i
	}
	return 0
}

// GetFloat returns the float property, or 0 when absent or not a float.
func (t *Tree) GetFloat(id NodeID, key string) float64 {
	if v := t.Prop(id, key); v.Kind == ValueFloat {
		return v.f
	}
	return 0
}

// GetBool returns the boolean property, or false when absent or not a bool.
func (t *Tree) GetBool(id NodeID, key string) bool {
	if v := t.Prop(id, key); v.Kind == ValueBool {
		return v.b
	}
	return false
}

// Keys returns the property keys of a node in sorted order.
func (t *Tree) Keys(id NodeID) []string {
	n := t.get(id)
	if n == nil {
		return nil
	}
	keys := make([]string, 0, len(n.props))
	for k := range n.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
