package types

import (
	"testing"
)

func TestBasicType_String(t *testing.T) {
	tests := []struct {
		typ      Type
		expected string
	}{
		{Int, "Int"},
		{Float, "Float"},
		{Bool, "Bool"},
		{String, "String"},
		{Void, "Void"},
		{Invalid, "<invalid>"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.typ.String(); result != tt.expected {
				t.Errorf("Type.String() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestMeaningType_String(t *testing.T) {
	m := NewMeaning(Int, "temperature in Celsius")
	if got, want := m.String(), `Meaning<Int>("temperature in Celsius")`; got != want {
		t.Errorf("MeaningType.String() = %q, want %q", got, want)
	}
	m.Alias = "Temperature"
	if got := m.String(); got != "Temperature" {
		t.Errorf("aliased MeaningType.String() = %q, want %q", got, "Temperature")
	}
}

func TestLookupBasic(t *testing.T) {
	for _, name := range []string{"Int", "Float", "String", "Bool"} {
		if got := LookupBasic(name); got == nil || got.String() != name {
			t.Errorf("LookupBasic(%q) = %v", name, got)
		}
	}
	if got := LookupBasic("Temperature"); got != nil {
		t.Errorf("LookupBasic(Temperature) = %v, want nil", got)
	}
}

func TestCompatible(t *testing.T) {
	celsius := NewMeaning(Int, "temperature in Celsius")
	distance := NewMeaning(Int, "distance in km")
	ratio := NewMeaning(Float, "ratio")
	label := NewMeaning(String, "label")
	person := &ClassType{Name: "Person"}

	tests := []struct {
		name     string
		expected Type
		actual   Type
		want     bool
	}{
		{"float accepts int", Float, Int, true},
		{"int rejects float", Int, Float, false},
		{"int to int", Int, Int, true},
		{"float to float", Float, Float, true},
		{"string to string", String, String, true},
		{"bool to bool", Bool, Bool, true},
		{"string rejects int", String, Int, false},
		{"bool rejects int", Bool, Int, false},
		{"meaning accepts its base", celsius, Int, true},
		{"meaning rejects other base", celsius, String, false},
		{"float meaning accepts int", ratio, Int, true},
		{"meaning vs meaning same base", celsius, distance, true},
		{"meaning vs meaning float accepts int", ratio, celsius, true},
		{"meaning vs meaning int rejects float", celsius, ratio, false},
		{"meaning vs meaning string vs int", label, celsius, false},
		{"basic rejects meaning", Int, celsius, false},
		{"same class", person, &ClassType{Name: "Person"}, true},
		{"different class", person, &ClassType{Name: "Robot"}, false},
		{"class vs basic", person, Int, false},
		{"void", Void, Void, false},
		{"invalid expected", Invalid, Int, false},
		{"invalid actual", Int, Invalid, false},
		{"nil", nil, Int, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compatible(tt.expected, tt.actual); got != tt.want {
				t.Errorf("Compatible(%v, %v) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

// TestCompatible_Properties checks the lattice laws for every basic type.
func TestCompatible_Properties(t *testing.T) {
	basics := []Type{Int, Float, String, Bool}
	for _, b := range basics {
		if !Compatible(b, b) {
			t.Errorf("Compatible(%v, %v) = false", b, b)
		}
		if !Compatible(NewMeaning(b, "x"), b) {
			t.Errorf("Compatible(Meaning<%v>, %v) = false", b, b)
		}
		for _, other := range basics {
			m1, m2 := NewMeaning(b, "a"), NewMeaning(other, "b")
			if Compatible(m1, m2) != Compatible(b, other) {
				t.Errorf("Compatible(Meaning<%v>, Meaning<%v>) != Compatible(%v, %v)", b, other, b, other)
			}
		}
	}
}

func TestAssignableTo(t *testing.T) {
	if !Int.AssignableTo(Float) {
		t.Error("Int.AssignableTo(Float) = false")
	}
	if Float.AssignableTo(Int) {
		t.Error("Float.AssignableTo(Int) = true")
	}
	if !Int.AssignableTo(NewMeaning(Int, "t")) {
		t.Error("Int.AssignableTo(Meaning<Int>) = false")
	}
}

func TestUnderlyingAndDescription(t *testing.T) {
	m := NewMeaning(NewMeaning(String, "inner"), "outer")
	if got := Underlying(m); got != String {
		t.Errorf("Underlying() = %v, want String", got)
	}
	if got := Description(m); got != "outer" {
		t.Errorf("Description() = %q, want %q", got, "outer")
	}
	if got := Description(Int); got != "" {
		t.Errorf("Description(Int) = %q, want empty", got)
	}
}

func TestEquals(t *testing.T) {
	a := NewMeaning(Int, "t")
	if !a.Equals(NewMeaning(Int, "t")) {
		t.Error("identical meaning types not equal")
	}
	if a.Equals(NewMeaning(Int, "u")) {
		t.Error("meaning types with different descriptions equal")
	}
	if Invalid.Equals(Invalid) {
		t.Error("Invalid equals itself")
	}
}
