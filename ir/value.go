package ir

import (
	"duck/typing"
	"strconv"
)

// Value is a runtime value.  Ints and chars live in Int (a char is its code
// point); floats live in Float.
type Value struct {
	Type  typing.DataType
	Int   int
	Float float64
}

// IntValue creates a new integer value
func IntValue(n int) Value {
	return Value{Type: typing.Int, Int: n}
}

// FloatValue creates a new float value
func FloatValue(f float64) Value {
	return Value{Type: typing.Float, Float: f}
}

// CharValue creates a new char value
func CharValue(r rune) Value {
	return Value{Type: typing.Char, Int: int(r)}
}

// AsFloat widens the value to a float
func (v Value) AsFloat() float64 {
	if v.Type == typing.Float {
		return v.Float
	}

	return float64(v.Int)
}

// Convert returns the value stored as the given type (used when a float slot
// receives an int)
func (v Value) Convert(dt typing.DataType) Value {
	if v.Type == dt {
		return v
	}

	switch dt {
	case typing.Float:
		return FloatValue(v.AsFloat())
	case typing.Int:
		return IntValue(int(v.AsFloat()))
	case typing.Char:
		return Value{Type: typing.Char, Int: int(v.AsFloat())}
	}

	return v
}

// Truthy interprets the value as a condition: zero is false
func (v Value) Truthy() bool {
	if v.Type == typing.Float {
		return v.Float != 0
	}

	return v.Int != 0
}

func (v Value) String() string {
	switch v.Type {
	case typing.Float:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case typing.Char:
		return string(rune(v.Int))
	}

	return strconv.Itoa(v.Int)
}
