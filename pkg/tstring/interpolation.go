package tstring

import (
	"strings"

	"github.com/neurodesk/tstring/pkg/format"
)

// Interpolation is one evaluated replacement field: the value together with
// the expression text, conversion and format spec it was written with.
// It is immutable.
type Interpolation struct {
	value      Value
	expression string
	conversion Conversion
	formatSpec string
}

// NewInterpolation returns an Interpolation. A nil value stands for None.
func NewInterpolation(value Value, expression string, conversion Conversion, formatSpec string) (*Interpolation, error) {
	if !conversion.Valid() {
		return nil, newError(KindValue, "conversion must be one of 's', 'a' or 'r', got %q", string(rune(conversion)))
	}
	if value == nil {
		value = GoValue{}
	}
	return &Interpolation{
		value:      value,
		expression: expression,
		conversion: conversion,
		formatSpec: formatSpec,
	}, nil
}

// MustInterpolation is like NewInterpolation but panics on an invalid
// conversion.
func MustInterpolation(value Value, expression string, conversion Conversion, formatSpec string) *Interpolation {
	it, err := NewInterpolation(value, expression, conversion, formatSpec)
	if err != nil {
		panic(err)
	}
	return it
}

func (i *Interpolation) Value() Value           { return i.value }
func (i *Interpolation) Expression() string     { return i.expression }
func (i *Interpolation) Conversion() Conversion { return i.conversion }
func (i *Interpolation) FormatSpec() string     { return i.formatSpec }

func (i *Interpolation) TypeName() string { return "Interpolation" }

// Repr returns Interpolation(value, 'expression', conversion, 'format_spec').
func (i *Interpolation) Repr() (string, error) {
	return i.ReprWith(Value.Repr)
}

// ReprWith is Repr with the value shown by valueRepr.
func (i *Interpolation) ReprWith(valueRepr func(Value) (string, error)) (string, error) {
	v, err := valueRepr(i.value)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("Interpolation(")
	b.WriteString(v)
	b.WriteString(", ")
	b.WriteString(format.Quote(i.expression))
	b.WriteString(", ")
	b.WriteString(i.conversion.Repr())
	b.WriteString(", ")
	b.WriteString(format.Quote(i.formatSpec))
	b.WriteString(")")
	return b.String(), nil
}

// Str is the representation; an Interpolation has no separate display form.
func (i *Interpolation) Str() (string, error) {
	return i.Repr()
}

func (i *Interpolation) Format(spec string) (string, error) {
	s, err := i.Repr()
	if err != nil {
		return "", err
	}
	return format.String(s, spec)
}

func (i *Interpolation) String() string {
	s, err := i.Repr()
	if err != nil {
		return "Interpolation(<" + err.Error() + ">)"
	}
	return s
}
