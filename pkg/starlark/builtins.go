package starlark

import (
	"fmt"

	"github.com/neurodesk/tstring/pkg/tstring"
	"go.starlark.net/starlark"
)

// CreateBuiltins returns the template builtins bound to e:
//
//	Template(*args)
//	Interpolation(value, expression="", conversion=None, format_spec="")
//	__template__(strings, interpolations)
//	tstring(literal)
//
// tstring evaluates the literal against the globals of e, not the bindings
// of the calling script; names a script defines are visible only to
// literals evaluated after the script has finished.
func CreateBuiltins(e *Evaluator) starlark.StringDict {
	return starlark.StringDict{
		"Template": starlark.NewBuiltin("Template", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if len(kwargs) > 0 {
				return nil, fmt.Errorf("%s: unexpected keyword arguments", fn.Name())
			}
			parts := make([]any, len(args))
			for i, a := range args {
				switch a := a.(type) {
				case starlark.String:
					parts[i] = string(a)
				case *InterpolationValue:
					parts[i] = a.Interpolation
				default:
					parts[i] = FromStarlark(a)
				}
			}
			t, err := e.builder.NewFromArgs(parts...)
			if err != nil {
				return nil, err
			}
			return newTemplateValue(t, e.builder), nil
		}),

		"Interpolation": starlark.NewBuiltin("Interpolation", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var (
				value      starlark.Value
				expression string
				conversion starlark.Value = starlark.None
				formatSpec string
			)
			if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
				"value", &value,
				"expression?", &expression,
				"conversion?", &conversion,
				"format_spec?", &formatSpec,
			); err != nil {
				return nil, err
			}
			conv, err := conversionOf(conversion)
			if err != nil {
				return nil, err
			}
			it, err := e.builder.Interpolation(FromStarlark(value), expression, conv, formatSpec)
			if err != nil {
				return nil, err
			}
			return &InterpolationValue{Interpolation: it}, nil
		}),

		"__template__": starlark.NewBuiltin("__template__", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var strs, interps starlark.Indexable
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &strs, &interps); err != nil {
				return nil, err
			}
			segments := make([]string, strs.Len())
			for i := range segments {
				s, ok := starlark.AsString(strs.Index(i))
				if !ok {
					return nil, fmt.Errorf("%w: %s: strings must be str, got %s",
						tstring.ErrType, fn.Name(), typeName(strs.Index(i)))
				}
				segments[i] = s
			}
			tuples := make([][]any, interps.Len())
			for i := range tuples {
				tup, ok := interps.Index(i).(starlark.Indexable)
				if !ok {
					return nil, fmt.Errorf("%w: %s: interpolations must be tuples, got %s",
						tstring.ErrType, fn.Name(), typeName(interps.Index(i)))
				}
				tuples[i] = tupleItems(tup)
			}
			t, err := e.builder.NewFromTuples(segments, tuples)
			if err != nil {
				return nil, err
			}
			return newTemplateValue(t, e.builder), nil
		}),

		"tstring": starlark.NewBuiltin("tstring", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var src string
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &src); err != nil {
				return nil, err
			}
			t, err := e.Template(src)
			if err != nil {
				return nil, err
			}
			return newTemplateValue(t, e.builder), nil
		}),
	}
}

func conversionOf(v starlark.Value) (tstring.Conversion, error) {
	if v == starlark.None {
		return tstring.ConversionNone, nil
	}
	s, ok := starlark.AsString(v)
	if !ok {
		return tstring.ConversionNone, fmt.Errorf("%w: Interpolation() argument 'conversion' must be str or None, not %s",
			tstring.ErrType, typeName(v))
	}
	if s == "" {
		return tstring.ConversionNone, fmt.Errorf("%w: conversion must be one of 's', 'a' or 'r', got ''", tstring.ErrValue)
	}
	return tstring.ParseConversion(s)
}

// tupleItems converts one (value, expression[, conversion[, format_spec]])
// tuple to the form the builder expects. Strings stay strings and None
// becomes nil, except for the value, which is always wrapped.
func tupleItems(tup starlark.Indexable) []any {
	items := make([]any, tup.Len())
	for i := range items {
		v := tup.Index(i)
		if i == 0 {
			items[i] = FromStarlark(v)
			continue
		}
		switch v := v.(type) {
		case starlark.String:
			items[i] = string(v)
		case starlark.NoneType:
			items[i] = nil
		default:
			items[i] = FromStarlark(v)
		}
	}
	return items
}
