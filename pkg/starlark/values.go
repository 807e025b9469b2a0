package starlark

import (
	"fmt"
	"maps"
	"math/big"
	"slices"
	"strings"

	"github.com/neurodesk/tstring/pkg/format"
	"github.com/neurodesk/tstring/pkg/tstring"
	"go.starlark.net/starlark"
)

// Value wraps a Starlark value to implement tstring.Value.
type Value struct {
	Value starlark.Value
}

var _ tstring.Value = Value{}

func (w Value) v() starlark.Value {
	if w.Value == nil {
		return starlark.None
	}
	return w.Value
}

// TypeName returns the Python name of the value's type.
func (w Value) TypeName() string {
	return typeName(w.v())
}

func typeName(v starlark.Value) string {
	if v.Type() == "string" {
		return "str"
	}
	return v.Type()
}

func (w Value) Str() (string, error) {
	switch v := w.v().(type) {
	case starlark.String:
		return string(v), nil
	case starlark.Float:
		return format.FloatRepr(float64(v)), nil
	}
	return repr(w.v())
}

func (w Value) Repr() (string, error) {
	return repr(w.v())
}

func (w Value) Format(spec string) (string, error) {
	switch v := w.v().(type) {
	case starlark.String:
		return format.String(string(v), spec)
	case starlark.Int:
		return format.Int(v.BigInt(), spec)
	case starlark.Float:
		return format.Float(float64(v), spec)
	case starlark.Bool:
		return format.Bool(bool(v), spec)
	}
	if spec == "" {
		return w.Str()
	}
	return "", format.Unsupported(w.TypeName(), spec)
}

// repr writes v the way the corresponding literal is written, with
// single-quoted strings. A list or dict met again while it is being
// written shows as [...] or {...}.
func repr(v starlark.Value) (string, error) {
	return reprSeen(v, map[starlark.Value]bool{})
}

func reprSeen(v starlark.Value, seen map[starlark.Value]bool) (string, error) {
	switch v := v.(type) {
	case starlark.String:
		return format.Quote(string(v)), nil
	case starlark.Float:
		return format.FloatRepr(float64(v)), nil
	case *starlark.List:
		if seen[v] {
			return "[...]", nil
		}
		seen[v] = true
		defer delete(seen, v)
		items := make([]starlark.Value, v.Len())
		for i := range items {
			items[i] = v.Index(i)
		}
		return reprItems("[", items, "]", false, seen)
	case starlark.Tuple:
		return reprItems("(", v, ")", len(v) == 1, seen)
	case *starlark.Dict:
		if seen[v] {
			return "{...}", nil
		}
		seen[v] = true
		defer delete(seen, v)
		parts := make([]string, 0, v.Len())
		for _, item := range v.Items() {
			k, err := reprSeen(item[0], seen)
			if err != nil {
				return "", err
			}
			val, err := reprSeen(item[1], seen)
			if err != nil {
				return "", err
			}
			parts = append(parts, k+": "+val)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	case *TemplateValue:
		return v.Template.ReprWith(valueRepr(seen))
	case *InterpolationValue:
		return v.Interpolation.ReprWith(valueRepr(seen))
	}
	return v.String(), nil
}

// valueRepr shows interpolation values inside a template with the
// containers of the enclosing repr still marked as seen.
func valueRepr(seen map[starlark.Value]bool) func(tstring.Value) (string, error) {
	var f func(tstring.Value) (string, error)
	f = func(val tstring.Value) (string, error) {
		switch v := val.(type) {
		case Value:
			return reprSeen(v.v(), seen)
		case *tstring.Template:
			return v.ReprWith(f)
		case *tstring.Interpolation:
			return v.ReprWith(f)
		}
		return val.Repr()
	}
	return f
}

func reprItems(open string, items []starlark.Value, closing string, trailingComma bool, seen map[starlark.Value]bool) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		s, err := reprSeen(item, seen)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	s := open + strings.Join(parts, ", ")
	if trailingComma {
		s += ","
	}
	return s + closing, nil
}

// FromStarlark converts a Starlark value to a tstring.Value. Templates and
// interpolations are unwrapped so that they nest and render in place.
func FromStarlark(val starlark.Value) tstring.Value {
	switch v := val.(type) {
	case nil:
		return Value{Value: starlark.None}
	case *TemplateValue:
		return v.Template
	case *InterpolationValue:
		return v.Interpolation
	}
	return Value{Value: val}
}

// ToStarlark converts a tstring.Value to a Starlark value.
func ToStarlark(val tstring.Value) starlark.Value {
	switch v := val.(type) {
	case nil:
		return starlark.None
	case Value:
		return v.v()
	case *tstring.Template:
		return &TemplateValue{Template: v}
	case *tstring.Interpolation:
		return &InterpolationValue{Interpolation: v}
	case tstring.GoValue:
		if sv, err := FromGo(v.V); err == nil {
			return sv
		}
	}
	s, err := val.Str()
	if err != nil {
		return starlark.None
	}
	return starlark.String(s)
}

// FromGo converts a Go value, such as one decoded from YAML, to a Starlark
// value. Map keys are inserted in sorted order.
func FromGo(val any) (starlark.Value, error) {
	switch v := val.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return v, nil
	case tstring.Value:
		return ToStarlark(v), nil
	case bool:
		return starlark.Bool(v), nil
	case string:
		return starlark.String(v), nil
	case int:
		return starlark.MakeInt(v), nil
	case int8:
		return starlark.MakeInt64(int64(v)), nil
	case int16:
		return starlark.MakeInt64(int64(v)), nil
	case int32:
		return starlark.MakeInt64(int64(v)), nil
	case int64:
		return starlark.MakeInt64(v), nil
	case uint:
		return starlark.MakeUint(v), nil
	case uint8:
		return starlark.MakeUint64(uint64(v)), nil
	case uint16:
		return starlark.MakeUint64(uint64(v)), nil
	case uint32:
		return starlark.MakeUint64(uint64(v)), nil
	case uint64:
		return starlark.MakeUint64(v), nil
	case *big.Int:
		return starlark.MakeBigInt(v), nil
	case float32:
		return starlark.Float(v), nil
	case float64:
		return starlark.Float(v), nil
	case []string:
		items := make([]starlark.Value, len(v))
		for i, s := range v {
			items[i] = starlark.String(s)
		}
		return starlark.NewList(items), nil
	case []any:
		items := make([]starlark.Value, len(v))
		for i, item := range v {
			sv, err := FromGo(item)
			if err != nil {
				return nil, err
			}
			items[i] = sv
		}
		return starlark.NewList(items), nil
	case map[string]any:
		dict := starlark.NewDict(len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			sv, err := FromGo(v[k])
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return dict, nil
	case map[any]any:
		keys := make([]any, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, func(a, b any) int {
			return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
		})
		dict := starlark.NewDict(len(v))
		for _, k := range keys {
			sk, err := FromGo(k)
			if err != nil {
				return nil, err
			}
			sv, err := FromGo(v[k])
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(sk, sv); err != nil {
				return nil, err
			}
		}
		return dict, nil
	case fmt.Stringer:
		return starlark.String(v.String()), nil
	}
	return nil, fmt.Errorf("cannot convert %T to a Starlark value", val)
}
