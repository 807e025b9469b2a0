package starlark

import (
	"fmt"

	"github.com/neurodesk/tstring/pkg/tstring"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// TemplateValue exposes a *tstring.Template to Starlark. It supports +
// with another Template, iteration over its parts, len and the read-only
// attributes strings, interpolations and values.
type TemplateValue struct {
	Template *tstring.Template
	builder  *tstring.Builder
}

var (
	_ starlark.HasAttrs    = (*TemplateValue)(nil)
	_ starlark.HasSetField = (*TemplateValue)(nil)
	_ starlark.HasBinary   = (*TemplateValue)(nil)
	_ starlark.Sequence    = (*TemplateValue)(nil)
)

func newTemplateValue(t *tstring.Template, b *tstring.Builder) *TemplateValue {
	return &TemplateValue{Template: t, builder: b}
}

func (t *TemplateValue) String() string       { return t.Template.String() }
func (t *TemplateValue) Type() string         { return "Template" }
func (t *TemplateValue) Freeze()              {}
func (t *TemplateValue) Truth() starlark.Bool { return starlark.True }

func (t *TemplateValue) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: Template")
}

func (t *TemplateValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "strings":
		strs := t.Template.Strings()
		tup := make(starlark.Tuple, len(strs))
		for i, s := range strs {
			tup[i] = starlark.String(s)
		}
		return tup, nil
	case "interpolations":
		its := t.Template.Interpolations()
		tup := make(starlark.Tuple, len(its))
		for i, it := range its {
			tup[i] = &InterpolationValue{Interpolation: it}
		}
		return tup, nil
	case "values":
		vals := t.Template.Values()
		tup := make(starlark.Tuple, len(vals))
		for i, v := range vals {
			tup[i] = ToStarlark(v)
		}
		return tup, nil
	}
	return nil, nil
}

func (t *TemplateValue) AttrNames() []string {
	return []string{"interpolations", "strings", "values"}
}

func (t *TemplateValue) SetField(name string, _ starlark.Value) error {
	return tstring.ReadOnlyError("Template", name)
}

// Binary implements Template + Template. Adding any other type, on either
// side, is a type error.
func (t *TemplateValue) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	if op != syntax.PLUS {
		return nil, nil
	}
	u, ok := y.(*TemplateValue)
	if !ok {
		if side == starlark.Left {
			_, err := t.Template.Add(FromStarlark(y))
			return nil, err
		}
		name := typeName(y)
		return nil, fmt.Errorf("%w: can only concatenate %s (not \"Template\") to %s", tstring.ErrType, name, name)
	}
	x, z := t.Template, u.Template
	if side == starlark.Right {
		x, z = z, x
	}
	var (
		res *tstring.Template
		err error
	)
	if t.builder != nil {
		res, err = t.builder.Concat(x, z)
	} else {
		res, err = tstring.Concat(x, z)
	}
	if err != nil {
		return nil, err
	}
	return newTemplateValue(res, t.builder), nil
}

// Len returns the number of parts iteration yields.
func (t *TemplateValue) Len() int {
	n := 0
	for range t.Template.All() {
		n++
	}
	return n
}

func (t *TemplateValue) Iterate() starlark.Iterator {
	var parts []starlark.Value
	for p := range t.Template.All() {
		if p.IsInterpolation() {
			parts = append(parts, &InterpolationValue{Interpolation: p.Interpolation})
		} else {
			parts = append(parts, starlark.String(p.Text))
		}
	}
	return &partIterator{parts: parts}
}

type partIterator struct {
	parts []starlark.Value
	i     int
}

func (it *partIterator) Next(p *starlark.Value) bool {
	if it.i >= len(it.parts) {
		return false
	}
	*p = it.parts[it.i]
	it.i++
	return true
}

func (it *partIterator) Done() {}

// InterpolationValue exposes a *tstring.Interpolation to Starlark with the
// read-only attributes value, expression, conversion and format_spec.
type InterpolationValue struct {
	Interpolation *tstring.Interpolation
}

var (
	_ starlark.HasAttrs    = (*InterpolationValue)(nil)
	_ starlark.HasSetField = (*InterpolationValue)(nil)
)

func (i *InterpolationValue) String() string       { return i.Interpolation.String() }
func (i *InterpolationValue) Type() string         { return "Interpolation" }
func (i *InterpolationValue) Freeze()              {}
func (i *InterpolationValue) Truth() starlark.Bool { return starlark.True }

func (i *InterpolationValue) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: Interpolation")
}

func (i *InterpolationValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "value":
		return ToStarlark(i.Interpolation.Value()), nil
	case "expression":
		return starlark.String(i.Interpolation.Expression()), nil
	case "conversion":
		c := i.Interpolation.Conversion()
		if c == tstring.ConversionNone {
			return starlark.None, nil
		}
		return starlark.String(c.String()), nil
	case "format_spec":
		return starlark.String(i.Interpolation.FormatSpec()), nil
	}
	return nil, nil
}

func (i *InterpolationValue) AttrNames() []string {
	return []string{"conversion", "expression", "format_spec", "value"}
}

func (i *InterpolationValue) SetField(name string, _ starlark.Value) error {
	return tstring.ReadOnlyError("Interpolation", name)
}
