package tstring

import (
	"iter"
	"slices"
	"strings"

	"github.com/neurodesk/tstring/pkg/format"
)

// Template is the immutable result of evaluating a template literal: n+1
// text segments interleaved with n interpolations. Segments may be empty.
type Template struct {
	strings []string
	interps []*Interpolation
}

var emptySegments = []string{""}

// Empty returns the template with a single empty segment.
func Empty() *Template {
	return &Template{strings: emptySegments}
}

func (t *Template) segments() []string {
	if len(t.strings) == 0 {
		return emptySegments
	}
	return t.strings
}

// Strings returns a copy of the text segments.
func (t *Template) Strings() []string {
	return slices.Clone(t.segments())
}

// Interpolations returns a copy of the interpolations.
func (t *Template) Interpolations() []*Interpolation {
	return slices.Clone(t.interps)
}

// Values returns the value of every interpolation, in order.
func (t *Template) Values() []Value {
	values := make([]Value, len(t.interps))
	for i, it := range t.interps {
		values[i] = it.value
	}
	return values
}

// NumInterpolations returns the number of interpolations.
func (t *Template) NumInterpolations() int {
	return len(t.interps)
}

// Part is one element of a template in source order: either a non-empty
// text segment or an interpolation.
type Part struct {
	Text          string
	Interpolation *Interpolation
}

func (p Part) IsInterpolation() bool {
	return p.Interpolation != nil
}

// All yields the template's parts in order. Empty segments are skipped and
// every interpolation is yielded.
func (t *Template) All() iter.Seq[Part] {
	return func(yield func(Part) bool) {
		segs := t.segments()
		for i, s := range segs {
			if s != "" && !yield(Part{Text: s}) {
				return
			}
			if i < len(t.interps) && !yield(Part{Interpolation: t.interps[i]}) {
				return
			}
		}
	}
}

// Concat returns the concatenation of t and u.
func (t *Template) Concat(u *Template) (*Template, error) {
	return defaultBuilder.Concat(t, u)
}

// Add concatenates other onto t. Only another *Template may be added.
func (t *Template) Add(other any) (*Template, error) {
	u, ok := other.(*Template)
	if !ok || u == nil {
		return nil, newError(KindType, "can only concatenate Template (not %q) to Template", TypeName(other))
	}
	return t.Concat(u)
}

func (t *Template) TypeName() string { return "Template" }

// Repr returns Template(strings=(...), interpolations=(...)).
func (t *Template) Repr() (string, error) {
	return t.ReprWith(Value.Repr)
}

// ReprWith is Repr with each interpolation value shown by valueRepr.
func (t *Template) ReprWith(valueRepr func(Value) (string, error)) (string, error) {
	var b strings.Builder
	b.WriteString("Template(strings=(")
	segs := t.segments()
	for i, s := range segs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(format.Quote(s))
	}
	if len(segs) == 1 {
		b.WriteString(",")
	}
	b.WriteString("), interpolations=(")
	for i, it := range t.interps {
		if i > 0 {
			b.WriteString(", ")
		}
		s, err := it.ReprWith(valueRepr)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	if len(t.interps) == 1 {
		b.WriteString(",")
	}
	b.WriteString("))")
	return b.String(), nil
}

// Str renders the template. It lets a Template be interpolated into
// another one.
func (t *Template) Str() (string, error) {
	return t.Render()
}

// Format renders the template and formats the result as a string.
func (t *Template) Format(spec string) (string, error) {
	s, err := t.Render()
	if err != nil {
		return "", err
	}
	return format.String(s, spec)
}

// String returns the representation of t. Use Render for the rendered text.
func (t *Template) String() string {
	s, err := t.Repr()
	if err != nil {
		return "Template(<" + err.Error() + ">)"
	}
	return s
}

// MarshalYAML describes the template's parts.
func (t *Template) MarshalYAML() (any, error) {
	type interpolation struct {
		Value      string `yaml:"value"`
		Expression string `yaml:"expression"`
		Conversion string `yaml:"conversion,omitempty"`
		FormatSpec string `yaml:"format_spec,omitempty"`
	}
	out := struct {
		Strings        []string        `yaml:"strings"`
		Interpolations []interpolation `yaml:"interpolations"`
	}{
		Strings:        t.Strings(),
		Interpolations: make([]interpolation, 0, len(t.interps)),
	}
	for _, it := range t.interps {
		v, err := it.value.Repr()
		if err != nil {
			return nil, err
		}
		out.Interpolations = append(out.Interpolations, interpolation{
			Value:      v,
			Expression: it.expression,
			Conversion: it.conversion.String(),
			FormatSpec: it.formatSpec,
		})
	}
	return out, nil
}
