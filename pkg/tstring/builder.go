package tstring

import (
	"slices"
)

// interpolationSize is the accounting size of one Interpolation.
const interpolationSize = 8 * wordSize

// Builder constructs Templates under an allocator and a set of limits.
// A Builder holds no per-template state and may be reused.
type Builder struct {
	alloc  Allocator
	limits Limits
	// err is the configuration error every method reports.
	err error
}

var defaultBuilder = NewBuilder()

// NewBuilder returns a Builder configured by opts. If opts carry invalid
// limits, every method of the Builder fails with that error.
func NewBuilder(opts ...Option) *Builder {
	c, err := newConfig(opts)
	return &Builder{alloc: c.alloc, limits: c.limits, err: err}
}

// Err returns the configuration error of b, if any.
func (b *Builder) Err() error {
	return b.err
}

// New builds a Template from its segments and interpolations.
func New(strs []string, interps []*Interpolation) (*Template, error) {
	return defaultBuilder.New(strs, interps)
}

// NewFromArgs builds a Template from a mix of strings and interpolations.
func NewFromArgs(args ...any) (*Template, error) {
	return defaultBuilder.NewFromArgs(args...)
}

// NewFromTuples builds a Template from segments and interpolation tuples.
func NewFromTuples(strs []string, tuples [][]any) (*Template, error) {
	return defaultBuilder.NewFromTuples(strs, tuples)
}

// Concat returns the concatenation of x and y.
func Concat(x, y *Template) (*Template, error) {
	return defaultBuilder.Concat(x, y)
}

// New builds a Template from its segments and interpolations. There must be
// exactly one more segment than interpolations. Both slices are copied.
func (b *Builder) New(strs []string, interps []*Interpolation) (*Template, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(strs) != len(interps)+1 {
		return nil, newError(KindConstruction,
			"Template needs one more string than interpolations, got %d strings and %d interpolations",
			len(strs), len(interps))
	}
	for i, it := range interps {
		if it == nil {
			return nil, newError(KindConstruction, "interpolation %d is nil", i)
		}
	}
	if err := b.limits.check(len(strs), len(interps)); err != nil {
		return nil, err
	}
	return b.build(strs, interps)
}

// NewFromArgs builds a Template from strings and *Interpolation values in
// any order. Consecutive strings are joined into one segment and empty
// segments are inserted where two interpolations are adjacent or where an
// interpolation starts or ends the argument list. With no arguments the
// result is Empty().
func (b *Builder) NewFromArgs(args ...any) (*Template, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(args) == 0 {
		return b.build(emptySegments, nil)
	}
	n := 0
	for _, a := range args {
		switch a := a.(type) {
		case string:
		case *Interpolation:
			if a == nil {
				return nil, newError(KindType, "Template arguments must be str or Interpolation, got nil")
			}
			n++
		default:
			return nil, newError(KindType, "Template arguments must be str or Interpolation, got %s", TypeName(a))
		}
	}
	if err := b.limits.check(n+1, n); err != nil {
		return nil, err
	}
	if err := reserveWords(b.alloc, 2*n+1); err != nil {
		return nil, err
	}

	strs := make([]string, 0, n+1)
	interps := make([]*Interpolation, 0, n)
	seg := buffer{alloc: b.alloc}
	for _, a := range args {
		switch a := a.(type) {
		case string:
			if err := seg.writeString(a); err != nil {
				return nil, err
			}
		case *Interpolation:
			s, err := seg.string()
			if err != nil {
				return nil, err
			}
			strs = append(strs, s)
			interps = append(interps, a)
			seg.reset()
		}
	}
	s, err := seg.string()
	if err != nil {
		return nil, err
	}
	strs = append(strs, s)
	return &Template{strings: strs, interps: interps}, nil
}

// NewFromTuples builds a Template from segments and one tuple per
// interpolation: (value, expression[, conversion[, format_spec]]). The
// conversion may be nil, a Conversion or a one-letter string; the format
// spec may be nil or a string. Values that do not implement Value are
// wrapped with ValueOf.
func (b *Builder) NewFromTuples(strs []string, tuples [][]any) (*Template, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(strs) != len(tuples)+1 {
		return nil, newError(KindConstruction,
			"Template needs one more string than interpolations, got %d strings and %d interpolations",
			len(strs), len(tuples))
	}
	if err := b.limits.check(len(strs), len(tuples)); err != nil {
		return nil, err
	}
	if err := reserveWords(b.alloc, len(tuples)); err != nil {
		return nil, err
	}
	interps := make([]*Interpolation, len(tuples))
	for i, tup := range tuples {
		it, err := b.fromTuple(tup)
		if err != nil {
			return nil, err
		}
		interps[i] = it
	}
	return b.build(strs, interps)
}

func (b *Builder) fromTuple(tup []any) (*Interpolation, error) {
	if len(tup) < 2 || len(tup) > 4 {
		return nil, newError(KindConstruction, "invalid interpolation format")
	}
	expr, ok := tup[1].(string)
	if !ok {
		return nil, newError(KindType, "interpolation expression must be str, got %s", TypeName(tup[1]))
	}
	conv := ConversionNone
	if len(tup) > 2 {
		switch c := tup[2].(type) {
		case nil:
		case Conversion:
			conv = c
		case string:
			var err error
			if conv, err = ParseConversion(c); err != nil {
				return nil, err
			}
		default:
			return nil, newError(KindType, "interpolation conversion must be str or None, got %s", TypeName(c))
		}
	}
	spec := ""
	if len(tup) > 3 {
		switch s := tup[3].(type) {
		case nil:
		case string:
			spec = s
		default:
			return nil, newError(KindType, "interpolation format_spec must be str, got %s", TypeName(s))
		}
	}
	return b.Interpolation(ValueOf(tup[0]), expr, conv, spec)
}

// Interpolation is NewInterpolation with the allocation accounted for.
func (b *Builder) Interpolation(value Value, expression string, conversion Conversion, formatSpec string) (*Interpolation, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.alloc.Reserve(interpolationSize); err != nil {
		return nil, err
	}
	return NewInterpolation(value, expression, conversion, formatSpec)
}

// Concat returns a new Template holding x's parts followed by y's. The last
// segment of x and the first segment of y are joined.
func (b *Builder) Concat(x, y *Template) (*Template, error) {
	if b.err != nil {
		return nil, b.err
	}
	if x == nil || y == nil {
		return nil, newError(KindType, "can only concatenate Template to Template")
	}
	xs, ys := x.segments(), y.segments()
	segs, err := addCount(len(xs), len(ys))
	if err != nil {
		return nil, err
	}
	segs--
	n, err := addCount(len(x.interps), len(y.interps))
	if err != nil {
		return nil, err
	}
	if err := b.limits.check(segs, n); err != nil {
		return nil, err
	}
	if err := reserveWords(b.alloc, segs+n); err != nil {
		return nil, err
	}
	joined, err := concat(b.alloc, xs[len(xs)-1], ys[0])
	if err != nil {
		return nil, err
	}

	strs := make([]string, 0, segs)
	strs = append(strs, xs[:len(xs)-1]...)
	strs = append(strs, joined)
	strs = append(strs, ys[1:]...)

	interps := make([]*Interpolation, 0, n)
	interps = append(interps, x.interps...)
	interps = append(interps, y.interps...)
	return &Template{strings: strs, interps: interps}, nil
}

// build copies strs and interps into a new Template.
func (b *Builder) build(strs []string, interps []*Interpolation) (*Template, error) {
	if err := reserveWords(b.alloc, len(strs)+len(interps)); err != nil {
		return nil, err
	}
	return &Template{strings: slices.Clone(strs), interps: slices.Clone(interps)}, nil
}
