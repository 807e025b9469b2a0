package tstring

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/neurodesk/tstring/pkg/format"
)

// Value is an evaluated expression result carried by an Interpolation.
// Implementations provide the display form, the representation form and
// formatting under a format spec.
type Value interface {
	Str() (string, error)
	Repr() (string, error)
	Format(spec string) (string, error)
}

// TypeNamer is implemented by values that report their type name in
// error messages.
type TypeNamer interface {
	TypeName() string
}

// Conversion selects the transformation applied to a value before it is
// formatted.
type Conversion byte

const (
	ConversionNone  Conversion = 0
	ConversionRepr  Conversion = 'r'
	ConversionStr   Conversion = 's'
	ConversionASCII Conversion = 'a'
)

// ParseConversion parses "", "r", "s" or "a".
func ParseConversion(s string) (Conversion, error) {
	switch s {
	case "":
		return ConversionNone, nil
	case "r", "s", "a":
		return Conversion(s[0]), nil
	}
	return ConversionNone, newError(KindValue, "conversion must be one of 's', 'a' or 'r', got %q", s)
}

func (c Conversion) Valid() bool {
	switch c {
	case ConversionNone, ConversionRepr, ConversionStr, ConversionASCII:
		return true
	}
	return false
}

// String returns the conversion character, or "" for none.
func (c Conversion) String() string {
	if c == ConversionNone {
		return ""
	}
	return string(rune(c))
}

// Repr returns None or the quoted conversion character.
func (c Conversion) Repr() string {
	if c == ConversionNone {
		return "None"
	}
	return "'" + string(rune(c)) + "'"
}

// convert applies c to v and returns the resulting text.
func convert(v Value, c Conversion) (string, error) {
	switch c {
	case ConversionRepr:
		return v.Repr()
	case ConversionASCII:
		s, err := v.Repr()
		if err != nil {
			return "", err
		}
		return format.ASCII(s), nil
	}
	return v.Str()
}

// formatValue renders one value the way a replacement field does: an
// explicit conversion yields text that the spec then formats as a string,
// otherwise the value formats itself.
func formatValue(v Value, c Conversion, spec string) (string, error) {
	if c != ConversionNone {
		s, err := convert(v, c)
		if err != nil {
			return "", err
		}
		return format.String(s, spec)
	}
	if spec == "" {
		return v.Str()
	}
	return v.Format(spec)
}

// GoValue adapts a native Go value to Value. Scalars, slices and maps are
// shown the way literals of the corresponding kind are written.
type GoValue struct {
	V any
}

// ValueOf returns v itself when it already implements Value and wraps it
// in a GoValue otherwise.
func ValueOf(v any) Value {
	if tv, ok := v.(Value); ok {
		return tv
	}
	return GoValue{V: v}
}

func (g GoValue) TypeName() string {
	return TypeName(g.V)
}

func (g GoValue) Str() (string, error) {
	switch v := g.V.(type) {
	case nil:
		return "None", nil
	case string:
		return v, nil
	case Value:
		return v.Str()
	case error:
		return v.Error(), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return g.Repr()
}

// Repr shows slices and maps as list and dict literals. A slice or map met
// again while it is being shown prints as [...] or {...}.
func (g GoValue) Repr() (string, error) {
	return goRepr(g.V, map[reprKey]bool{})
}

// reprKey identifies a slice (backing array and length) or a map.
type reprKey struct {
	ptr uintptr
	len int
}

func goRepr(val any, seen map[reprKey]bool) (string, error) {
	switch v := val.(type) {
	case nil:
		return "None", nil
	case string:
		return format.Quote(v), nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case *big.Int:
		return v.String(), nil
	case GoValue:
		return goRepr(v.V, seen)
	case *Template:
		return v.ReprWith(seenRepr(seen))
	case *Interpolation:
		return v.ReprWith(seenRepr(seen))
	case Value:
		return v.Repr()
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return format.FloatRepr(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.Len() == 0 {
				return "[]", nil
			}
			key := reprKey{ptr: rv.Pointer(), len: rv.Len()}
			if seen[key] {
				return "[...]", nil
			}
			seen[key] = true
			defer delete(seen, key)
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			s, err := goRepr(rv.Index(i).Interface(), seen)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case reflect.Map:
		if rv.Len() == 0 {
			return "{}", nil
		}
		key := reprKey{ptr: rv.Pointer(), len: -1}
		if seen[key] {
			return "{...}", nil
		}
		seen[key] = true
		defer delete(seen, key)
		parts := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := goRepr(iter.Key().Interface(), seen)
			if err != nil {
				return "", err
			}
			v, err := goRepr(iter.Value().Interface(), seen)
			if err != nil {
				return "", err
			}
			parts = append(parts, k+": "+v)
		}
		slices.Sort(parts)
		return "{" + strings.Join(parts, ", ") + "}", nil
	}
	if s, ok := val.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return fmt.Sprint(val), nil
}

func seenRepr(seen map[reprKey]bool) func(Value) (string, error) {
	return func(v Value) (string, error) {
		return goRepr(v, seen)
	}
}

func (g GoValue) Format(spec string) (string, error) {
	switch v := g.V.(type) {
	case string:
		return format.String(v, spec)
	case bool:
		return format.Bool(v, spec)
	case *big.Int:
		return format.Int(v, spec)
	case Value:
		return v.Format(spec)
	}
	if spec == "" {
		return g.Str()
	}
	rv := reflect.ValueOf(g.V)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return format.Int64(rv.Int(), spec)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return format.Int(new(big.Int).SetUint64(rv.Uint()), spec)
	case reflect.Float32, reflect.Float64:
		return format.Float(rv.Float(), spec)
	}
	return "", format.Unsupported(g.TypeName(), spec)
}

// TypeName returns the name used for v in error messages.
func TypeName(v any) string {
	switch v := v.(type) {
	case nil:
		return "NoneType"
	case string:
		return "str"
	case bool:
		return "bool"
	case *big.Int:
		return "int"
	case TypeNamer:
		return v.TypeName()
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map:
		return "dict"
	}
	return fmt.Sprintf("%T", v)
}

// IsFormatError reports whether err came from applying a format spec.
func IsFormatError(err error) bool {
	return errors.Is(err, format.ErrInvalidSpec)
}
