package format

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidSpec is wrapped by every error caused by a malformed or
// inapplicable format specification.
var ErrInvalidSpec = errors.New("invalid format specifier")

// maxWidth bounds width and precision so padding cannot be used to request
// arbitrarily large buffers.
const maxWidth = 1 << 20

// Spec is a parsed format specification:
//
//	[[fill]align][sign]["z"]["#"]["0"][width][grouping]["." precision][type]
type Spec struct {
	Fill      rune
	Align     byte // '<', '>', '^', '=' or 0
	Sign      byte // '+', '-', ' ' or 0
	NoNegZero bool // 'z'
	Alternate bool // '#'
	ZeroPad   bool // '0' before width
	Width     int
	Grouping  byte // ',', '_' or 0
	Precision int  // -1 when absent
	Type      byte // presentation type or 0

	explicitFill bool
}

func isAlign(r rune) bool {
	return r == '<' || r == '>' || r == '^' || r == '='
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Parse parses spec into its fields. It only validates the grammar; whether
// a field applies to a particular kind of value is checked when formatting.
func Parse(spec string) (Spec, error) {
	s, ok := parse(spec)
	if !ok {
		return Spec{}, fmt.Errorf("%w '%s'", ErrInvalidSpec, spec)
	}
	return s, nil
}

func parse(spec string) (Spec, bool) {
	s := Spec{Fill: ' ', Precision: -1}
	r := []rune(spec)
	n := len(r)
	i := 0

	if n >= 2 && isAlign(r[1]) {
		s.Fill = r[0]
		s.explicitFill = true
		s.Align = byte(r[1])
		i = 2
	} else if n >= 1 && isAlign(r[0]) {
		s.Align = byte(r[0])
		i = 1
	}

	if i < n && (r[i] == '+' || r[i] == '-' || r[i] == ' ') {
		s.Sign = byte(r[i])
		i++
	}
	if i < n && r[i] == 'z' {
		s.NoNegZero = true
		i++
	}
	if i < n && r[i] == '#' {
		s.Alternate = true
		i++
	}
	if i < n && r[i] == '0' {
		s.ZeroPad = true
		i++
	}

	for i < n && isDigit(r[i]) {
		s.Width = s.Width*10 + int(r[i]-'0')
		if s.Width > maxWidth {
			return Spec{}, false
		}
		i++
	}

	if i < n && (r[i] == ',' || r[i] == '_') {
		s.Grouping = byte(r[i])
		i++
	}

	if i < n && r[i] == '.' {
		i++
		start := i
		p := 0
		for i < n && isDigit(r[i]) {
			p = p*10 + int(r[i]-'0')
			if p > maxWidth {
				return Spec{}, false
			}
			i++
		}
		if i == start {
			return Spec{}, false
		}
		s.Precision = p
	}

	if i < n {
		if r[i] >= utf8.RuneSelf {
			return Spec{}, false
		}
		s.Type = byte(r[i])
		i++
	}
	if i != n {
		return Spec{}, false
	}
	return s, true
}

// fillAlign resolves the effective fill character and alignment, applying
// the zero-padding flag and the default alignment for the value kind.
func (s Spec) fillAlign(def byte, numeric bool) (rune, byte) {
	fill, align := s.Fill, s.Align
	if s.ZeroPad && !s.explicitFill {
		fill = '0'
		if align == 0 && numeric {
			align = '='
		}
	}
	if align == 0 {
		align = def
	}
	return fill, align
}

// pad lays out prefix (sign and base marker) and body within the spec width.
func (s Spec) pad(prefix, body string, def byte, numeric bool) string {
	fill, align := s.fillAlign(def, numeric)
	n := utf8.RuneCountInString(prefix) + utf8.RuneCountInString(body)
	if s.Width <= n {
		return prefix + body
	}
	gap := s.Width - n
	switch align {
	case '<':
		return prefix + body + repeatRune(fill, gap)
	case '^':
		left := gap / 2
		return repeatRune(fill, left) + prefix + body + repeatRune(fill, gap-left)
	case '=':
		return prefix + repeatRune(fill, gap) + body
	default:
		return repeatRune(fill, gap) + prefix + body
	}
}

func repeatRune(r rune, n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, 0, n*utf8.RuneLen(r))
	for range n {
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf)
}

func invalid(spec, typeName string) error {
	return fmt.Errorf("%w '%s' for object of type '%s'", ErrInvalidSpec, spec, typeName)
}

func unknownCode(code byte, typeName string) error {
	return fmt.Errorf("%w: unknown format code '%c' for object of type '%s'", ErrInvalidSpec, code, typeName)
}
