// Package format implements the value formatting used when templates are
// rendered: the r/s/a conversions and the format-spec mini-language for
// strings, integers, floats and booleans.
package format

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formats values according to format specs. Tag selects the
// locale used by the 'n' presentation type; the root locale formats 'n'
// like 'd' or 'g' with no grouping.
type Formatter struct {
	Tag language.Tag
}

// Default is used by the package-level functions.
var Default = Formatter{Tag: language.Und}

// String formats s with spec.
func String(s, spec string) (string, error) { return Default.String(s, spec) }

// Int formats i with spec.
func Int(i *big.Int, spec string) (string, error) { return Default.Int(i, spec) }

// Int64 formats i with spec.
func Int64(i int64, spec string) (string, error) { return Default.Int(big.NewInt(i), spec) }

// Float formats x with spec.
func Float(x float64, spec string) (string, error) { return Default.Float(x, spec) }

// Bool formats b with spec.
func Bool(b bool, spec string) (string, error) { return Default.Bool(b, spec) }

// Unsupported is returned for a non-empty spec applied to a value that has
// no formatting of its own.
func Unsupported(typeName, spec string) error {
	return fmt.Errorf("%w: unsupported format string '%s' passed to %s", ErrInvalidSpec, spec, typeName)
}

func specError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidSpec}, args...)...)
}

// String formats a string. Only the s presentation type is accepted.
func (f Formatter) String(str, spec string) (string, error) {
	if spec == "" {
		return str, nil
	}
	s, ok := parse(spec)
	if !ok {
		return "", invalid(spec, "str")
	}
	switch {
	case s.Type != 0 && s.Type != 's':
		return "", unknownCode(s.Type, "str")
	case s.Sign != 0:
		return "", specError("sign not allowed in string format specifier")
	case s.Alternate:
		return "", specError("alternate form (#) not allowed in string format specifier")
	case s.NoNegZero:
		return "", specError("negative zero coercion (z) not allowed in string format specifier")
	case s.Grouping != 0:
		return "", specError("cannot specify '%c' with 's'", s.Grouping)
	case s.Align == '=':
		return "", specError("'=' alignment not allowed in string format specifier")
	}
	if s.Precision >= 0 && utf8.RuneCountInString(str) > s.Precision {
		n := 0
		for i := range str {
			if n == s.Precision {
				str = str[:i]
				break
			}
			n++
		}
	}
	return s.pad("", str, '<', false), nil
}

// Bool formats a boolean. A non-empty spec formats it as the integer 0 or 1.
func (f Formatter) Bool(b bool, spec string) (string, error) {
	if spec == "" {
		if b {
			return "True", nil
		}
		return "False", nil
	}
	v := int64(0)
	if b {
		v = 1
	}
	return f.integer(big.NewInt(v), spec, "bool")
}

// Int formats an integer of any size.
func (f Formatter) Int(i *big.Int, spec string) (string, error) {
	return f.integer(i, spec, "int")
}

func (f Formatter) integer(i *big.Int, spec, typeName string) (string, error) {
	if spec == "" {
		return i.String(), nil
	}
	s, ok := parse(spec)
	if !ok {
		return "", invalid(spec, typeName)
	}
	switch s.Type {
	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		x, _ := new(big.Float).SetInt(i).Float64()
		return f.float(x, s, typeName)
	case 0, 'd', 'n', 'b', 'o', 'x', 'X', 'c':
	default:
		return "", unknownCode(s.Type, typeName)
	}
	if s.Precision >= 0 {
		return "", specError("precision not allowed in integer format specifier")
	}
	if s.Type == 'c' {
		return f.char(i, s)
	}

	base, every := 10, 3
	switch s.Type {
	case 'b':
		base, every = 2, 4
	case 'o':
		base, every = 8, 4
	case 'x', 'X':
		base, every = 16, 4
	}
	if s.Grouping != 0 && s.Type == 'n' {
		return "", specError("cannot specify '%c' with 'n'", s.Grouping)
	}
	if s.Grouping == ',' && base != 10 {
		return "", specError("cannot specify ',' with '%c'", s.Type)
	}

	neg := i.Sign() < 0
	digits := new(big.Int).Abs(i).Text(base)
	if s.Type == 'X' {
		digits = strings.ToUpper(digits)
	}
	prefix := signPrefix(neg, s.Sign)
	if s.Alternate && base != 10 {
		prefix += "0" + string(s.Type)
	}
	sep := ""
	if s.Grouping != 0 {
		sep = string(s.Grouping)
	}
	if s.Type == 'n' {
		sep, _ = f.separators()
	}
	body := groupDigits(digits, sep, every, s.zeroFill(prefix))
	return s.pad(prefix, body, '>', true), nil
}

func (f Formatter) char(i *big.Int, s Spec) (string, error) {
	switch {
	case s.Sign != 0:
		return "", specError("sign not allowed with integer format specifier 'c'")
	case s.Alternate:
		return "", specError("alternate form (#) not allowed with integer format specifier 'c'")
	case s.Grouping != 0:
		return "", specError("cannot specify '%c' with 'c'", s.Grouping)
	}
	if !i.IsInt64() || i.Int64() < 0 || i.Int64() > utf8.MaxRune {
		return "", fmt.Errorf("%%c arg not in range(0x%x)", utf8.MaxRune+1)
	}
	return s.pad("", string(rune(i.Int64())), '>', true), nil
}

// Float formats a float.
func (f Formatter) Float(x float64, spec string) (string, error) {
	if spec == "" {
		return FloatRepr(x), nil
	}
	s, ok := parse(spec)
	if !ok {
		return "", invalid(spec, "float")
	}
	return f.float(x, s, "float")
}

func (f Formatter) float(x float64, s Spec, typeName string) (string, error) {
	switch s.Type {
	case 0, 'e', 'E', 'f', 'F', 'g', 'G', 'n', '%':
	default:
		return "", unknownCode(s.Type, typeName)
	}
	if s.Grouping != 0 && s.Type == 'n' {
		return "", specError("cannot specify '%c' with 'n'", s.Grouping)
	}

	neg := math.Signbit(x) && !math.IsNaN(x)
	finite := !math.IsNaN(x) && !math.IsInf(x, 0)
	var body string
	switch {
	case math.IsNaN(x):
		body = "nan"
	case math.IsInf(x, 0):
		body = "inf"
	default:
		body = formatAbs(math.Abs(x), s)
	}
	switch s.Type {
	case 'E', 'F', 'G':
		body = strings.ToUpper(body)
	case '%':
		body += "%"
	}
	if neg && s.NoNegZero && isZero(body) {
		neg = false
	}
	prefix := signPrefix(neg, s.Sign)
	if !finite {
		return s.pad(prefix, body, '>', true), nil
	}

	end := 0
	for end < len(body) && isDigit(rune(body[end])) {
		end++
	}
	intPart, rest := body[:end], body[end:]
	sep, dec := "", "."
	if s.Grouping != 0 {
		sep = string(s.Grouping)
	}
	if s.Type == 'n' {
		sep, dec = f.separators()
		if dec != "." {
			rest = strings.Replace(rest, ".", dec, 1)
		}
	}
	minInt := s.zeroFill(prefix)
	if minInt > 0 {
		minInt -= utf8.RuneCountInString(rest)
	}
	body = groupDigits(intPart, sep, 3, minInt) + rest
	return s.pad(prefix, body, '>', true), nil
}

func formatAbs(x float64, s Spec) string {
	p := s.Precision
	switch s.Type {
	case 'f', 'F', '%':
		if p < 0 {
			p = 6
		}
		if s.Type == '%' {
			x *= 100
		}
		out := strconv.FormatFloat(x, 'f', p, 64)
		if s.Alternate && p == 0 {
			out += "."
		}
		return out
	case 'e', 'E':
		if p < 0 {
			p = 6
		}
		out := strconv.FormatFloat(x, 'e', p, 64)
		if s.Alternate && p == 0 {
			i := strings.IndexByte(out, 'e')
			out = out[:i] + "." + out[i:]
		}
		return out
	case 'g', 'G', 'n':
		if p < 0 {
			p = 6
		}
		return formatG(x, p, s.Alternate)
	}
	if p < 0 {
		return FloatRepr(x)
	}
	out := formatG(x, p, s.Alternate)
	if !strings.ContainsAny(out, ".e") {
		out += ".0"
	}
	return out
}

// formatG applies the general format: fixed notation when the exponent
// lies in [-4, p), scientific otherwise, with trailing zeros removed unless
// alt is set.
func formatG(x float64, p int, alt bool) string {
	if p == 0 {
		p = 1
	}
	exp := decimalExponent(x, p)
	var out string
	if exp >= -4 && exp < p {
		out = strconv.FormatFloat(x, 'f', p-1-exp, 64)
	} else {
		out = strconv.FormatFloat(x, 'e', p-1, 64)
	}
	if alt {
		if !strings.ContainsRune(out, '.') {
			if i := strings.IndexByte(out, 'e'); i >= 0 {
				out = out[:i] + "." + out[i:]
			} else {
				out += "."
			}
		}
		return out
	}
	mant, exponent := out, ""
	if i := strings.IndexByte(out, 'e'); i >= 0 {
		mant, exponent = out[:i], out[i:]
	}
	if strings.ContainsRune(mant, '.') {
		mant = strings.TrimRight(mant, "0")
		mant = strings.TrimSuffix(mant, ".")
	}
	return mant + exponent
}

func isZero(body string) bool {
	if i := strings.IndexAny(body, "eE"); i >= 0 {
		body = body[:i]
	}
	return !strings.ContainsAny(body, "123456789")
}

func signPrefix(neg bool, sign byte) string {
	switch {
	case neg:
		return "-"
	case sign == '+':
		return "+"
	case sign == ' ':
		return " "
	}
	return ""
}

// zeroFill returns the width the digits must fill when the spec pads a
// number with zeros after its sign, or zero when it does not.
func (s Spec) zeroFill(prefix string) int {
	fill, align := s.fillAlign('>', true)
	if !s.ZeroPad || fill != '0' || align != '=' {
		return 0
	}
	return s.Width - utf8.RuneCountInString(prefix)
}

// groupDigits inserts sep every n digits counting from the right. The digit
// string is first extended with leading zeros until the grouped result is
// at least minLen characters wide.
func groupDigits(digits, sep string, every, minLen int) string {
	if sep == "" {
		if pad := minLen - len(digits); pad > 0 {
			return strings.Repeat("0", pad) + digits
		}
		return digits
	}
	sepLen := utf8.RuneCountInString(sep)
	d := len(digits)
	for d+(d-1)/every*sepLen < minLen {
		d++
	}
	if d > len(digits) {
		digits = strings.Repeat("0", d-len(digits)) + digits
	}
	var b strings.Builder
	b.Grow(d + d/every*len(sep))
	first := d % every
	if first == 0 {
		first = every
	}
	b.WriteString(digits[:first])
	for i := first; i < d; i += every {
		b.WriteString(sep)
		b.WriteString(digits[i : i+every])
	}
	return b.String()
}

// separators returns the grouping and decimal separators of the locale.
func (f Formatter) separators() (group, decimal string) {
	if f.Tag.IsRoot() {
		return "", "."
	}
	p := message.NewPrinter(f.Tag)
	group = strings.Trim(p.Sprintf("%v", 1000), "0123456789")
	decimal = strings.Trim(p.Sprintf("%v", 0.5), "0123456789")
	if decimal == "" {
		decimal = "."
	}
	return group, decimal
}
