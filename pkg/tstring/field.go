package tstring

import (
	"strings"
)

const (
	// maxNesting is the number of field levels allowed: a field and one
	// level of fields inside its format spec.
	maxNesting = 2

	// maxBrackets bounds bracket nesting inside an expression.
	maxBrackets = 200

	fieldSize = 12 * wordSize
)

// Field is a replacement field as written in a literal.
type Field struct {
	// Expression is the expression text as written. For a debug field it is
	// the text before '=' with trailing whitespace removed.
	Expression string
	Conversion Conversion
	// HasSpec reports whether a ':' introduced a format spec, which may
	// still be empty.
	HasSpec bool
	Spec    Spec
	// Debug is set for fields written with a trailing '='.
	Debug bool
	// Pos is the byte offset of the opening brace in the source.
	Pos int
}

// Spec is a format spec as written: text segments interleaved with nested
// replacement fields. Len(Strings) is always len(Fields)+1.
type Spec struct {
	Strings []string
	Fields  []*Field
}

// Static returns the spec text when it has no nested fields.
func (s Spec) Static() (string, bool) {
	if len(s.Fields) > 0 {
		return "", false
	}
	if len(s.Strings) == 0 {
		return "", true
	}
	return s.Strings[0], true
}

// parseField parses the replacement field whose opening brace is at the
// cursor and leaves the cursor after its closing brace. For a debug field
// the returned text is the source from the expression start through the
// '=' and any whitespace after it, to be emitted as literal text.
func (s *scanner) parseField(depth int) (*Field, string, error) {
	if err := s.alloc.Reserve(fieldSize); err != nil {
		return nil, "", err
	}
	f := &Field{Pos: s.pos}
	s.pos++
	start := s.pos

	end, debugEnd, err := s.scanExpression(f.Pos)
	if err != nil {
		return nil, "", err
	}
	expr := s.src[start:end]
	if trimExpr(expr) == "" {
		return nil, "", syntaxError(s.src, f.Pos, "empty expression not allowed in template literal")
	}
	f.Expression = expr
	debugText := ""
	if debugEnd >= 0 {
		f.Debug = true
		f.Expression = strings.TrimRight(expr, spaceChars)
		debugText = s.src[start:debugEnd]
	}

	if s.src[s.pos] == '!' {
		if err := s.parseConversion(f); err != nil {
			return nil, "", err
		}
	}
	if s.src[s.pos] == ':' {
		s.pos++
		f.HasSpec = true
		spec, err := s.scanSpec(f.Pos, depth)
		if err != nil {
			return nil, "", err
		}
		f.Spec = spec
		if trailingConversion(spec) {
			return nil, "", syntaxError(s.src, s.pos, "conversion must come before the format spec")
		}
	}
	// The cursor is on the closing brace.
	s.pos++

	if f.Debug && f.Conversion == ConversionNone && !f.HasSpec {
		f.Conversion = ConversionRepr
	}
	return f, debugText, nil
}

func (s *scanner) unterminatedField(open int) error {
	return syntaxError(s.src, open, "expecting '}' to close replacement field")
}

// scanExpression advances to the end of the expression of the field opened
// at open. It returns the end offset of the expression text and, for a
// debug field, the offset just past the '=' marker and following
// whitespace (-1 otherwise). On return the cursor is on '!', ':' or '}'.
func (s *scanner) scanExpression(open int) (end, debugEnd int, err error) {
	var stack [maxBrackets]byte
	depth := 0
	for {
		if s.eof() {
			return 0, 0, s.unterminatedField(open)
		}
		if s.lineBreak() {
			return 0, 0, s.unterminated()
		}
		c := s.src[s.pos]
		switch c {
		case '\'', '"':
			// Even the literal's own delimiter opens a nested string here.
			if err := s.skipString(); err != nil {
				return 0, 0, err
			}
			continue
		case '#':
			return 0, 0, syntaxError(s.src, s.pos, "'#' is not allowed in a template expression")
		case '(', '[', '{':
			if depth == maxBrackets {
				return 0, 0, syntaxError(s.src, s.pos, "too many nested brackets in template expression")
			}
			stack[depth] = closerOf(c)
			depth++
		case ')', ']', '}':
			if depth == 0 {
				if c == '}' {
					return s.pos, -1, nil
				}
				return 0, 0, syntaxError(s.src, s.pos, "unmatched '%c' in template expression", c)
			}
			if stack[depth-1] != c {
				return 0, 0, syntaxError(s.src, s.pos, "closing '%c' does not match opening bracket", c)
			}
			depth--
		case '!':
			if s.peek(1) == '=' {
				s.pos += 2
				continue
			}
			if depth == 0 {
				return s.pos, -1, nil
			}
		case ':':
			if depth == 0 {
				return s.pos, -1, nil
			}
		case '=':
			if s.peek(1) == '=' {
				s.pos += 2
				continue
			}
			if depth == 0 && !s.afterComparison() {
				j := s.pos + 1
				for j < len(s.src) && isSpace(s.src[j]) {
					j++
				}
				if j < len(s.src) && (s.src[j] == '!' || s.src[j] == ':' || s.src[j] == '}') {
					end := s.pos
					s.pos = j
					return end, j, nil
				}
			}
		}
		s.pos++
	}
}

// afterComparison reports whether the '=' at the cursor completes a '<=' or
// '>=' operator.
func (s *scanner) afterComparison() bool {
	if s.pos == 0 {
		return false
	}
	p := s.src[s.pos-1]
	return p == '<' || p == '>'
}

func closerOf(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return '}'
}

// skipString moves past a string literal nested in an expression.
func (s *scanner) skipString() error {
	start := s.pos
	q := s.src[s.pos]
	triple := s.peek(1) == q && s.peek(2) == q
	n := 1
	if triple {
		n = 3
	}
	s.pos += n
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
			continue
		case c == q && (!triple || (s.peek(1) == q && s.peek(2) == q)):
			s.pos += n
			return nil
		case c == '\n' && !triple:
			return syntaxError(s.src, start, "unterminated string in template expression")
		}
		s.pos++
	}
	return syntaxError(s.src, start, "unterminated string in template expression")
}

// parseConversion parses "!c" at the cursor and leaves the cursor on the
// ':' or '}' that follows.
func (s *scanner) parseConversion(f *Field) error {
	s.pos++
	if s.eof() {
		return s.unterminatedField(f.Pos)
	}
	switch c := s.src[s.pos]; c {
	case 'r', 's', 'a':
		f.Conversion = Conversion(c)
		s.pos++
	case '}', ':':
		return syntaxError(s.src, s.pos, "missing conversion character")
	default:
		return syntaxError(s.src, s.pos, "invalid conversion character '%c': expected 's', 'r', or 'a'", c)
	}
	for !s.eof() && isSpace(s.src[s.pos]) && !s.lineBreak() {
		s.pos++
	}
	if s.eof() {
		return s.unterminatedField(f.Pos)
	}
	if c := s.src[s.pos]; c != ':' && c != '}' {
		return syntaxError(s.src, s.pos, "expected ':' or '}' after conversion")
	}
	return nil
}

// scanSpec parses a format spec up to the closing brace of its field,
// leaving the cursor on that brace.
func (s *scanner) scanSpec(open, depth int) (Spec, error) {
	var spec Spec
	buf := buffer{alloc: s.alloc}
	for {
		if s.eof() || s.atClose() {
			return Spec{}, s.unterminatedField(open)
		}
		if s.lineBreak() {
			return Spec{}, s.unterminated()
		}
		switch c := s.src[s.pos]; c {
		case '}':
			text, err := buf.string()
			if err != nil {
				return Spec{}, err
			}
			if spec.Strings, err = appendReserved(s.alloc, spec.Strings, text); err != nil {
				return Spec{}, err
			}
			return spec, nil
		case '{':
			if depth+1 >= maxNesting {
				return Spec{}, syntaxError(s.src, s.pos, "expressions nested too deeply")
			}
			nested, debugText, err := s.parseField(depth + 1)
			if err != nil {
				return Spec{}, err
			}
			if err := buf.writeString(debugText); err != nil {
				return Spec{}, err
			}
			text, err := buf.string()
			if err != nil {
				return Spec{}, err
			}
			buf.reset()
			if spec.Strings, err = appendReserved(s.alloc, spec.Strings, text); err != nil {
				return Spec{}, err
			}
			if spec.Fields, err = appendReserved(s.alloc, spec.Fields, nested); err != nil {
				return Spec{}, err
			}
		case '\\':
			if err := s.escape(&buf); err != nil {
				return Spec{}, err
			}
		default:
			if err := buf.writeByte(c); err != nil {
				return Spec{}, err
			}
			s.pos++
		}
	}
}

// trailingConversion reports whether the spec ends in "!r", "!s" or "!a",
// a conversion written after the format spec.
func trailingConversion(spec Spec) bool {
	last := strings.TrimRight(spec.Strings[len(spec.Strings)-1], spaceChars)
	n := len(last)
	if n < 2 || last[n-2] != '!' {
		return false
	}
	switch last[n-1] {
	case 'r', 's', 'a':
		return true
	}
	return false
}

// appendReserved appends v to list, reserving storage whenever the backing
// array has to grow.
func appendReserved[T any](a Allocator, list []T, v T) ([]T, error) {
	if len(list) == cap(list) {
		newCap := 2 * cap(list)
		if newCap < 4 {
			newCap = 4
		}
		if err := reserveWords(a, newCap); err != nil {
			return list, err
		}
		grown := make([]T, len(list), newCap)
		copy(grown, list)
		list = grown
	}
	return append(list, v), nil
}
