package tstring

import (
	"strings"
	"unicode/utf8"
)

// scanner walks the source of a template literal. The same cursor is
// shared by literal text, replacement fields and format specs, so nested
// fields are parsed in a single pass.
type scanner struct {
	src   string
	pos   int
	alloc Allocator

	// quote is the delimiter of the literal being scanned, or 0 when the
	// region runs to the end of src.
	quote  byte
	triple bool
	raw    bool
}

func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

// atClose reports whether the cursor is on the closing delimiter.
func (s *scanner) atClose() bool {
	if s.quote == 0 || s.eof() || s.src[s.pos] != s.quote {
		return false
	}
	if !s.triple {
		return true
	}
	return s.peek(1) == s.quote && s.peek(2) == s.quote
}

func (s *scanner) closeLen() int {
	if s.triple {
		return 3
	}
	return 1
}

// lineBreak reports whether the cursor is on a newline that a single-line
// literal may not contain.
func (s *scanner) lineBreak() bool {
	return s.quote != 0 && !s.triple && !s.eof() && s.src[s.pos] == '\n'
}

func (s *scanner) unterminated() error {
	if s.triple {
		return syntaxError(s.src, s.pos, "unterminated triple-quoted template literal")
	}
	return syntaxError(s.src, s.pos, "unterminated template literal")
}

// scanText decodes literal text into buf up to the next replacement field or
// the end of the literal. When it reports a field the cursor is on its
// opening brace; otherwise the closing delimiter has been consumed.
func (s *scanner) scanText(buf *buffer) (field bool, err error) {
	for {
		if s.eof() {
			if s.quote == 0 {
				return false, nil
			}
			return false, s.unterminated()
		}
		if s.atClose() {
			s.pos += s.closeLen()
			return false, nil
		}
		if s.lineBreak() {
			return false, s.unterminated()
		}
		switch c := s.src[s.pos]; c {
		case '{':
			if s.peek(1) != '{' {
				return true, nil
			}
			if err := buf.writeByte('{'); err != nil {
				return false, err
			}
			s.pos += 2
		case '}':
			if s.peek(1) != '}' {
				return false, syntaxError(s.src, s.pos, "single '}' is not allowed")
			}
			if err := buf.writeByte('}'); err != nil {
				return false, err
			}
			s.pos += 2
		case '\\':
			if err := s.escape(buf); err != nil {
				return false, err
			}
		default:
			if err := buf.writeByte(c); err != nil {
				return false, err
			}
			s.pos++
		}
	}
}

var simpleEscapes = map[byte]byte{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
}

// escape handles a backslash sequence at the cursor. Raw literals keep the
// backslash; cooked literals decode it.
func (s *scanner) escape(buf *buffer) error {
	start := s.pos
	if s.pos+1 >= len(s.src) {
		return syntaxError(s.src, start, "trailing backslash in template literal")
	}
	c := s.src[s.pos+1]

	if s.raw {
		if err := buf.writeByte('\\'); err != nil {
			return err
		}
		s.pos++
		if c == '\\' || c == '\n' || (s.quote != 0 && c == s.quote) {
			if err := buf.writeByte(c); err != nil {
				return err
			}
			s.pos++
		}
		return nil
	}

	s.pos += 2
	if d, ok := simpleEscapes[c]; ok {
		return buf.writeByte(d)
	}
	switch {
	case c == '\n':
		return nil
	case c >= '0' && c <= '7':
		v := rune(c - '0')
		for i := 0; i < 2 && !s.eof() && s.src[s.pos] >= '0' && s.src[s.pos] <= '7'; i++ {
			v = v*8 + rune(s.src[s.pos]-'0')
			s.pos++
		}
		if v > 0o377 {
			return syntaxError(s.src, start, "octal escape value %#o out of range", v)
		}
		return buf.writeRune(v)
	case c == 'x':
		return s.hexEscape(buf, start, 2)
	case c == 'u':
		return s.hexEscape(buf, start, 4)
	case c == 'U':
		return s.hexEscape(buf, start, 8)
	case c == 'N':
		return syntaxError(s.src, start, "\\N{...} escapes are not supported")
	}
	// Unknown escapes are kept as written; the character after the
	// backslash is scanned normally.
	s.pos--
	return buf.writeByte('\\')
}

func (s *scanner) hexEscape(buf *buffer, start, digits int) error {
	if s.pos+digits > len(s.src) {
		return syntaxError(s.src, start, "truncated \\%c escape", s.src[start+1])
	}
	var v rune
	for i := range digits {
		d := unhex(s.src[s.pos+i])
		if d < 0 {
			return syntaxError(s.src, start, "truncated \\%c escape", s.src[start+1])
		}
		v = v<<4 | rune(d)
	}
	s.pos += digits
	if v > utf8.MaxRune || (v >= 0xd800 && v <= 0xdfff) {
		return syntaxError(s.src, start, "illegal code point %#x in escape", v)
	}
	return buf.writeRune(v)
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

const spaceChars = " \t\n\r\f\v"

func isSpace(c byte) bool {
	return strings.IndexByte(spaceChars, c) >= 0
}

// trimExpr returns the expression text handed to an evaluator.
func trimExpr(expr string) string {
	return strings.Trim(expr, spaceChars)
}
