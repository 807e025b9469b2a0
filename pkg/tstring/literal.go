package tstring

import (
	"strings"
)

// Literal is a parsed template literal: the decoded text segments and the
// replacement fields between them. Adjacent literals in the source are
// merged into one Literal. A Literal is static; Eval produces a Template.
type Literal struct {
	// Source is the text that was parsed.
	Source string
	// Strings holds len(Fields)+1 segments. Debug fields contribute their
	// expression text to the segment before them.
	Strings []string
	Fields  []*Field
}

// Parse parses one or more adjacent template literals, such as
//
//	t"Hello {name!r:>10}"
//	rt'C:\dir\{file}'
//	t"""multi
//	line""" t"more"
//
// Every literal must carry the t prefix, optionally combined with r.
func Parse(src string, opts ...Option) (*Literal, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	p := &parser{
		scanner: scanner{src: src, alloc: c.alloc},
		limits:  c.limits,
	}
	return p.parse()
}

type parser struct {
	scanner
	limits Limits
}

func (p *parser) parse() (*Literal, error) {
	lit := &Literal{Source: p.src}
	buf := buffer{alloc: p.alloc}
	parts := 0
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		if err := p.prefix(parts); err != nil {
			return nil, err
		}
		parts++
		for {
			field, err := p.scanText(&buf)
			if err != nil {
				return nil, err
			}
			if !field {
				break
			}
			open := p.pos
			n := len(lit.Fields) + 1
			if err := p.limits.check(n+1, n); err != nil {
				e := err.(*Error)
				e.Line, e.Column = position(p.src, open)
				return nil, e
			}
			f, debugText, err := p.parseField(0)
			if err != nil {
				return nil, err
			}
			if err := buf.writeString(debugText); err != nil {
				return nil, err
			}
			text, err := buf.string()
			if err != nil {
				return nil, err
			}
			buf.reset()
			if lit.Strings, err = appendReserved(p.alloc, lit.Strings, text); err != nil {
				return nil, err
			}
			if lit.Fields, err = appendReserved(p.alloc, lit.Fields, f); err != nil {
				return nil, err
			}
		}
	}
	if parts == 0 {
		return nil, syntaxError(p.src, p.pos, "expected a template literal")
	}
	text, err := buf.string()
	if err != nil {
		return nil, err
	}
	if lit.Strings, err = appendReserved(p.alloc, lit.Strings, text); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

// prefix consumes a literal prefix and opening quote and configures the
// scanner for the literal's body.
func (p *parser) prefix(parts int) error {
	start := p.pos
	for !p.eof() && isLetter(p.src[p.pos]) {
		p.pos++
	}
	if p.eof() || (p.src[p.pos] != '\'' && p.src[p.pos] != '"') {
		return syntaxError(p.src, start, "expected a template literal")
	}
	written := p.src[start:p.pos]
	switch strings.ToLower(written) {
	case "t":
		p.raw = false
	case "rt", "tr":
		p.raw = true
	default:
		if strings.ContainsAny(written, "tT") {
			return syntaxError(p.src, start, "invalid string prefix %q", written)
		}
		if parts > 0 {
			return syntaxError(p.src, start, "cannot mix template literals with string or bytes literals")
		}
		return syntaxError(p.src, start, "not a template literal: missing t prefix")
	}

	p.quote = p.src[p.pos]
	p.triple = p.peek(1) == p.quote && p.peek(2) == p.quote
	p.pos += p.closeLen()
	return nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// NumFields returns the number of top-level replacement fields.
func (l *Literal) NumFields() int {
	return len(l.Fields)
}
