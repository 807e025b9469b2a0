package tstring

import (
	"fmt"
	"strings"
)

// Kind classifies the errors raised by this package.
type Kind string

const (
	KindSyntax       Kind = "syntax error"
	KindConstruction Kind = "construction error"
	KindCapacity     Kind = "capacity error"
	KindOverflow     Kind = "overflow error"
	KindMemory       Kind = "memory error"
	KindType         Kind = "type error"
	KindValue        Kind = "value error"
	KindReadOnly     Kind = "attribute error"
)

// Error is returned for every failure that originates in this package.
// Errors raised while evaluating an expression or formatting a value are
// returned unchanged and are never wrapped in an Error.
type Error struct {
	Kind    Kind
	Message string

	// Line and Column locate syntax errors in the literal source. Both are
	// 1-based and zero when the error has no position.
	Line   int
	Column int

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d, column %d", e.Line, e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so that
// errors.Is(err, ErrSyntax) matches every syntax error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrSyntax       = &Error{Kind: KindSyntax}
	ErrConstruction = &Error{Kind: KindConstruction}
	ErrCapacity     = &Error{Kind: KindCapacity}
	ErrOverflow     = &Error{Kind: KindOverflow}
	ErrNoMemory     = &Error{Kind: KindMemory}
	ErrType         = &Error{Kind: KindType}
	ErrValue        = &Error{Kind: KindValue}
	ErrReadOnly     = &Error{Kind: KindReadOnly}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// syntaxError builds a syntax error positioned at byte offset pos of src.
func syntaxError(src string, pos int, format string, args ...any) *Error {
	e := newError(KindSyntax, format, args...)
	e.Line, e.Column = position(src, pos)
	return e
}

func position(src string, pos int) (line, col int) {
	if pos > len(src) {
		pos = len(src)
	}
	if pos < 0 {
		pos = 0
	}
	line = 1 + strings.Count(src[:pos], "\n")
	col = pos + 1
	if i := strings.LastIndexByte(src[:pos], '\n'); i >= 0 {
		col = pos - i
	}
	return line, col
}

func capacityError(format string, args ...any) *Error {
	return newError(KindCapacity, format, args...)
}

func overflowError(format string, args ...any) *Error {
	return newError(KindOverflow, format, args...)
}

// ReadOnlyError reports an attempt to assign attr on an immutable value of
// type typeName. Host bindings use it to reject attribute assignment.
func ReadOnlyError(typeName, attr string) error {
	return newError(KindReadOnly, "'%s' object attribute '%s' is read-only", typeName, attr)
}
