package tstring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var errUndefined = errors.New("undefined name")

// scope is a small evaluator for tests: names from the map, integer
// literals and single-quoted strings.
type scope map[string]any

func (s scope) Eval(expr string) (Value, error) {
	if v, ok := s[expr]; ok {
		return ValueOf(v), nil
	}
	if n, err := strconv.Atoi(expr); err == nil {
		return ValueOf(n), nil
	}
	if len(expr) >= 2 && expr[0] == '\'' && expr[len(expr)-1] == '\'' {
		return ValueOf(strings.ReplaceAll(expr[1:len(expr)-1], `\\`, `\`)), nil
	}
	return nil, fmt.Errorf("%w: %s", errUndefined, expr)
}

// checkingScope also implements Compiler and rejects expressions that
// contain "@@".
type checkingScope struct {
	scope
	compiled []string
}

func (c *checkingScope) Compile(expr string) (Unit, error) {
	if strings.Contains(expr, "@@") {
		return nil, errors.New("bad token")
	}
	c.compiled = append(c.compiled, expr)
	return deferredUnit{ev: c.scope, expr: expr}, nil
}

func mustExecute(t *testing.T, src string, ev Evaluator, opts ...Option) *Template {
	t.Helper()
	tmpl, err := Execute(src, ev, opts...)
	require.NoError(t, err)
	return tmpl
}

func mustRender(t *testing.T, tmpl *Template, opts ...Option) string {
	t.Helper()
	s, err := tmpl.Render(opts...)
	require.NoError(t, err)
	return s
}

func expressions(tmpl *Template) []string {
	var out []string
	for _, it := range tmpl.Interpolations() {
		out = append(out, it.Expression())
	}
	return out
}

// failAfter returns an allocator that fails the n-th reservation and every
// one after it, counting from 1.
func failAfter(n int) (Allocator, *int) {
	calls := 0
	return AllocatorFunc(func(int) error {
		calls++
		if calls >= n {
			return newError(KindMemory, "injected failure")
		}
		return nil
	}), &calls
}
