package tstring

import (
	"strings"
	"testing"

	"github.com/neurodesk/tstring/pkg/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	vars := scope{
		"name":  "Ann",
		"quote": "it's",
		"cafe":  "café",
		"pi":    3.14159,
		"n":     1234567,
		"none":  nil,
		"ok":    true,
		"list":  []any{1, "a"},
		"w":     8,
		"p":     2,
	}
	tests := []struct {
		src  string
		want string
	}{
		{`t"{name}"`, "Ann"},
		{`t"{name!r}"`, "'Ann'"},
		{`t"{name!s}"`, "Ann"},
		{`t"{quote!r}"`, `"it's"`},
		{`t"{cafe!a}"`, `'caf\xe9'`},
		{`t"{cafe!r}"`, `'café'`},
		{`t"{name:>6}"`, "   Ann"},
		{`t"{name!r:^9}"`, "  'Ann'  "},
		{`t"{pi:.2f}"`, "3.14"},
		{`t"{pi}"`, "3.14159"},
		{`t"{pi=:.2f}"`, "pi=3.14"},
		{`t"{pi = }"`, "pi = 3.14159"},
		{`t"{n:,}"`, "1,234,567"},
		{`t"{n:_x}"`, "12_d687"},
		{`t"{none}"`, "None"},
		{`t"{ok}"`, "True"},
		{`t"{list}"`, "[1, 'a']"},
		{`t"{pi:{w}.{p}f}"`, "    3.14"},
		{`t"{name:*^{w}}"`, "**Ann***"},
		{`t"{'x':{'>'}{w!s}}"`, "       x"},
		{`t"a\nb{name}"`, "a\nbAnn"},
		{`rt"a\n{name}"`, `a\nAnn`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tmpl := mustExecute(t, tt.src, vars)
			assert.Equal(t, tt.want, mustRender(t, tmpl))
		})
	}
}

func TestRenderFormatErrors(t *testing.T) {
	tmpl := mustExecute(t, `t"{name:d}"`, scope{"name": "Ann"})
	_, err := tmpl.Render()
	require.Error(t, err)
	assert.ErrorIs(t, err, format.ErrInvalidSpec)
	assert.True(t, IsFormatError(err))

	tmpl = mustExecute(t, `t"{none:>5}"`, scope{"none": nil})
	_, err = tmpl.Render()
	assert.ErrorIs(t, err, format.ErrInvalidSpec)
}

func TestRenderDebugSuffix(t *testing.T) {
	it := MustInterpolation(ValueOf(42), "x=", ConversionNone, "")
	tmpl, err := NewFromArgs("value: ", it)
	require.NoError(t, err)
	assert.Equal(t, "value: x=42", mustRender(t, tmpl))
}

func TestRenderSpecBraces(t *testing.T) {
	build := func(spec string) *Template {
		tmpl, err := NewFromArgs(MustInterpolation(ValueOf(5), "v", ConversionNone, spec))
		require.NoError(t, err)
		return tmpl
	}

	_, err := build("{{5}}").Render()
	assert.ErrorIs(t, err, ErrValue)
	assert.Contains(t, err.Error(), "cannot contain braces")

	_, err = build(">{w}").Render()
	assert.ErrorIs(t, err, ErrValue)

	_, err = build(">5}").Render()
	assert.ErrorIs(t, err, ErrValue)

	got, err := build(">{w}").Render(WithEvaluator(scope{"w": 4}))
	require.NoError(t, err)
	assert.Equal(t, "   5", got)

	_, err = build(">{missing}").Render(WithEvaluator(scope{}))
	assert.ErrorIs(t, err, errUndefined)
}

func TestRenderMaxSize(t *testing.T) {
	tmpl := mustExecute(t, `t"{name}{name}"`, scope{"name": strings.Repeat("x", 10)})

	got, err := tmpl.Render(WithMaxRenderSize(20))
	require.NoError(t, err)
	assert.Len(t, got, 20)

	_, err = tmpl.Render(WithMaxRenderSize(19))
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Contains(t, err.Error(), "template string too large")
}

func TestRenderNestedTemplate(t *testing.T) {
	inner := mustExecute(t, `t"<{name}>"`, scope{"name": "in"})
	outer := mustExecute(t, `t"[{inner}] [{inner!r:.8}]"`, scope{"inner": inner})
	assert.Equal(t, "[<in>] [Template]", mustRender(t, outer))
}

func TestRenderDeterministic(t *testing.T) {
	calls := 0
	ev := EvaluatorFunc(func(string) (Value, error) {
		calls++
		return ValueOf(calls), nil
	})
	tmpl := mustExecute(t, `t"{a}-{b}"`, ev)
	first := mustRender(t, tmpl)
	assert.Equal(t, first, mustRender(t, tmpl))
	assert.Equal(t, "1-2", first)
	assert.Equal(t, 2, calls)
}
