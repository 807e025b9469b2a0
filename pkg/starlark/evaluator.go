package starlark

import (
	"fmt"
	"maps"

	"github.com/neurodesk/tstring/pkg/tstring"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Evaluator evaluates template literal fields as Starlark expressions in a
// global environment. It implements tstring.Evaluator and tstring.Compiler.
type Evaluator struct {
	thread   *starlark.Thread
	builtins starlark.StringDict
	globals  starlark.StringDict
	builder  *tstring.Builder
	opts     []tstring.Option
}

// NewEvaluator creates a new Starlark evaluator. The options configure
// every template the evaluator builds.
func NewEvaluator(opts ...tstring.Option) *Evaluator {
	e := &Evaluator{
		thread:  &starlark.Thread{Name: "tstring"},
		globals: make(starlark.StringDict),
		builder: tstring.NewBuilder(opts...),
		opts:    opts,
	}
	e.builtins = CreateBuiltins(e)
	return e
}

// SetGlobal converts a Go value and binds it as a global.
func (e *Evaluator) SetGlobal(name string, value any) error {
	v, err := FromGo(value)
	if err != nil {
		return fmt.Errorf("setting global %s: %w", name, err)
	}
	e.globals[name] = v
	return nil
}

// SetGlobalStarlark binds a native Starlark value as a global.
func (e *Evaluator) SetGlobalStarlark(name string, value starlark.Value) {
	e.globals[name] = value
}

// SetGlobals binds every entry of vars.
func (e *Evaluator) SetGlobals(vars map[string]any) error {
	for name, value := range vars {
		if err := e.SetGlobal(name, value); err != nil {
			return err
		}
	}
	return nil
}

// GetGlobal returns a global.
func (e *Evaluator) GetGlobal(name string) (starlark.Value, bool) {
	v, ok := e.globals[name]
	return v, ok
}

func (e *Evaluator) predeclared() starlark.StringDict {
	env := make(starlark.StringDict, len(e.builtins)+len(e.globals))
	maps.Copy(env, e.builtins)
	maps.Copy(env, e.globals)
	return env
}

// exprSource wraps a field expression in parentheses so that it may span
// lines, as it can inside a triple-quoted literal.
func exprSource(expr string) string {
	return "(" + expr + ")"
}

// Eval evaluates a Starlark expression.
func (e *Evaluator) Eval(expr string) (tstring.Value, error) {
	return e.eval(exprSource(expr))
}

func (e *Evaluator) eval(src string) (tstring.Value, error) {
	val, err := starlark.Eval(e.thread, "<tstring>", src, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark evaluation error: %w", err)
	}
	return FromStarlark(val), nil
}

// Compile checks the syntax of expr without evaluating it.
func (e *Evaluator) Compile(expr string) (tstring.Unit, error) {
	src := exprSource(expr)
	if _, err := syntax.ParseExpr("<tstring>", src, 0); err != nil {
		return nil, err
	}
	return unit{e: e, src: src}, nil
}

type unit struct {
	e   *Evaluator
	src string
}

func (u unit) Eval() (tstring.Value, error) {
	return u.e.eval(u.src)
}

// ExecFile executes a Starlark file and keeps the globals it defines.
func (e *Evaluator) ExecFile(filename string, src any) (starlark.StringDict, error) {
	globals, err := starlark.ExecFile(e.thread, filename, src, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark execution error: %w", err)
	}
	maps.Copy(e.globals, globals)
	return globals, nil
}

// ExecString executes a Starlark script from a string.
func (e *Evaluator) ExecString(script string) (starlark.StringDict, error) {
	return e.ExecFile("<script>", script)
}

// Template evaluates the template literal src against the globals.
func (e *Evaluator) Template(src string) (*tstring.Template, error) {
	return tstring.Execute(src, e, e.opts...)
}

// Render evaluates src and renders the result. Replacement fields left in
// a format spec are evaluated against the globals too.
func (e *Evaluator) Render(src string) (string, error) {
	t, err := e.Template(src)
	if err != nil {
		return "", err
	}
	return t.Render(e.renderOptions()...)
}

func (e *Evaluator) renderOptions() []tstring.Option {
	opts := make([]tstring.Option, 0, len(e.opts)+1)
	opts = append(opts, e.opts...)
	return append(opts, tstring.WithEvaluator(e))
}
