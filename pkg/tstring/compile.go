package tstring

import "unicode/utf8"

// Evaluator evaluates the expression of a replacement field in the scope
// where the literal appears. Errors it returns are passed to the caller
// unchanged.
type Evaluator interface {
	Eval(expr string) (Value, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(expr string) (Value, error)

func (f EvaluatorFunc) Eval(expr string) (Value, error) {
	return f(expr)
}

// Compiler is implemented by evaluators that can check an expression's
// syntax and prepare it before any expression of the literal runs.
type Compiler interface {
	Compile(expr string) (Unit, error)
}

// Unit is a prepared expression.
type Unit interface {
	Eval() (Value, error)
}

type deferredUnit struct {
	ev   Evaluator
	expr string
}

func (u deferredUnit) Eval() (Value, error) {
	return u.ev.Eval(u.expr)
}

// Program is a Literal bound to an evaluator with every expression
// prepared. Each Exec evaluates the expressions again, left to right.
type Program struct {
	lit     *Literal
	fields  []*compiledField
	builder *Builder
}

type compiledField struct {
	field  *Field
	unit   Unit
	nested []*compiledField
}

// Execute parses src, evaluates its fields with ev and returns the
// resulting Template.
func Execute(src string, ev Evaluator, opts ...Option) (*Template, error) {
	lit, err := Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	return lit.Eval(ev, opts...)
}

// Compile prepares every expression of l for evaluation by ev. When ev
// implements Compiler, an expression it rejects is reported as a syntax
// error before anything is evaluated.
func (l *Literal) Compile(ev Evaluator, opts ...Option) (*Program, error) {
	p := &Program{lit: l, builder: NewBuilder(opts...)}
	if err := p.builder.Err(); err != nil {
		return nil, err
	}
	fields, err := p.compileFields(ev, l.Fields)
	if err != nil {
		return nil, err
	}
	p.fields = fields
	return p, nil
}

// Eval compiles l and executes it once.
func (l *Literal) Eval(ev Evaluator, opts ...Option) (*Template, error) {
	p, err := l.Compile(ev, opts...)
	if err != nil {
		return nil, err
	}
	return p.Exec()
}

func (p *Program) compileFields(ev Evaluator, fields []*Field) ([]*compiledField, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if err := reserveWords(p.builder.alloc, len(fields)); err != nil {
		return nil, err
	}
	out := make([]*compiledField, len(fields))
	for i, f := range fields {
		cf := &compiledField{field: f}
		expr := trimExpr(f.Expression)
		if c, ok := ev.(Compiler); ok {
			u, err := c.Compile(expr)
			if err != nil {
				line, col := position(p.lit.Source, f.Pos)
				return nil, &Error{
					Kind:    KindSyntax,
					Message: "invalid syntax in template expression " + quoteExpr(expr),
					Line:    line,
					Column:  col,
					Err:     err,
				}
			}
			cf.unit = u
		} else {
			cf.unit = deferredUnit{ev: ev, expr: expr}
		}
		nested, err := p.compileFields(ev, f.Spec.Fields)
		if err != nil {
			return nil, err
		}
		cf.nested = nested
		out[i] = cf
	}
	return out, nil
}

// quoteExpr quotes expr for an error message, shortened to 40 characters.
func quoteExpr(expr string) string {
	if utf8.RuneCountInString(expr) > 40 {
		runes := []rune(expr)
		expr = string(runes[:37]) + "..."
	}
	return "'" + expr + "'"
}

// Exec evaluates every field and builds the Template. The first error
// stops execution; evaluation errors are returned unchanged.
func (p *Program) Exec() (*Template, error) {
	b := p.builder
	if err := reserveWords(b.alloc, len(p.fields)); err != nil {
		return nil, err
	}
	interps := make([]*Interpolation, len(p.fields))
	for i, cf := range p.fields {
		v, err := cf.unit.Eval()
		if err != nil {
			return nil, err
		}
		spec, err := p.resolveSpec(cf)
		if err != nil {
			return nil, err
		}
		it, err := b.Interpolation(v, cf.field.Expression, cf.field.Conversion, spec)
		if err != nil {
			return nil, err
		}
		interps[i] = it
	}
	return b.New(p.lit.Strings, interps)
}

// resolveSpec evaluates the fields nested in a format spec and returns the
// spec text the interpolation stores.
func (p *Program) resolveSpec(cf *compiledField) (string, error) {
	spec := cf.field.Spec
	if text, ok := spec.Static(); ok {
		return text, nil
	}
	buf := buffer{alloc: p.builder.alloc}
	for i, text := range spec.Strings {
		if err := buf.writeString(text); err != nil {
			return "", err
		}
		if i >= len(cf.nested) {
			continue
		}
		nf := cf.nested[i]
		v, err := nf.unit.Eval()
		if err != nil {
			return "", err
		}
		if v == nil {
			v = GoValue{}
		}
		nestedSpec, err := p.resolveSpec(nf)
		if err != nil {
			return "", err
		}
		s, err := formatValue(v, nf.field.Conversion, nestedSpec)
		if err != nil {
			return "", err
		}
		if err := buf.writeString(s); err != nil {
			return "", err
		}
	}
	return buf.string()
}
