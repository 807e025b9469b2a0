package tstring

import (
	"strings"

	"github.com/neurodesk/tstring/pkg/format"
)

// Render produces the text of t: each segment followed by its
// interpolation formatted with the interpolation's conversion and format
// spec. Nested Templates render in place.
func (t *Template) Render(opts ...Option) (string, error) {
	c, err := newConfig(opts)
	if err != nil {
		return "", err
	}
	r := &renderer{
		cfg: c,
		out: buffer{alloc: c.alloc, limit: c.limits.MaxRenderSize},
	}
	if err := r.template(t); err != nil {
		return "", err
	}
	return r.out.string()
}

type renderer struct {
	cfg config
	out buffer
}

func (r *renderer) template(t *Template) error {
	for i, s := range t.segments() {
		if err := r.out.writeString(s); err != nil {
			return err
		}
		if i < len(t.interps) {
			if err := r.interpolation(t.interps[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) interpolation(it *Interpolation) error {
	if strings.HasSuffix(it.expression, "=") {
		if err := r.out.writeString(it.expression); err != nil {
			return err
		}
	}
	spec, err := r.resolveSpec(it.formatSpec)
	if err != nil {
		return err
	}
	if nested, ok := it.value.(*Template); ok {
		switch {
		case it.conversion == ConversionNone && spec == "":
			return r.template(nested)
		case it.conversion == ConversionNone || it.conversion == ConversionStr:
			text, err := r.nested(nested)
			if err != nil {
				return err
			}
			s, err := format.String(text, spec)
			if err != nil {
				return err
			}
			return r.out.writeString(s)
		}
	}
	s, err := formatValue(it.value, it.conversion, spec)
	if err != nil {
		return err
	}
	return r.out.writeString(s)
}

// nested renders t on its own under the configuration of r.
func (r *renderer) nested(t *Template) (string, error) {
	sub := &renderer{
		cfg: r.cfg,
		out: buffer{alloc: r.cfg.alloc, limit: r.cfg.limits.MaxRenderSize},
	}
	if err := sub.template(t); err != nil {
		return "", err
	}
	return sub.out.string()
}

func errSpecBraces() error {
	return newError(KindValue, "invalid format spec - cannot contain braces")
}

// resolveSpec prepares a stored format spec for formatting. Doubled braces
// collapse to single ones. A remaining replacement field is evaluated with
// the configured evaluator; without one it is an error, as is any brace
// left in the result.
func (r *renderer) resolveSpec(spec string) (string, error) {
	if !strings.ContainsAny(spec, "{}") {
		return spec, nil
	}
	sc := scanner{src: spec, alloc: r.cfg.alloc, raw: true}
	out := buffer{alloc: r.cfg.alloc}
	for !sc.eof() {
		c := spec[sc.pos]
		switch {
		case (c == '{' || c == '}') && sc.peek(1) == c:
			if err := out.writeByte(c); err != nil {
				return "", err
			}
			sc.pos += 2
		case c == '{' && r.cfg.evaluator != nil:
			s, err := r.specField(&sc)
			if err != nil {
				return "", err
			}
			if err := out.writeString(s); err != nil {
				return "", err
			}
		case c == '{' || c == '}':
			return "", errSpecBraces()
		default:
			if err := out.writeByte(c); err != nil {
				return "", err
			}
			sc.pos++
		}
	}
	res, err := out.string()
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(res, "{}") {
		return "", errSpecBraces()
	}
	return res, nil
}

// specField evaluates the replacement field at the cursor of sc.
func (r *renderer) specField(sc *scanner) (string, error) {
	f, debugText, err := sc.parseField(maxNesting - 1)
	if err != nil {
		return "", err
	}
	v, err := r.cfg.evaluator.Eval(trimExpr(f.Expression))
	if err != nil {
		return "", err
	}
	if v == nil {
		v = GoValue{}
	}
	spec, _ := f.Spec.Static()
	s, err := formatValue(v, f.Conversion, spec)
	if err != nil {
		return "", err
	}
	return debugText + s, nil
}
