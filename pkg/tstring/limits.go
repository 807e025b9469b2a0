package tstring

import (
	"math"

	"github.com/neurodesk/tstring/pkg/validator"
)

// Hard ceilings on the parts of a single template. Counts are tracked in
// 12-bit fields.
const (
	MaxSegments       = 1<<12 - 1
	MaxInterpolations = 1<<12 - 1
)

// Limits bounds the templates a Builder accepts and the text a render may
// produce.
type Limits struct {
	MaxSegments       int
	MaxInterpolations int
	// MaxRenderSize caps rendered output in bytes. Zero means unlimited.
	MaxRenderSize int
}

// DefaultLimits returns the hard ceilings with no render size cap.
func DefaultLimits() Limits {
	return Limits{
		MaxSegments:       MaxSegments,
		MaxInterpolations: MaxInterpolations,
	}
}

// Validate reports limits that are negative or above the hard ceilings.
func (l Limits) Validate() error {
	return validator.All(
		validator.InRange(l.MaxSegments, 1, MaxSegments, "max segments"),
		validator.InRange(l.MaxInterpolations, 0, MaxInterpolations, "max interpolations"),
		validator.NonNegative(l.MaxRenderSize, "max render size"),
	)
}

// check verifies that a template with the given part counts fits.
func (l Limits) check(segments, interpolations int) error {
	if interpolations > l.MaxInterpolations {
		return capacityError("too many interpolations (%d, limit %d)", interpolations, l.MaxInterpolations)
	}
	if segments > l.MaxSegments {
		return capacityError("too many string segments (%d, limit %d)", segments, l.MaxSegments)
	}
	return nil
}

// addCount returns a+b or an overflow error when the sum does not fit.
func addCount(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, overflowError("part count overflows")
	}
	return a + b, nil
}

// Option configures parsing, building and rendering.
type Option func(*config)

type config struct {
	alloc     Allocator
	limits    Limits
	evaluator Evaluator
}

// newConfig applies opts over the defaults. Limits outside the hard
// ceilings are a value error.
func newConfig(opts []Option) (config, error) {
	c := config{
		alloc:  Unlimited,
		limits: DefaultLimits(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.limits.Validate(); err != nil {
		return config{}, &Error{Kind: KindValue, Message: "invalid limits", Err: err}
	}
	return c, nil
}

// WithAllocator accounts every allocation against a.
func WithAllocator(a Allocator) Option {
	return func(c *config) {
		if a != nil {
			c.alloc = a
		}
	}
}

// WithLimits replaces the default limits. Each count must lie between
// zero (one for segments) and its hard ceiling.
func WithLimits(l Limits) Option {
	return func(c *config) {
		c.limits = l
	}
}

// WithMaxRenderSize caps rendered output at n bytes.
func WithMaxRenderSize(n int) Option {
	return func(c *config) {
		c.limits.MaxRenderSize = n
	}
}

// WithEvaluator sets the evaluator used at render time to resolve fields
// that remain in a format spec.
func WithEvaluator(ev Evaluator) Option {
	return func(c *config) {
		c.evaluator = ev
	}
}
