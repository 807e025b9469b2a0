package tstring

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget(t *testing.T) {
	b := NewBudget(100)
	require.NoError(t, b.Reserve(60))

	err := b.Reserve(50)
	assert.ErrorIs(t, err, ErrNoMemory)
	assert.Equal(t, 60, b.Used())

	b.Reset()
	require.NoError(t, b.Reserve(100))
	assert.ErrorIs(t, b.Reserve(1), ErrNoMemory)
	assert.ErrorIs(t, b.Reserve(-1), ErrOverflow)
}

func TestBudgetLimitsExecute(t *testing.T) {
	src := `t"Hello {name}, you are {age} years old"`
	ev := scope{"name": "World", "age": 42}

	_, err := Execute(src, ev, WithAllocator(NewBudget(16)))
	assert.ErrorIs(t, err, ErrNoMemory)

	tmpl, err := Execute(src, ev, WithAllocator(NewBudget(1<<16)))
	require.NoError(t, err)
	assert.Equal(t, "Hello World, you are 42 years old", mustRender(t, tmpl))
}

// TestAllocationFailureInjection fails each reservation of an operation in
// turn and checks that the operation reports ErrNoMemory and returns
// nothing.
func TestAllocationFailureInjection(t *testing.T) {
	src := `t"Hello {name!r:>{w}} and {1}{2} {{x}} " t"more {name=}"`
	ev := scope{"name": "World", "w": 10}

	x, err := Execute(src, ev)
	require.NoError(t, err)
	y, err := Execute(`t"tail {w}"`, ev)
	require.NoError(t, err)
	a := MustInterpolation(ValueOf(1), "a", ConversionNone, "")
	inner, err := Execute(`t"<{name}>"`, ev)
	require.NoError(t, err)
	converted, err := Execute(`t"[{inner!s}]"`, scope{"inner": inner})
	require.NoError(t, err)
	padded, err := Execute(`t"[{inner:>10}]"`, scope{"inner": inner})
	require.NoError(t, err)

	ops := map[string]func(Allocator) (any, error){
		"parse": func(al Allocator) (any, error) {
			lit, err := Parse(src, WithAllocator(al))
			if err != nil {
				return nil, err
			}
			return lit, nil
		},
		"execute": func(al Allocator) (any, error) {
			tmpl, err := Execute(src, ev, WithAllocator(al))
			if err != nil {
				return nil, err
			}
			return tmpl, nil
		},
		"render": func(al Allocator) (any, error) {
			s, err := x.Render(WithAllocator(al))
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		"nested conversion": func(al Allocator) (any, error) {
			s, err := converted.Render(WithAllocator(al))
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		"nested spec": func(al Allocator) (any, error) {
			s, err := padded.Render(WithAllocator(al))
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		"concat": func(al Allocator) (any, error) {
			tmpl, err := NewBuilder(WithAllocator(al)).Concat(x, y)
			if err != nil {
				return nil, err
			}
			return tmpl, nil
		},
		"args": func(al Allocator) (any, error) {
			tmpl, err := NewBuilder(WithAllocator(al)).NewFromArgs("a", "b", a, "c", a)
			if err != nil {
				return nil, err
			}
			return tmpl, nil
		},
		"tuples": func(al Allocator) (any, error) {
			tmpl, err := NewBuilder(WithAllocator(al)).NewFromTuples(
				[]string{"", "-", ""}, [][]any{{1, "one"}, {2, "two", nil, ">3"}})
			if err != nil {
				return nil, err
			}
			return tmpl, nil
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			counter, calls := failAfter(math.MaxInt)
			_, err := op(counter)
			require.NoError(t, err)
			total := *calls
			require.Positive(t, total)

			for k := 1; k <= total; k++ {
				al, _ := failAfter(k)
				res, err := op(al)
				require.ErrorIs(t, err, ErrNoMemory, "reservation %d of %d", k, total)
				assert.Nil(t, res, "reservation %d of %d", k, total)
			}
		})
	}
}

func TestNestedRenderAccounted(t *testing.T) {
	inner, err := NewFromArgs(strings.Repeat("x", 4000))
	require.NoError(t, err)
	ev := scope{"inner": inner}

	inPlace := NewBudget(1 << 20)
	_, err = mustExecute(t, `t"{inner}"`, ev).Render(WithAllocator(inPlace))
	require.NoError(t, err)

	for _, src := range []string{`t"{inner!s}"`, `t"{inner:>4000}"`} {
		budget := NewBudget(1 << 20)
		got, err := mustExecute(t, src, ev).Render(WithAllocator(budget))
		require.NoError(t, err)
		assert.Len(t, got, 4000)
		assert.Greater(t, budget.Used(), inPlace.Used(), src)

		_, err = mustExecute(t, src, ev).Render(WithAllocator(NewBudget(inPlace.Used() + 100)))
		assert.ErrorIs(t, err, ErrNoMemory, src)

		_, err = mustExecute(t, src, ev).Render(WithMaxRenderSize(100))
		assert.ErrorIs(t, err, ErrCapacity, src)
	}
}
