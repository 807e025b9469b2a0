package tstring

import (
	"math"
	"strconv"
	"sync"
	"unicode/utf8"
)

// wordSize is the accounting size of one slice element holding a pointer
// or string header.
const wordSize = strconv.IntSize / 8

// Allocator accounts for memory before the engine uses it. Reserve is
// called ahead of every buffer growth and every array the engine builds; a
// non-nil error aborts the operation in progress and nothing partially
// built escapes.
type Allocator interface {
	Reserve(n int) error
}

// AllocatorFunc adapts a function to the Allocator interface.
type AllocatorFunc func(n int) error

func (f AllocatorFunc) Reserve(n int) error {
	return f(n)
}

// Unlimited grants every reservation.
var Unlimited Allocator = AllocatorFunc(func(int) error { return nil })

// Budget is an Allocator with a fixed byte ceiling. Reservations are
// cumulative until Reset is called.
type Budget struct {
	mu    sync.Mutex
	limit int
	used  int
}

// NewBudget returns a Budget that grants up to limit bytes.
func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

func (b *Budget) Reserve(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n < 0 {
		return overflowError("negative allocation size %d", n)
	}
	if n > b.limit-b.used {
		return newError(KindMemory, "memory allocation failed, allocating %d bytes", n)
	}
	b.used += n
	return nil
}

// Used returns the number of bytes reserved so far.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Reset releases every reservation.
func (b *Budget) Reset() {
	b.mu.Lock()
	b.used = 0
	b.mu.Unlock()
}

// reserveWords reserves an array of n pointer-sized elements.
func reserveWords(a Allocator, n int) error {
	if n > math.MaxInt/wordSize {
		return overflowError("array of %d elements is too large", n)
	}
	return a.Reserve(n * wordSize)
}

// buffer is a byte buffer whose growth is accounted for by an Allocator.
type buffer struct {
	alloc Allocator
	limit int // 0 for no limit
	buf   []byte
}

func (b *buffer) grow(n int) error {
	if n > math.MaxInt-len(b.buf) {
		return overflowError("buffer size overflows")
	}
	need := len(b.buf) + n
	if b.limit > 0 && need > b.limit {
		return capacityError("template string too large")
	}
	if need <= cap(b.buf) {
		return nil
	}
	newCap := 2 * cap(b.buf)
	if newCap < 16 {
		newCap = 16
	}
	if newCap < need {
		newCap = need
	}
	if b.limit > 0 && newCap > b.limit {
		newCap = b.limit
	}
	if err := b.alloc.Reserve(newCap); err != nil {
		return err
	}
	nb := make([]byte, len(b.buf), newCap)
	copy(nb, b.buf)
	b.buf = nb
	return nil
}

func (b *buffer) writeString(s string) error {
	if err := b.grow(len(s)); err != nil {
		return err
	}
	b.buf = append(b.buf, s...)
	return nil
}

func (b *buffer) writeByte(c byte) error {
	if err := b.grow(1); err != nil {
		return err
	}
	b.buf = append(b.buf, c)
	return nil
}

func (b *buffer) writeRune(r rune) error {
	if err := b.grow(utf8.RuneLen(r)); err != nil {
		return err
	}
	b.buf = utf8.AppendRune(b.buf, r)
	return nil
}

func (b *buffer) len() int {
	return len(b.buf)
}

func (b *buffer) reset() {
	b.buf = b.buf[:0]
}

// string returns the buffered text as a new string, reserving its storage.
func (b *buffer) string() (string, error) {
	if len(b.buf) == 0 {
		return "", nil
	}
	if err := b.alloc.Reserve(len(b.buf)); err != nil {
		return "", err
	}
	return string(b.buf), nil
}

// concat joins two strings, reserving the storage of the result.
func concat(a Allocator, x, y string) (string, error) {
	if x == "" {
		return y, nil
	}
	if y == "" {
		return x, nil
	}
	if len(x) > math.MaxInt-len(y) {
		return "", overflowError("string concatenation overflows")
	}
	if err := a.Reserve(len(x) + len(y)); err != nil {
		return "", err
	}
	return x + y, nil
}
