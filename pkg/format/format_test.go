package format

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestString(t *testing.T) {
	tests := []struct {
		spec string
		in   string
		want string
	}{
		{"", "abc", "abc"},
		{"<6", "abc", "abc   "},
		{">6", "abc", "   abc"},
		{"^6", "abc", " abc  "},
		{"*^7", "abc", "**abc**"},
		{"6", "abc", "abc   "},
		{".2", "abc", "ab"},
		{"10.2", "abc", "ab        "},
		{"s", "abc", "abc"},
		{"05", "ab", "ab000"},
		{"^5", "héé", " héé "},
		{"2", "abcdef", "abcdef"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := String(tt.in, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringErrors(t *testing.T) {
	for _, spec := range []string{"d", "+", "=5", ",", "#", "z", "5.", ">5x!r"} {
		t.Run(spec, func(t *testing.T) {
			_, err := String("abc", spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSpec)
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		spec string
		in   int64
		want string
	}{
		{"", 42, "42"},
		{"5", 42, "   42"},
		{"<5", 42, "42   "},
		{"^6", 42, "  42  "},
		{"05", 42, "00042"},
		{"05", -42, "-0042"},
		{"+d", 42, "+42"},
		{" d", 42, " 42"},
		{"-d", -42, "-42"},
		{"x", 255, "ff"},
		{"X", 255, "FF"},
		{"#x", 255, "0xff"},
		{"#010x", 255, "0x000000ff"},
		{"b", 5, "101"},
		{"#b", 5, "0b101"},
		{"#o", 8, "0o10"},
		{",", 1234567, "1,234,567"},
		{"_", 1234567, "1_234_567"},
		{"_x", 0xffffffff, "ffff_ffff"},
		{"010,", 1234, "00,001,234"},
		{"c", 65, "A"},
		{"n", 1234567, "1234567"},
		{".2f", 3, "3.00"},
		{"e", 12345, "1.234500e+04"},
		{"*>+8,d", 1234, "**+1,234"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Int64(tt.in, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntLarge(t *testing.T) {
	i := new(big.Int).Lsh(big.NewInt(1), 100)
	got, err := Int(i, "")
	require.NoError(t, err)
	assert.Equal(t, "1267650600228229401496703205376", got)

	got, err = Int(i, ",")
	require.NoError(t, err)
	assert.Equal(t, "1,267,650,600,228,229,401,496,703,205,376", got)
}

func TestIntErrors(t *testing.T) {
	for _, spec := range []string{".2", ",x", "q", "s", "+c", "5..2"} {
		t.Run(spec, func(t *testing.T) {
			_, err := Int64(42, spec)
			assert.ErrorIs(t, err, ErrInvalidSpec)
		})
	}

	_, err := Int64(-1, "c")
	assert.Error(t, err)
}

func TestFloat(t *testing.T) {
	tests := []struct {
		spec string
		in   float64
		want string
	}{
		{"", 3.0, "3.0"},
		{"", 0.1, "0.1"},
		{".2f", 3.14159, "3.14"},
		{">8.3f", 3.14159, "   3.142"},
		{"08.2f", -3.14159, "-0003.14"},
		{"+.1f", 2.5, "+2.5"},
		{".1f", -0.01, "-0.0"},
		{"z.1f", -0.01, "0.0"},
		{"#.0f", 3.0, "3."},
		{"e", 1234.5, "1.234500e+03"},
		{".2E", 1234.5, "1.23E+03"},
		{".3g", 1234.5, "1.23e+03"},
		{"g", 0.0001, "0.0001"},
		{"g", 0.00001, "1e-05"},
		{"g", 100.0, "100"},
		{"#g", 100.0, "100.000"},
		{".2%", 0.1234, "12.34%"},
		{",.2f", 1234567.891, "1,234,567.89"},
		{".3", 3.0, "3.0"},
		{".2", 1234.5, "1.2e+03"},
		{"10", 1.5, "       1.5"},
		{"F", math.Inf(1), "INF"},
		{"f", math.NaN(), "nan"},
		{"+f", math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Float(tt.in, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloatErrors(t *testing.T) {
	for _, spec := range []string{"d", "x", "c", "s", ",n"} {
		t.Run(spec, func(t *testing.T) {
			_, err := Float(1.5, spec)
			assert.ErrorIs(t, err, ErrInvalidSpec)
		})
	}
}

func TestBool(t *testing.T) {
	got, err := Bool(true, "")
	require.NoError(t, err)
	assert.Equal(t, "True", got)

	got, err = Bool(true, "d")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	got, err = Bool(false, ">3")
	require.NoError(t, err)
	assert.Equal(t, "  0", got)

	_, err = Bool(true, "s")
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestLocaleNumbers(t *testing.T) {
	en := Formatter{Tag: language.English}
	got, err := en.Int(big.NewInt(1234567), "n")
	require.NoError(t, err)
	assert.Equal(t, "1,234,567", got)

	got, err = en.Float(1234.5, "n")
	require.NoError(t, err)
	assert.Equal(t, "1,234.5", got)

	de := Formatter{Tag: language.German}
	got, err = de.Float(1234.5, "n")
	require.NoError(t, err)
	assert.Equal(t, "1.234,5", got)
}

func TestParse(t *testing.T) {
	s, err := Parse("*<+z#012,.3f")
	require.NoError(t, err)
	assert.Equal(t, '*', s.Fill)
	assert.Equal(t, byte('<'), s.Align)
	assert.Equal(t, byte('+'), s.Sign)
	assert.True(t, s.NoNegZero)
	assert.True(t, s.Alternate)
	assert.True(t, s.ZeroPad)
	assert.Equal(t, 12, s.Width)
	assert.Equal(t, byte(','), s.Grouping)
	assert.Equal(t, 3, s.Precision)
	assert.Equal(t, byte('f'), s.Type)

	s, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, -1, s.Precision)
	assert.Equal(t, ' ', s.Fill)

	_, err = Parse("99999999999")
	assert.ErrorIs(t, err, ErrInvalidSpec)
}
