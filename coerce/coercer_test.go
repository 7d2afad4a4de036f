package coerce

import (
	"math"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/shibukawa/snaplvm/value"
)

func TestAutoCoercion(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected value.Value
	}{
		{"empty is null", "", value.Null()},
		{"integer", "42", value.Integer(42)},
		{"signed integer", "-7", value.Integer(-7)},
		{"float", "0.125", value.Float(0.125)},
		{"float with exponent", "1.5E+3", value.Float(1500)},
		{"leading dot", ".5", value.Float(0.5)},
		{"nan", "NaN", value.Float(math.NaN())},
		{"negative inf", "-Inf", value.Float(math.Inf(-1))},
		{"date", "2013/01/31", value.Timestamp(time.Date(2013, 1, 31, 0, 0, 0, 0, time.UTC))},
		{"iso date", "2013-01-31", value.Timestamp(time.Date(2013, 1, 31, 0, 0, 0, 0, time.UTC))},
		{"date and time", "2013/01/31 13:46:34.5", value.Timestamp(time.Date(2013, 1, 31, 13, 46, 34, 500000000, time.UTC))},
		{"iso date time", "2013-01-31T13:46:34", value.Timestamp(time.Date(2013, 1, 31, 13, 46, 34, 0, time.UTC))},
		{"time of day", "13:46:34.887722015380859375", value.Timestamp(time.Date(0, 1, 1, 13, 46, 34, 887722015, time.UTC))},
		{"invalid date stays text", "2013/13/45", value.String("2013/13/45")},
		{"comma float under dot separator", "1,5", value.String("1,5")},
		{"text keeps whitespace", "  Pressure  sensor ", value.String("  Pressure  sensor ")},
		{"yes is text under auto", "Yes", value.String("Yes")},
		{"integer overflow becomes float", "99999999999999999999", value.Decimal(decimal.RequireFromString("99999999999999999999"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New('.')
			got, fellBack := c.Coerce(tt.raw, Auto())
			assert.False(t, fellBack)
			assert.True(t, value.Equal(tt.expected, got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestHintedCoercion(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		hint     Hint
		expected value.Value
		fellBack bool
	}{
		{"boolean yes", "Yes", Boolean(), value.Bool(true), false},
		{"boolean no lowercase", "no", Boolean(), value.Bool(false), false},
		{"boolean true", "TRUE", Boolean(), value.Bool(true), false},
		{"boolean zero", "0", Boolean(), value.Bool(false), false},
		{"boolean garbage", "maybe", Boolean(), value.DegradedString("maybe"), true},
		{"integer", "12", Integer(), value.Integer(12), false},
		{"integer does not take floats", "1.5", Integer(), value.DegradedString("1.5"), true},
		{"float accepts integers", "3", Float(0), value.Float(3), false},
		{"forced comma", "2,25", Float(','), value.Float(2.25), false},
		{"forced comma rejects dot", "2.25", Float(','), value.DegradedString("2.25"), true},
		{"text keeps numbers", "007", Text(), value.String("007"), false},
		{"text keeps empty", "", Text(), value.String(""), false},
		{"empty integer is null", "", Integer(), value.Null(), false},
		{"timestamp grammar", "2020/02/29", Timestamp(""), value.Timestamp(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)), false},
		{"timestamp layout", "31.01.2013", Timestamp("02.01.2006"), value.Timestamp(time.Date(2013, 1, 31, 0, 0, 0, 0, time.UTC)), false},
		{"timestamp layout mismatch", "2013/01/31", Timestamp("02.01.2006"), value.DegradedString("2013/01/31"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fellBack := New('.').Coerce(tt.raw, tt.hint)
			assert.Equal(t, tt.fellBack, fellBack)
			assert.Equal(t, tt.fellBack, got.Degraded())
			assert.True(t, value.Equal(tt.expected, got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestDecimalSeparatorLocking(t *testing.T) {
	c := New(',')
	assert.False(t, c.Locked())

	// dot is still accepted before a comma float is seen
	v, _ := c.Coerce("0.5", Auto())
	assert.Equal(t, value.KindFloat, v.Kind())
	assert.False(t, c.Locked())

	v, _ = c.Coerce("1,5", Auto())
	assert.True(t, value.Equal(value.Float(1.5), v))
	assert.True(t, c.Locked())

	// after locking only comma floats are recognized
	v, _ = c.Coerce("0.5", Auto())
	assert.Equal(t, value.KindString, v.Kind())

	v, _ = c.Coerce("2,75", Auto())
	assert.True(t, value.Equal(value.Float(2.75), v))

	// integers are never affected
	v, _ = c.Coerce("3", Auto())
	assert.True(t, value.Equal(value.Integer(3), v))
}

func TestDeclareUnlocks(t *testing.T) {
	c := New(',')
	c.Coerce("1,5", Auto())
	assert.True(t, c.Locked())

	c.Declare('.')
	assert.False(t, c.Locked())
	assert.Equal(t, '.', c.DecimalSeparator())

	v, _ := c.Coerce("1,5", Auto())
	assert.Equal(t, value.KindString, v.Kind())
}

func TestChildDoesNotTouchParent(t *testing.T) {
	parent := New('.')
	child := parent.Child(',')

	v, _ := child.Coerce("1,25", Auto())
	assert.True(t, value.Equal(value.Float(1.25), v))
	assert.True(t, child.Locked())

	assert.False(t, parent.Locked())
	assert.Equal(t, '.', parent.DecimalSeparator())
}

func TestDefaultSeparator(t *testing.T) {
	assert.Equal(t, '.', New(0).DecimalSeparator())
}

func TestFloatRoundTrip(t *testing.T) {
	tests := []struct {
		raw      string
		sep      rune
		expected string
	}{
		{"1,5", ',', "1,5"},
		{"1,50", ',', "1,5"},
		{"-0,125", ',', "-0,125"},
		{"12.3400", '.', "12.34"},
		{"0.1", '.', "0.1"},
		{"3.0", '.', "3"},
		{"Inf", '.', "Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, fellBack := New(tt.sep).Coerce(tt.raw, Float(tt.sep))
			assert.False(t, fellBack)

			text, err := value.FormatFloat(got, tt.sep)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}
}

func TestFloatSpecialValues(t *testing.T) {
	tests := []struct {
		raw      string
		expected float64
	}{
		{"NaN", math.NaN()},
		{"nan", math.NaN()},
		{"Inf", math.Inf(1)},
		{"+inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}

	for _, sep := range []rune{'.', ','} {
		for _, tt := range tests {
			t.Run(string(sep)+tt.raw, func(t *testing.T) {
				got, fellBack := New(sep).Coerce(tt.raw, Float(sep))
				assert.False(t, fellBack)
				assert.True(t, value.Equal(value.Float(tt.expected), got), "expected %v, got %s", tt.expected, got)
			})
		}
	}

	_, fellBack := New('.').Coerce("infinity", Float('.'))
	assert.True(t, fellBack)
}

func TestParseHint(t *testing.T) {
	tests := []struct {
		input    string
		expected Hint
	}{
		{"auto", Auto()},
		{"", Auto()},
		{"integer", Integer()},
		{"Float", Float(0)},
		{"float(,)", Float(',')},
		{"boolean", Boolean()},
		{"text", Text()},
		{"timestamp", Timestamp("")},
		{"timestamp(2006-01-02 15:04)", Timestamp("2006-01-02 15:04")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHint(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseHintErrors(t *testing.T) {
	for _, input := range []string{"decimal", "float(;)", "integer(8)", "timestamp(2006"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseHint(input)
			assert.IsError(t, err, ErrInvalidHint)
		})
	}
}

func TestHintString(t *testing.T) {
	for _, h := range []Hint{Auto(), Integer(), Float(0), Float(','), Boolean(), Text(), Timestamp(""), Timestamp("02.01.2006")} {
		parsed, err := ParseHint(h.String())
		assert.NoError(t, err)
		assert.Equal(t, h, parsed)
	}
}

func TestExtraLayouts(t *testing.T) {
	c := New('.').WithLayouts("02.01.2006 15:04")

	v, fellBack := c.Coerce("31.01.2013 13:46", Auto())
	assert.False(t, fellBack)
	assert.True(t, value.Equal(value.Timestamp(time.Date(2013, 1, 31, 13, 46, 0, 0, time.UTC)), v))

	// children keep the layouts
	v, _ = c.Child(',').Coerce("01.02.2013 00:00", Auto())
	assert.Equal(t, value.KindTimestamp, v.Kind())
}
