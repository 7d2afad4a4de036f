// Package coerce converts raw LVM fields into typed values.
package coerce

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shibukawa/snaplvm/value"
)

// Built-in timestamp layouts, tried after '-' and 'T' are normalized.
const (
	dateTimeLayout = "2006/01/02 15:04:05"
	dateLayout     = "2006/01/02"
	clockLayout    = "15:04:05"
)

// Coercer turns raw fields into values.
//
// It tracks the decimal separator of the document. While a ',' separator is
// declared but no float has used it yet, both ',' and '.' are accepted; the
// first float written with ',' locks the coercer to ','.
type Coercer struct {
	declared rune
	locked   bool

	// extra time.Parse layouts tried by Auto after the built-in grammar
	layouts []string
}

// New creates a Coercer with the declared decimal separator ('.' when zero).
func New(decimalSeparator rune) *Coercer {
	if decimalSeparator == 0 {
		decimalSeparator = '.'
	}
	return &Coercer{declared: decimalSeparator}
}

// Child returns a fresh Coercer for a group that declares its own separator.
// The parent state is not affected by the child.
func (c *Coercer) Child(decimalSeparator rune) *Coercer {
	child := New(decimalSeparator)
	child.layouts = c.layouts
	return child
}

// WithLayouts adds time.Parse layouts that Auto tries for timestamps.
func (c *Coercer) WithLayouts(layouts ...string) *Coercer {
	c.layouts = slices.Clone(layouts)
	return c
}

// Declare changes the declared decimal separator and unlocks the coercer.
func (c *Coercer) Declare(decimalSeparator rune) {
	if decimalSeparator == 0 {
		decimalSeparator = '.'
	}
	c.declared = decimalSeparator
	c.locked = false
}

// DecimalSeparator returns the declared decimal separator.
func (c *Coercer) DecimalSeparator() rune {
	return c.declared
}

// Locked reports whether a float has fixed the separator for the rest of the document.
func (c *Coercer) Locked() bool {
	return c.locked
}

// Coerce converts raw with the hint. The second result is true when the hint
// did not match and the value fell back to a string.
//
// An empty field is Null for every hint except Text.
func (c *Coercer) Coerce(raw string, hint Hint) (value.Value, bool) {
	if raw == "" && hint.Kind != TextHint {
		return value.Null(), false
	}

	var (
		v  value.Value
		ok bool
	)

	switch hint.Kind {
	case TextHint:
		return value.String(raw), false
	case IntegerHint:
		v, ok = c.integer(raw)
	case FloatHint:
		v, ok = c.float(raw, hint.Separator)
	case BooleanHint:
		v, ok = boolean(raw)
	case TimestampHint:
		v, ok = timestamp(raw, hint.Layout)
	default:
		return c.auto(raw), false
	}

	if !ok {
		return value.DegradedString(raw), true
	}
	return v, false
}

func (c *Coercer) auto(raw string) value.Value {
	if v, ok := c.integer(raw); ok {
		return v
	}
	if v, ok := c.float(raw, 0); ok {
		return v
	}
	if v, ok := timestamp(raw, ""); ok {
		return v
	}
	for _, layout := range c.layouts {
		if v, ok := timestamp(raw, layout); ok {
			return v
		}
	}
	return value.String(raw)
}

func (c *Coercer) integer(raw string) (value.Value, bool) {
	if !matches(integerGrammar, raw) {
		return value.Value{}, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// out of int64 range
		return value.Value{}, false
	}
	return value.Integer(n), true
}

func (c *Coercer) float(raw string, forced rune) (value.Value, bool) {
	sep := forced
	grammar := floatDot

	switch {
	case forced == ',':
		grammar = floatComma
	case forced == '.':
	case c.declared == ',' && c.locked:
		sep = ','
		grammar = floatComma
	case c.declared == ',':
		grammar = floatEither
	}

	if !matches(grammar, raw) {
		return value.Value{}, false
	}

	if v, ok := special(raw); ok {
		return v, true
	}

	usesComma := strings.ContainsRune(raw, ',')
	normalized := raw
	if usesComma {
		normalized = strings.Replace(raw, ",", ".", 1)
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return value.Value{}, false
	}

	if usesComma && forced == 0 && sep == 0 {
		c.locked = true
	}

	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return value.Value{}, false
	}
	if math.IsInf(f, 0) {
		return value.Float(f), true
	}
	return value.Decimal(d), true
}

func special(raw string) (value.Value, bool) {
	switch strings.ToLower(raw) {
	case "nan":
		return value.Float(math.NaN()), true
	case "inf", "+inf":
		return value.Float(math.Inf(1)), true
	case "-inf":
		return value.Float(math.Inf(-1)), true
	}
	return value.Value{}, false
}

func boolean(raw string) (value.Value, bool) {
	switch {
	case matches(booleanTrue, raw):
		return value.Bool(true), true
	case matches(booleanFalse, raw):
		return value.Bool(false), true
	}
	return value.Value{}, false
}

func timestamp(raw, layout string) (value.Value, bool) {
	if layout != "" {
		t, err := time.Parse(layout, raw)
		if err != nil {
			return value.Value{}, false
		}
		return value.Timestamp(t), true
	}

	if !matches(timestampGrammar, raw) {
		return value.Value{}, false
	}

	var datePart, rest, normalized string
	if strings.Contains(raw, ":") && !strings.ContainsAny(raw, "/-") {
		rest = raw
	} else {
		datePart, rest, _ = strings.Cut(raw, " ")
		if rest == "" {
			datePart, rest, _ = strings.Cut(raw, "T")
		}
		datePart = strings.ReplaceAll(datePart, "-", "/")
	}

	var chosen string
	switch {
	case datePart == "":
		chosen = clockLayout
		if len(rest) > 1 && rest[1] == ':' {
			rest = "0" + rest
		}
		normalized = rest
	case rest == "":
		chosen = dateLayout
		normalized = datePart
	default:
		chosen = dateTimeLayout
		if len(rest) > 1 && rest[1] == ':' {
			rest = "0" + rest
		}
		normalized = datePart + " " + rest
	}

	t, err := time.Parse(chosen, normalized)
	if err != nil {
		return value.Value{}, false
	}
	return value.Timestamp(t), true
}
