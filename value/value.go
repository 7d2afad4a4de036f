// Package value holds the generic node type of a parsed LVM document.
//
// A Value is a closed tagged union. It is immutable: constructors copy their
// input and accessors never hand out internal slices, so a tree can be shared
// freely once built.
package value

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrWrongKind is returned by the As* accessors when the tag differs.
var ErrWrongKind = errors.New("wrong value kind")

// Kind is the tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindTimestamp
	KindString
	KindMap
	KindSeq
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindTimestamp:
		return "timestamp"
	case KindString:
		return "string"
	case KindMap:
		return "map"
	case KindSeq:
		return "seq"
	default:
		return "unknown"
	}
}

// KindError reports an accessor called on a value of another kind.
type KindError struct {
	Expected Kind
	Found    Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Found)
}

func (e *KindError) Unwrap() error {
	return ErrWrongKind
}

// Value is one node of a document tree. The zero Value is Null.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	floatVal float64
	decVal   decimal.Decimal
	exact    bool // decVal is set (false for NaN and infinities)
	timeVal  time.Time
	strVal   string

	// Container values
	entries []Entry
	items   []Value

	degraded bool
}

// Null returns a null value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(v bool) Value {
	return Value{kind: KindBool, boolVal: v}
}

// Integer returns an integer value.
func Integer(v int64) Value {
	return Value{kind: KindInteger, intVal: v}
}

// Float returns a float value. Finite values also get an exact decimal form.
func Float(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{kind: KindFloat, floatVal: v}
	}
	return Value{kind: KindFloat, floatVal: v, decVal: decimal.NewFromFloat(v), exact: true}
}

// Decimal returns a float value whose exact form is d.
func Decimal(d decimal.Decimal) Value {
	f, _ := d.Float64()
	return Value{kind: KindFloat, floatVal: f, decVal: d, exact: true}
}

// Timestamp returns a timestamp value.
func Timestamp(v time.Time) Value {
	return Value{kind: KindTimestamp, timeVal: v}
}

// String returns a string value.
func String(v string) Value {
	return Value{kind: KindString, strVal: v}
}

// DegradedString returns a string value that was meant to be another kind
// but did not match its grammar.
func DegradedString(v string) Value {
	return Value{kind: KindString, strVal: v, degraded: true}
}

// Kind returns the tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull returns true if this is a null value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Degraded reports whether coercion fell back to a string for this value.
func (v Value) Degraded() bool {
	return v.degraded
}

func (v Value) expect(k Kind) error {
	if v.kind != k {
		return &KindError{Expected: k, Found: v.kind}
	}
	return nil
}

// AsBool returns the boolean value.
func (v Value) AsBool() (bool, error) {
	if err := v.expect(KindBool); err != nil {
		return false, err
	}
	return v.boolVal, nil
}

// AsInteger returns the integer value.
func (v Value) AsInteger() (int64, error) {
	if err := v.expect(KindInteger); err != nil {
		return 0, err
	}
	return v.intVal, nil
}

// AsFloat returns the float value.
func (v Value) AsFloat() (float64, error) {
	if err := v.expect(KindFloat); err != nil {
		return 0, err
	}
	return v.floatVal, nil
}

// AsDecimal returns the exact form of a float value.
// The second result is false for NaN and infinities.
func (v Value) AsDecimal() (decimal.Decimal, bool, error) {
	if err := v.expect(KindFloat); err != nil {
		return decimal.Decimal{}, false, err
	}
	return v.decVal, v.exact, nil
}

// AsTimestamp returns the timestamp value.
func (v Value) AsTimestamp() (time.Time, error) {
	if err := v.expect(KindTimestamp); err != nil {
		return time.Time{}, err
	}
	return v.timeVal, nil
}

// AsString returns the string value.
func (v Value) AsString() (string, error) {
	if err := v.expect(KindString); err != nil {
		return "", err
	}
	return v.strVal, nil
}
