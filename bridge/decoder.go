// Package bridge lets caller types pull their data out of a parsed value tree.
//
// A Decoder wraps one node. Callers ask for the shape they expect (a map, a
// sequence or a scalar of a given kind) and get a TypeMismatchError when the
// stored node is something else. Integers widen to floats; floats never
// narrow to integers.
package bridge

import (
	"iter"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shibukawa/snaplvm/value"
)

// RootPath is the path of the node a decoding starts from.
const RootPath = "$"

// Decoder reads one node of a value tree.
type Decoder struct {
	v    value.Value
	path string
}

// NewDecoder creates a decoder over v.
func NewDecoder(v value.Value) Decoder {
	return Decoder{v: v, path: RootPath}
}

// Value returns the wrapped node.
func (d Decoder) Value() value.Value {
	return d.v
}

// Path returns the location of the node, e.g. $.groups[0].header.
func (d Decoder) Path() string {
	return d.path
}

func (d Decoder) IsNull() bool {
	return d.v.IsNull()
}

func (d Decoder) mismatch(expected string) error {
	return &TypeMismatchError{Path: d.path, Expected: expected, Found: d.v.Kind()}
}

// Map expects a map node.
func (d Decoder) Map() (MapDecoder, error) {
	if d.v.Kind() != value.KindMap {
		return MapDecoder{}, d.mismatch(value.KindMap.String())
	}
	return MapDecoder{v: d.v, path: d.path}, nil
}

// Seq expects a sequence node.
func (d Decoder) Seq() (SeqDecoder, error) {
	if d.v.Kind() != value.KindSeq {
		return SeqDecoder{}, d.mismatch(value.KindSeq.String())
	}
	return SeqDecoder{v: d.v, path: d.path}, nil
}

// Scalar expects a node of exactly the given kind.
func (d Decoder) Scalar(kind value.Kind) (value.Value, error) {
	if kind == value.KindMap || kind == value.KindSeq || d.v.Kind() != kind {
		return value.Value{}, d.mismatch(kind.String())
	}
	return d.v, nil
}

func (d Decoder) Int() (int64, error) {
	v, err := d.Scalar(value.KindInteger)
	if err != nil {
		return 0, err
	}
	return v.AsInteger()
}

// Float accepts float and integer nodes.
func (d Decoder) Float() (float64, error) {
	if d.v.Kind() == value.KindInteger {
		i, err := d.v.AsInteger()
		return float64(i), err
	}

	v, err := d.Scalar(value.KindFloat)
	if err != nil {
		return 0, err
	}
	return v.AsFloat()
}

// Decimal returns the exact form of a float or integer node.
// NaN and infinities have no decimal form.
func (d Decoder) Decimal() (decimal.Decimal, error) {
	if d.v.Kind() == value.KindInteger {
		i, err := d.v.AsInteger()
		return decimal.NewFromInt(i), err
	}

	v, err := d.Scalar(value.KindFloat)
	if err != nil {
		return decimal.Decimal{}, err
	}

	dec, exact, err := v.AsDecimal()
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !exact {
		return decimal.Decimal{}, d.mismatch("decimal")
	}
	return dec, nil
}

func (d Decoder) Bool() (bool, error) {
	v, err := d.Scalar(value.KindBool)
	if err != nil {
		return false, err
	}
	return v.AsBool()
}

func (d Decoder) Time() (time.Time, error) {
	v, err := d.Scalar(value.KindTimestamp)
	if err != nil {
		return time.Time{}, err
	}
	return v.AsTimestamp()
}

func (d Decoder) String() (string, error) {
	v, err := d.Scalar(value.KindString)
	if err != nil {
		return "", err
	}
	return v.AsString()
}

// MapDecoder reads a map node.
type MapDecoder struct {
	v    value.Value
	path string
}

func (m MapDecoder) child(key string, v value.Value) Decoder {
	return Decoder{v: v, path: m.path + "." + key}
}

// Required returns the value of key, or a MissingFieldError.
// With duplicate keys the last occurrence wins.
func (m MapDecoder) Required(key string) (Decoder, error) {
	v, ok := m.v.Get(key)
	if !ok {
		return Decoder{}, &MissingFieldError{Path: m.path, Key: key}
	}
	return m.child(key, v), nil
}

// Optional returns the value of key if it exists.
func (m MapDecoder) Optional(key string) (Decoder, bool) {
	v, ok := m.v.Get(key)
	if !ok {
		return Decoder{}, false
	}
	return m.child(key, v), true
}

// All returns every occurrence of key in order.
func (m MapDecoder) All(key string) []Decoder {
	values := m.v.GetAll(key)
	result := make([]Decoder, 0, len(values))
	for _, v := range values {
		result = append(result, m.child(key, v))
	}
	return result
}

// Keys returns the distinct keys in order of first appearance.
func (m MapDecoder) Keys() []string {
	return m.v.Keys()
}

// Entries iterates the map in order, duplicates included.
func (m MapDecoder) Entries() iter.Seq2[string, Decoder] {
	return func(yield func(string, Decoder) bool) {
		for key, v := range m.v.Pairs() {
			if !yield(key, m.child(key, v)) {
				return
			}
		}
	}
}

// SeqDecoder reads a sequence node.
type SeqDecoder struct {
	v    value.Value
	path string
}

func (s SeqDecoder) child(i int, v value.Value) Decoder {
	return Decoder{v: v, path: s.path + "[" + strconv.Itoa(i) + "]"}
}

func (s SeqDecoder) Len() int {
	return s.v.Len()
}

// At returns element i.
func (s SeqDecoder) At(i int) (Decoder, error) {
	v, ok := s.v.Index(i)
	if !ok {
		return Decoder{}, &LengthMismatchError{Path: s.path, Expected: i + 1, Actual: s.v.Len(), AtLeast: true}
	}
	return s.child(i, v), nil
}

// All iterates the elements in order.
func (s SeqDecoder) All() iter.Seq2[int, Decoder] {
	return func(yield func(int, Decoder) bool) {
		for i, v := range s.v.Items() {
			if !yield(i, s.child(i, v)) {
				return
			}
		}
	}
}

// Exactly checks the sequence length.
func (s SeqDecoder) Exactly(n int) error {
	if s.v.Len() != n {
		return &LengthMismatchError{Path: s.path, Expected: n, Actual: s.v.Len()}
	}
	return nil
}
