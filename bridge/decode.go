package bridge

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shibukawa/snaplvm/value"
)

// Unmarshaler is implemented by types that decode themselves from a node.
type Unmarshaler interface {
	UnmarshalLVM(d Decoder) error
}

// Field decodes a required map key with decode.
//
//	samples, err := bridge.Field(header, "Samples", bridge.Decoder.Int)
func Field[T any](m MapDecoder, key string, decode func(Decoder) (T, error)) (T, error) {
	d, err := m.Required(key)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode(d)
}

// FieldOr decodes an optional map key. A missing or null value yields fallback.
func FieldOr[T any](m MapDecoder, key string, fallback T, decode func(Decoder) (T, error)) (T, error) {
	d, ok := m.Optional(key)
	if !ok || d.IsNull() {
		return fallback, nil
	}
	return decode(d)
}

// Elements decodes every element of a sequence with decode.
func Elements[T any](s SeqDecoder, decode func(Decoder) (T, error)) ([]T, error) {
	result := make([]T, 0, s.Len())
	for _, d := range s.All() {
		v, err := decode(d)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

var (
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
	timeType        = reflect.TypeFor[time.Time]()
	decimalType     = reflect.TypeFor[decimal.Decimal]()
	valueType       = reflect.TypeFor[value.Value]()
)

// Decode stores v in the value pointed to by target.
//
// Types implementing Unmarshaler decode themselves. Otherwise structs are read
// from maps (field name or `lvm:"name"` tag), slices from sequences, string
// keyed maps from maps, and scalars with the Decoder accessors. A null node
// leaves the target at its zero value.
//
// Untagged embedded structs are flattened: their fields are read from the
// same map as the outer struct.
func Decode(v value.Value, target any) error {
	if target == nil {
		return fmt.Errorf("%w: nil target", ErrUnsupportedTarget)
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", ErrUnsupportedTarget, target)
	}

	return decodeInto(NewDecoder(v), rv.Elem())
}

// Into is Decode for a decoder already positioned inside a tree.
func Into(d Decoder, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", ErrUnsupportedTarget, target)
	}

	return decodeInto(d, rv.Elem())
}

func decodeInto(d Decoder, rv reflect.Value) error {
	if rv.CanAddr() && rv.Addr().Type().Implements(unmarshalerType) {
		return rv.Addr().Interface().(Unmarshaler).UnmarshalLVM(d)
	}

	switch rv.Type() {
	case valueType:
		rv.Set(reflect.ValueOf(d.Value()))
		return nil
	case timeType:
		if d.IsNull() {
			rv.SetZero()
			return nil
		}
		t, err := d.Time()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(t))
		return nil
	case decimalType:
		if d.IsNull() {
			rv.SetZero()
			return nil
		}
		dec, err := d.Decimal()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(dec))
		return nil
	}

	if d.IsNull() && rv.Kind() != reflect.Interface {
		rv.SetZero()
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		elem := reflect.New(rv.Type().Elem())
		if err := decodeInto(d, elem.Elem()); err != nil {
			return err
		}
		rv.Set(elem)
		return nil
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return fmt.Errorf("%w: %s at %s", ErrUnsupportedTarget, rv.Type(), d.Path())
		}
		native := Native(d.Value())
		if native == nil {
			rv.SetZero()
		} else {
			rv.Set(reflect.ValueOf(native))
		}
		return nil
	case reflect.Struct:
		return decodeStruct(d, rv)
	case reflect.Slice:
		return decodeSlice(d, rv)
	case reflect.Map:
		return decodeMap(d, rv)
	case reflect.String:
		s, err := d.String()
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil
	case reflect.Bool:
		b, err := d.Bool()
		if err != nil {
			return err
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := d.Int()
		if err != nil {
			return err
		}
		if rv.OverflowInt(i) {
			return d.mismatch(rv.Type().String())
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := d.Int()
		if err != nil {
			return err
		}
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return d.mismatch(rv.Type().String())
		}
		rv.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := d.Float()
		if err != nil {
			return err
		}
		rv.SetFloat(f)
		return nil
	default:
		return fmt.Errorf("%w: %s at %s", ErrUnsupportedTarget, rv.Type(), d.Path())
	}
}

func decodeStruct(d Decoder, rv reflect.Value) error {
	m, err := d.Map()
	if err != nil {
		return err
	}

	t := rv.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if embedded(field) {
			if err := decodeEmbedded(d, rv.Field(i)); err != nil {
				return err
			}
			continue
		}
		if !field.IsExported() {
			continue
		}

		name, required := fieldName(field)
		if name == "-" {
			continue
		}

		child, ok := m.Optional(name)
		if !ok {
			if required {
				return &MissingFieldError{Path: m.path, Key: name}
			}
			continue
		}

		if err := decodeInto(child, rv.Field(i)); err != nil {
			return err
		}
	}

	return nil
}

// embedded reports whether an anonymous field is flattened into its parent.
// A tagged embedded struct is read from its own key instead.
func embedded(field reflect.StructField) bool {
	if !field.Anonymous {
		return false
	}
	if _, tagged := field.Tag.Lookup("lvm"); tagged {
		return false
	}

	t := field.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	switch t {
	case timeType, decimalType, valueType:
		return false
	}
	return !reflect.PointerTo(t).Implements(unmarshalerType)
}

func decodeEmbedded(d Decoder, rv reflect.Value) error {
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			// unexported embedded pointers can not be allocated
			if !rv.CanSet() {
				return nil
			}
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
	return decodeStruct(d, rv)
}

// fieldName reads the `lvm:"name,required"` tag
func fieldName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("lvm")
	if !ok {
		return field.Name, false
	}

	name, options, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, options == "required"
}

func decodeSlice(d Decoder, rv reflect.Value) error {
	s, err := d.Seq()
	if err != nil {
		return err
	}

	slice := reflect.MakeSlice(rv.Type(), s.Len(), s.Len())
	for i, elem := range s.All() {
		if err := decodeInto(elem, slice.Index(i)); err != nil {
			return err
		}
	}

	rv.Set(slice)
	return nil
}

// decodeMap fills a string keyed map. With duplicate keys the last occurrence wins.
func decodeMap(d Decoder, rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("%w: map key %s at %s", ErrUnsupportedTarget, rv.Type().Key(), d.Path())
	}

	m, err := d.Map()
	if err != nil {
		return err
	}

	result := reflect.MakeMapWithSize(rv.Type(), len(m.Keys()))
	for key, child := range m.Entries() {
		elem := reflect.New(rv.Type().Elem()).Elem()
		if err := decodeInto(child, elem); err != nil {
			return err
		}
		result.SetMapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()), elem)
	}

	rv.Set(result)
	return nil
}

// Native converts a node to plain Go values: map[string]any, []any, int64,
// float64, bool, string, time.Time or nil. Duplicate map keys keep the last value.
func Native(v value.Value) any {
	switch v.Kind() {
	case value.KindBool:
		b, _ := v.AsBool()
		return b
	case value.KindInteger:
		i, _ := v.AsInteger()
		return i
	case value.KindFloat:
		f, _ := v.AsFloat()
		return f
	case value.KindTimestamp:
		t, _ := v.AsTimestamp()
		return t
	case value.KindString:
		s, _ := v.AsString()
		return s
	case value.KindMap:
		result := make(map[string]any, v.Len())
		for key, item := range v.Pairs() {
			result[key] = Native(item)
		}
		return result
	case value.KindSeq:
		result := make([]any, 0, v.Len())
		for _, item := range v.Items() {
			result = append(result, Native(item))
		}
		return result
	default:
		return nil
	}
}

// IsTypeMismatch reports whether err is a type or length mismatch.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}
