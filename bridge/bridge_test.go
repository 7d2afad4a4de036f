package bridge

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/shibukawa/snaplvm/value"
)

func sampleGroup() value.Value {
	return value.Map(
		value.Pair("header", value.Map(
			value.Pair("Channels", value.Integer(2)),
			value.Pair("Notes", value.String("first")),
			value.Pair("Notes", value.String("second")),
		)),
		value.Pair("channels", value.Seq(
			value.Map(
				value.Pair("name", value.String("Voltage")),
				value.Pair("properties", value.Map(value.Pair("Unit", value.String("V")))),
				value.Pair("values", value.Seq(value.Float(1.5), value.Integer(2), value.Null())),
			),
			value.Map(
				value.Pair("name", value.String("Time")),
				value.Pair("properties", value.Map()),
				value.Pair("values", value.Seq(value.Float(0), value.Float(0.1), value.Float(0.2))),
			),
		)),
	)
}

func TestScalarAccessors(t *testing.T) {
	ts := time.Date(2013, 1, 31, 13, 46, 34, 0, time.UTC)

	i, err := NewDecoder(value.Integer(42)).Int()
	assert.NoError(t, err)
	assert.Equal(t, int64(42), i)

	f, err := NewDecoder(value.Float(1.5)).Float()
	assert.NoError(t, err)
	assert.Equal(t, 1.5, f)

	f, err = NewDecoder(value.Integer(3)).Float()
	assert.NoError(t, err)
	assert.Equal(t, 3.0, f)

	d, err := NewDecoder(value.Decimal(decimal.RequireFromString("101.325"))).Decimal()
	assert.NoError(t, err)
	assert.Equal(t, "101.325", d.String())

	b, err := NewDecoder(value.Bool(true)).Bool()
	assert.NoError(t, err)
	assert.True(t, b)

	tm, err := NewDecoder(value.Timestamp(ts)).Time()
	assert.NoError(t, err)
	assert.True(t, ts.Equal(tm))

	s, err := NewDecoder(value.String("lab")).String()
	assert.NoError(t, err)
	assert.Equal(t, "lab", s)

	assert.True(t, NewDecoder(value.Null()).IsNull())
}

func TestNoNarrowing(t *testing.T) {
	_, err := NewDecoder(value.Float(2)).Int()
	assert.IsError(t, err, ErrTypeMismatch)

	var mismatch *TypeMismatchError
	assert.True(t, errors.As(err, &mismatch))
	assert.Equal(t, TypeMismatchError{Path: "$", Expected: "integer", Found: value.KindFloat}, *mismatch)
}

func TestScalarKindMismatch(t *testing.T) {
	tests := []struct {
		name     string
		input    value.Value
		decode   func(Decoder) error
		expected string
	}{
		{"string as bool", value.String("Yes"), func(d Decoder) error { _, err := d.Bool(); return err }, "bool"},
		{"null as string", value.Null(), func(d Decoder) error { _, err := d.String(); return err }, "string"},
		{"integer as timestamp", value.Integer(1), func(d Decoder) error { _, err := d.Time(); return err }, "timestamp"},
		{"map as seq", value.Map(), func(d Decoder) error { _, err := d.Seq(); return err }, "seq"},
		{"seq as map", value.Seq(), func(d Decoder) error { _, err := d.Map(); return err }, "map"},
		{"scalar map kind", value.Map(), func(d Decoder) error { _, err := d.Scalar(value.KindMap); return err }, "map"},
		{"nan as decimal", value.Float(math.NaN()), func(d Decoder) error { _, err := d.Decimal(); return err }, "decimal"},
		{"degraded string as float", value.DegradedString("1,5"), func(d Decoder) error { _, err := d.Float(); return err }, "float"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode(NewDecoder(tt.input))
			assert.IsError(t, err, ErrTypeMismatch)

			var mismatch *TypeMismatchError
			assert.True(t, errors.As(err, &mismatch))
			assert.Equal(t, tt.expected, mismatch.Expected)
			assert.Equal(t, tt.input.Kind(), mismatch.Found)
		})
	}
}

func TestScalarIsIdempotent(t *testing.T) {
	d := NewDecoder(value.Float(1.6))

	first, err := d.Scalar(value.KindFloat)
	assert.NoError(t, err)
	second, err := d.Scalar(value.KindFloat)
	assert.NoError(t, err)

	assert.True(t, value.Equal(first, second))
	assert.True(t, value.Equal(value.Float(1.6), second))
}

func TestMapDecoder(t *testing.T) {
	group, err := NewDecoder(sampleGroup()).Map()
	assert.NoError(t, err)
	assert.Equal(t, []string{"header", "channels"}, group.Keys())

	header, err := group.Required("header")
	assert.NoError(t, err)
	assert.Equal(t, "$.header", header.Path())

	hm, err := header.Map()
	assert.NoError(t, err)

	notes, err := hm.Required("Notes")
	assert.NoError(t, err)
	last, err := notes.String()
	assert.NoError(t, err)
	assert.Equal(t, "second", last)

	all := hm.All("Notes")
	assert.Equal(t, 2, len(all))
	first, err := all[0].String()
	assert.NoError(t, err)
	assert.Equal(t, "first", first)

	_, ok := hm.Optional("Operator")
	assert.False(t, ok)

	_, err = hm.Required("Operator")
	assert.IsError(t, err, ErrMissingField)

	var missing *MissingFieldError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, MissingFieldError{Path: "$.header", Key: "Operator"}, *missing)

	var keys []string
	for key := range hm.Entries() {
		keys = append(keys, key)
	}
	assert.Equal(t, []string{"Channels", "Notes", "Notes"}, keys)
}

func TestSeqDecoder(t *testing.T) {
	group, err := NewDecoder(sampleGroup()).Map()
	assert.NoError(t, err)

	channels, err := Field(group, "channels", Decoder.Seq)
	assert.NoError(t, err)
	assert.Equal(t, 2, channels.Len())
	assert.NoError(t, channels.Exactly(2))

	second, err := channels.At(1)
	assert.NoError(t, err)
	assert.Equal(t, "$.channels[1]", second.Path())

	_, err = channels.At(2)
	assert.IsError(t, err, ErrTypeMismatch)

	var length *LengthMismatchError
	assert.True(t, errors.As(err, &length))
	assert.Equal(t, LengthMismatchError{Path: "$.channels", Expected: 3, Actual: 2, AtLeast: true}, *length)

	err = channels.Exactly(3)
	assert.True(t, IsTypeMismatch(err))
	assert.True(t, errors.As(err, &length))
	assert.False(t, length.AtLeast)
}

func TestGenericHelpers(t *testing.T) {
	group, err := NewDecoder(sampleGroup()).Map()
	assert.NoError(t, err)

	header, err := Field(group, "header", Decoder.Map)
	assert.NoError(t, err)

	count, err := Field(header, "Channels", Decoder.Int)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)

	operator, err := FieldOr(header, "Operator", "nobody", Decoder.String)
	assert.NoError(t, err)
	assert.Equal(t, "nobody", operator)

	_, err = Field(header, "Operator", Decoder.String)
	assert.IsError(t, err, ErrMissingField)

	channels, err := Field(group, "channels", Decoder.Seq)
	assert.NoError(t, err)

	names, err := Elements(channels, func(d Decoder) (string, error) {
		m, err := d.Map()
		if err != nil {
			return "", err
		}
		return Field(m, "name", Decoder.String)
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Voltage", "Time"}, names)

	_, err = Elements(channels, Decoder.String)
	var mismatch *TypeMismatchError
	assert.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "$.channels[0]", mismatch.Path)
}

type channel struct {
	Name       string            `lvm:"name,required"`
	Properties map[string]string `lvm:"properties"`
	Values     []*float64        `lvm:"values"`
}

type group struct {
	Header struct {
		Channels int
		Notes    string
	} `lvm:"header"`
	Channels []channel `lvm:"channels"`
	Ignored  string    `lvm:"-"`
}

func TestDecodeStruct(t *testing.T) {
	var g group
	assert.NoError(t, Decode(sampleGroup(), &g))

	assert.Equal(t, 2, g.Header.Channels)
	assert.Equal(t, "second", g.Header.Notes)
	assert.Equal(t, 2, len(g.Channels))
	assert.Equal(t, "Voltage", g.Channels[0].Name)
	assert.Equal(t, map[string]string{"Unit": "V"}, g.Channels[0].Properties)

	values := g.Channels[0].Values
	assert.Equal(t, 3, len(values))
	assert.Equal(t, 1.5, *values[0])
	assert.Equal(t, 2.0, *values[1])
	assert.Zero(t, values[2])
}

func TestDecodeRequiredField(t *testing.T) {
	input := value.Seq(value.Map(value.Pair("properties", value.Map())))

	var channels []channel
	err := Decode(input, &channels)
	assert.IsError(t, err, ErrMissingField)

	var missing *MissingFieldError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, "$[0]", missing.Path)
	assert.Equal(t, "name", missing.Key)
}

type channelName struct {
	Name string `lvm:"name,required"`
}

type ChannelProperties struct {
	Properties map[string]string `lvm:"properties"`
}

type GroupHeader struct {
	Count int `lvm:"Channels"`
}

type flatChannel struct {
	channelName
	*ChannelProperties
	Values []*float64 `lvm:"values"`
}

type flatGroup struct {
	GroupHeader `lvm:"header"`

	Channels []flatChannel `lvm:"channels"`
}

func TestDecodeEmbeddedStruct(t *testing.T) {
	var g flatGroup
	assert.NoError(t, Decode(sampleGroup(), &g))

	assert.Equal(t, 2, g.Count)
	assert.Equal(t, 2, len(g.Channels))

	voltage := g.Channels[0]
	assert.Equal(t, "Voltage", voltage.Name)
	assert.NotZero(t, voltage.ChannelProperties)
	assert.Equal(t, map[string]string{"Unit": "V"}, voltage.Properties)
	assert.Equal(t, 3, len(voltage.Values))

	assert.Equal(t, "Time", g.Channels[1].Name)
	assert.Equal(t, 0, len(g.Channels[1].Properties))

	var channels []flatChannel
	err := Decode(value.Seq(value.Map(value.Pair("properties", value.Map()))), &channels)
	assert.IsError(t, err, ErrMissingField)

	var missing *MissingFieldError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, "name", missing.Key)
}

type unitCount struct {
	units []string
}

func (u *unitCount) UnmarshalLVM(d Decoder) error {
	m, err := d.Map()
	if err != nil {
		return err
	}
	for _, unit := range m.All("Unit") {
		s, err := unit.String()
		if err != nil {
			return err
		}
		u.units = append(u.units, s)
	}
	return nil
}

func TestDecodeUnmarshaler(t *testing.T) {
	input := value.Map(
		value.Pair("Unit", value.String("V")),
		value.Pair("Unit", value.String("mV")),
	)

	var direct unitCount
	assert.NoError(t, Decode(input, &direct))
	assert.Equal(t, []string{"V", "mV"}, direct.units)

	var nested struct {
		Props *unitCount `lvm:"props"`
	}
	assert.NoError(t, Decode(value.Map(value.Pair("props", input)), &nested))
	assert.Equal(t, []string{"V", "mV"}, nested.Props.units)
}

func TestDecodeSpecialTargets(t *testing.T) {
	ts := time.Date(2021, 6, 1, 8, 0, 0, 500000000, time.UTC)
	input := value.Map(
		value.Pair("start", value.Timestamp(ts)),
		value.Pair("pressure", value.Decimal(decimal.RequireFromString("101.325"))),
		value.Pair("raw", value.Seq(value.Integer(1))),
		value.Pair("any", value.Seq(value.Integer(1), value.String("x"), value.Null())),
	)

	var target struct {
		Start    time.Time       `lvm:"start"`
		Pressure decimal.Decimal `lvm:"pressure"`
		Raw      value.Value     `lvm:"raw"`
		Any      any             `lvm:"any"`
	}
	assert.NoError(t, Decode(input, &target))

	assert.True(t, ts.Equal(target.Start))
	assert.Equal(t, "101.325", target.Pressure.String())
	assert.True(t, value.Equal(value.Seq(value.Integer(1)), target.Raw))
	assert.Equal(t, any([]any{int64(1), "x", nil}), target.Any)
}

func TestDecodeErrors(t *testing.T) {
	var n int8
	err := Decode(value.Integer(300), &n)
	assert.IsError(t, err, ErrTypeMismatch)

	var u uint
	err = Decode(value.Integer(-1), &u)
	assert.IsError(t, err, ErrTypeMismatch)

	err = Decode(value.Integer(1), n)
	assert.IsError(t, err, ErrUnsupportedTarget)

	err = Decode(value.Integer(1), nil)
	assert.IsError(t, err, ErrUnsupportedTarget)

	var ch chan int
	err = Decode(value.Integer(1), &ch)
	assert.IsError(t, err, ErrUnsupportedTarget)

	var m map[int]string
	err = Decode(value.Map(), &m)
	assert.IsError(t, err, ErrUnsupportedTarget)
}

func TestNative(t *testing.T) {
	input := value.Map(
		value.Pair("a", value.Integer(1)),
		value.Pair("b", value.Seq(value.Bool(true), value.Float(0.5))),
		value.Pair("a", value.String("x")),
	)

	assert.Equal(t, any(map[string]any{
		"a": "x",
		"b": []any{true, 0.5},
	}), Native(input))
}
