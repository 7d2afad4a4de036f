package value

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// FormatFloat writes a float value back as text using sep as decimal separator.
// Trailing zeros of the fraction are dropped.
func FormatFloat(v Value, sep rune) (string, error) {
	if err := v.expect(KindFloat); err != nil {
		return "", err
	}

	switch {
	case math.IsNaN(v.floatVal):
		return "NaN", nil
	case math.IsInf(v.floatVal, 1):
		return "Inf", nil
	case math.IsInf(v.floatVal, -1):
		return "-Inf", nil
	}

	text := strconv.FormatFloat(v.floatVal, 'f', -1, 64)
	if v.exact {
		text = v.decVal.String()
	}
	if sep != '.' {
		text = strings.Replace(text, ".", string(sep), 1)
	}
	return text, nil
}

// Equal reports whether two trees are structurally equal. NaN equals NaN.
func Equal(a, b Value) bool {
	if a.kind != b.kind || a.degraded != b.degraded {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInteger:
		return a.intVal == b.intVal
	case KindFloat:
		if math.IsNaN(a.floatVal) || math.IsNaN(b.floatVal) {
			return math.IsNaN(a.floatVal) && math.IsNaN(b.floatVal)
		}
		if a.exact != b.exact {
			return false
		}
		if a.exact {
			return a.decVal.Equal(b.decVal)
		}
		return a.floatVal == b.floatVal
	case KindTimestamp:
		return a.timeVal.Equal(b.timeVal)
	case KindString:
		return a.strVal == b.strVal
	case KindMap:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for i := range a.entries {
			if a.entries[i].Key != b.entries[i].Key || !Equal(a.entries[i].Value, b.entries[i].Value) {
				return false
			}
		}
		return true
	case KindSeq:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns a short text form for debugging.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.boolVal)
	case KindInteger:
		return strconv.FormatInt(v.intVal, 10)
	case KindFloat:
		text, _ := FormatFloat(v, '.')
		return text
	case KindTimestamp:
		return v.timeVal.Format(time.RFC3339Nano)
	case KindString:
		return strconv.Quote(v.strVal)
	case KindMap:
		var b strings.Builder
		b.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.Key)
			b.WriteString(": ")
			b.WriteString(e.Value.String())
		}
		b.WriteByte('}')
		return b.String()
	case KindSeq:
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
		b.WriteByte(']')
		return b.String()
	}
	return "unknown"
}

// MarshalYAML lets go-yaml walk a tree. Maps keep their order and duplicates.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindBool:
		return v.boolVal, nil
	case KindInteger:
		return v.intVal, nil
	case KindFloat:
		if math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0) {
			text, _ := FormatFloat(v, '.')
			return text, nil
		}
		return v.floatVal, nil
	case KindTimestamp:
		return v.timeVal.Format(time.RFC3339Nano), nil
	case KindString:
		return v.strVal, nil
	case KindMap:
		result := make(yaml.MapSlice, 0, len(v.entries))
		for _, e := range v.entries {
			result = append(result, yaml.MapItem{Key: e.Key, Value: e.Value})
		}
		return result, nil
	case KindSeq:
		result := make([]any, 0, len(v.items))
		for _, item := range v.items {
			result = append(result, item)
		}
		return result, nil
	}
	return nil, nil
}
