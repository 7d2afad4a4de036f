package coerce

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidHint is returned when a column type name cannot be parsed.
var ErrInvalidHint = errors.New("invalid type hint")

// HintKind selects the grammar a raw field is coerced with.
type HintKind int

const (
	AutoHint HintKind = iota
	IntegerHint
	FloatHint
	BooleanHint
	TimestampHint
	TextHint
)

// Hint is a type hint for one field or column.
type Hint struct {
	Kind HintKind

	// Separator forces the decimal separator of a FloatHint; zero uses the active one.
	Separator rune
	// Layout is a time.Parse layout for a TimestampHint; empty uses the built-in date/time grammar.
	Layout string
}

func Auto() Hint    { return Hint{Kind: AutoHint} }
func Integer() Hint { return Hint{Kind: IntegerHint} }
func Boolean() Hint { return Hint{Kind: BooleanHint} }
func Text() Hint    { return Hint{Kind: TextHint} }

// Float hints a float using sep as decimal separator (0 for the active one).
func Float(sep rune) Hint {
	return Hint{Kind: FloatHint, Separator: sep}
}

// Timestamp hints a timestamp parsed with a time.Parse layout (empty for the built-in grammar).
func Timestamp(layout string) Hint {
	return Hint{Kind: TimestampHint, Layout: layout}
}

// String returns the configuration form of the hint, as accepted by ParseHint.
func (h Hint) String() string {
	switch h.Kind {
	case IntegerHint:
		return "integer"
	case FloatHint:
		if h.Separator != 0 {
			return "float(" + string(h.Separator) + ")"
		}
		return "float"
	case BooleanHint:
		return "boolean"
	case TimestampHint:
		if h.Layout != "" {
			return "timestamp(" + h.Layout + ")"
		}
		return "timestamp"
	case TextHint:
		return "text"
	default:
		return "auto"
	}
}

// ParseHint parses "auto", "integer", "float", "float(,)", "boolean", "text",
// "timestamp" or "timestamp(<layout>)".
func ParseHint(s string) (Hint, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), "(")
	if hasArg {
		if !strings.HasSuffix(arg, ")") {
			return Hint{}, fmt.Errorf("%w: missing closing parenthesis in %q", ErrInvalidHint, s)
		}
		arg = strings.TrimSuffix(arg, ")")
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "auto", "":
		if hasArg {
			break
		}
		return Auto(), nil
	case "integer", "int":
		if hasArg {
			break
		}
		return Integer(), nil
	case "boolean", "bool":
		if hasArg {
			break
		}
		return Boolean(), nil
	case "text", "string":
		if hasArg {
			break
		}
		return Text(), nil
	case "float":
		if !hasArg {
			return Float(0), nil
		}
		if arg != "." && arg != "," {
			return Hint{}, fmt.Errorf("%w: float separator must be '.' or ',', got %q", ErrInvalidHint, arg)
		}
		r, _ := utf8.DecodeRuneInString(arg)
		return Float(r), nil
	case "timestamp", "time":
		return Timestamp(arg), nil
	}

	return Hint{}, fmt.Errorf("%w: %q", ErrInvalidHint, s)
}
