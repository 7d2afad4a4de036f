package tokenizer

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrMalformedEscape = errors.New("malformed escape sequence")
)

// LineKind represents the classification of a logical line
type LineKind int

const (
	BLANK  LineKind = iota // empty, or delimiters and whitespace only
	MARKER                 // ***Name***
	DATA                   // anything else
)

// String returns the string representation of LineKind
func (k LineKind) String() string {
	switch k {
	case BLANK:
		return "BLANK"
	case MARKER:
		return "MARKER"
	case DATA:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// Well known section markers
const (
	StartOfHeader = "Start_of_Header"
	EndOfHeader   = "End_of_Header"
)

// Position represents a position in the source
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Line represents one logical line of an LVM file
type Line struct {
	Kind   LineKind
	Text   string // line content without terminator
	Number int    // 1-based line number

	// Marker holds the section name for MARKER lines ("End_of_Header" for "***End_of_Header***")
	Marker string
}

// IsMarker reports whether the line is the named section marker
func (l Line) IsMarker(name string) bool {
	return l.Kind == MARKER && l.Marker == name
}

// String returns the string representation of Line
func (l Line) String() string {
	if l.Kind == MARKER {
		return fmt.Sprintf("%d %s(%s)", l.Number, l.Kind, l.Marker)
	}
	return fmt.Sprintf("%d %s: %q", l.Number, l.Kind, l.Text)
}

// MalformedEscapeError reports an unterminated quoted field or a dangling escape character.
type MalformedEscapeError struct {
	Pos    Position
	Reason string
}

func (e *MalformedEscapeError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d: %s", ErrMalformedEscape, e.Pos.Line, e.Pos.Column, e.Reason)
}

func (e *MalformedEscapeError) Unwrap() error {
	return ErrMalformedEscape
}
