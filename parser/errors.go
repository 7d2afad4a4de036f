package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors for parsing
var (
	ErrRowArityMismatch         = errors.New("row arity mismatch")
	ErrMissingRequiredHeaderKey = errors.New("missing required header key")
	ErrUnterminatedSection      = errors.New("unterminated section")
	ErrInvalidHeaderValue       = errors.New("invalid header value")
)

// Section names used in UnterminatedSectionError
const (
	SectionFileHeader  = "file header"
	SectionGroupHeader = "group header"
)

// RowArityMismatchError reports a data row whose field count differs from the channel count.
type RowArityMismatchError struct {
	Line     int
	Expected int
	Actual   int
}

func (e *RowArityMismatchError) Error() string {
	return fmt.Sprintf("%s at line %d: expected %d fields, got %d", ErrRowArityMismatch, e.Line, e.Expected, e.Actual)
}

func (e *RowArityMismatchError) Unwrap() error {
	return ErrRowArityMismatch
}

// MissingRequiredHeaderKeyError reports a required key absent from a header.
type MissingRequiredHeaderKeyError struct {
	Key     string
	Section string
	Line    int // line that closed the header
}

func (e *MissingRequiredHeaderKeyError) Error() string {
	return fmt.Sprintf("%s %q in %s ending at line %d", ErrMissingRequiredHeaderKey, e.Key, e.Section, e.Line)
}

func (e *MissingRequiredHeaderKeyError) Unwrap() error {
	return ErrMissingRequiredHeaderKey
}

// UnterminatedSectionError reports EOF reached inside a header.
type UnterminatedSectionError struct {
	Section string
	Line    int // last line read, 0 for empty input
}

func (e *UnterminatedSectionError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s: empty input", ErrUnterminatedSection, e.Section)
	}
	return fmt.Sprintf("%s: %s not closed before end of input (line %d)", ErrUnterminatedSection, e.Section, e.Line)
}

func (e *UnterminatedSectionError) Unwrap() error {
	return ErrUnterminatedSection
}

// InvalidHeaderValueError reports a configuration key with a value that cannot be applied.
type InvalidHeaderValueError struct {
	Key    string
	Value  string
	Line   int
	Reason string
}

func (e *InvalidHeaderValueError) Error() string {
	return fmt.Sprintf("%s for %s at line %d: %q (%s)", ErrInvalidHeaderValue, e.Key, e.Line, e.Value, e.Reason)
}

func (e *InvalidHeaderValueError) Unwrap() error {
	return ErrInvalidHeaderValue
}

// GroupError records a group dropped from the document.
type GroupError struct {
	Index     int // position the group would have had among all groups in the file
	StartLine int
	Err       error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("group %d starting at line %d dropped: %v", e.Index, e.StartLine, e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

// Degradation records a field that was coerced to a string because its hint did not match.
type Degradation struct {
	Line   int
	Column int    // 1-based field index, 0 for header values
	Key    string // header key or channel name
	Raw    string
	Hint   string
}

func (d Degradation) String() string {
	return fmt.Sprintf("line %d column %d (%s): %q is not %s", d.Line, d.Column, d.Key, d.Raw, d.Hint)
}
