package snaplvm

import (
	"errors"

	"github.com/shibukawa/snaplvm/bridge"
	"github.com/shibukawa/snaplvm/parser"
	"github.com/shibukawa/snaplvm/tokenizer"
)

// Common errors used throughout the snaplvm package.
// Each of them is also the Unwrap result of a structured error type below.
var (
	// ErrMalformedEscape is returned for an unterminated quoted field or a dangling escape character.
	// Lexer errors
	ErrMalformedEscape = tokenizer.ErrMalformedEscape

	// ErrRowArityMismatch is recorded when a data row and the channel name row disagree on the field count.
	// Parser errors
	ErrRowArityMismatch = parser.ErrRowArityMismatch
	// ErrMissingRequiredHeaderKey indicates a required key was absent from a file or group header.
	ErrMissingRequiredHeaderKey = parser.ErrMissingRequiredHeaderKey
	// ErrUnterminatedSection indicates the input ended inside a header.
	ErrUnterminatedSection = parser.ErrUnterminatedSection
	// ErrInvalidHeaderValue indicates a configuration key carried a value that cannot be applied.
	ErrInvalidHeaderValue = parser.ErrInvalidHeaderValue

	// ErrTypeMismatch indicates a node of another kind than the requested one.
	// Deserialization errors
	ErrTypeMismatch = bridge.ErrTypeMismatch
	// ErrMissingField indicates a required map key was absent.
	ErrMissingField = bridge.ErrMissingField
	// ErrUnsupportedTarget indicates a Go type Unmarshal cannot fill.
	ErrUnsupportedTarget = bridge.ErrUnsupportedTarget

	// ErrConfigValidation is returned when options validation fails.
	// Configuration errors
	ErrConfigValidation = errors.New("configuration validation failed")
)

// Structured error types, usable with errors.As.
type (
	MalformedEscapeError          = tokenizer.MalformedEscapeError
	RowArityMismatchError         = parser.RowArityMismatchError
	MissingRequiredHeaderKeyError = parser.MissingRequiredHeaderKeyError
	UnterminatedSectionError      = parser.UnterminatedSectionError
	InvalidHeaderValueError       = parser.InvalidHeaderValueError
	GroupError                    = parser.GroupError
	TypeMismatchError             = bridge.TypeMismatchError
	MissingFieldError             = bridge.MissingFieldError
	LengthMismatchError           = bridge.LengthMismatchError
)
