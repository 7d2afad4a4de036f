package bridge

import (
	"errors"
	"fmt"

	"github.com/shibukawa/snaplvm/value"
)

// Sentinel errors for decoding
var (
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrMissingField      = errors.New("missing field")
	ErrUnsupportedTarget = errors.New("unsupported decode target")
)

// TypeMismatchError reports a node whose kind differs from the requested one.
type TypeMismatchError struct {
	Path     string
	Expected string
	Found    value.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s at %s: expected %s, found %s", ErrTypeMismatch, e.Path, e.Expected, e.Found)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// MissingFieldError reports a required map key that is absent.
type MissingFieldError struct {
	Path string
	Key  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s %q at %s", ErrMissingField, e.Key, e.Path)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// LengthMismatchError reports a sequence with an unexpected length.
// It is a kind of type mismatch.
type LengthMismatchError struct {
	Path     string
	Expected int
	Actual   int
	AtLeast  bool // Expected is a lower bound (positional access)
}

func (e *LengthMismatchError) Error() string {
	bound := ""
	if e.AtLeast {
		bound = "at least "
	}
	return fmt.Sprintf("%s at %s: expected %s%d elements, found %d", ErrTypeMismatch, e.Path, bound, e.Expected, e.Actual)
}

func (e *LengthMismatchError) Unwrap() error {
	return ErrTypeMismatch
}
