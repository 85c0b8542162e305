package bitmask

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

// Kind classifies a ValidationError.
type Kind string

const (
	// KindDisabledBits means the value sets a bit no choice allows.
	KindDisabledBits Kind = "disabled_bits"
	// KindOutOfRange means the value does not fit the configured width.
	KindOutOfRange Kind = "out_of_range"
	// KindRequired means an empty value was given to a required field.
	KindRequired Kind = "required"
)

var (
	// ErrDisabledBits matches any ValidationError of KindDisabledBits.
	ErrDisabledBits = errors.New("value contains disabled bit(s)")
	// ErrOutOfRange matches any ValidationError of KindOutOfRange.
	ErrOutOfRange = errors.New("value out of range")
	// ErrRequired matches any ValidationError of KindRequired.
	ErrRequired = errors.New("value required")

	errNotInteger = errors.New("not an integer")
	errNegative   = errors.New("negative value")
)

// Configuration check IDs.
const (
	CheckChoicesRequired = "bitmask.E001"
	CheckChoicesInvalid  = "bitmask.E002"
	CheckMaxBytes        = "bitmask.E003"
	CheckChoiceWidth     = "bitmask.E004"
)

// ConfigurationError is reported when a field is declared incorrectly. It
// is never returned for a value.
type ConfigurationError struct {
	ID    string
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.ID, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.ID, e.Msg)
}

// ValidationError is returned when a value is rejected by a field.
type ValidationError struct {
	Kind Kind
	// Value is the rejected value.
	Value Bitmask
	// Disabled holds the bits of Value no choice covers. Set for
	// KindDisabledBits only.
	Disabled Bitmask
	// Max is the largest value the field stores. Set for KindOutOfRange only.
	Max Bitmask
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindDisabledBits:
		return fmt.Sprintf("value %s contains disabled bit(s) %s", e.Value, e.Disabled)
	case KindOutOfRange:
		return fmt.Sprintf("value %s is greater than %s", e.Value, e.Max)
	case KindRequired:
		return "this field is required"
	}
	return fmt.Sprintf("invalid value %s", e.Value)
}

// Is lets errors.Is match a ValidationError against the Err* sentinels.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrDisabledBits:
		return e.Kind == KindDisabledBits
	case ErrOutOfRange:
		return e.Kind == KindOutOfRange
	case ErrRequired:
		return e.Kind == KindRequired
	}
	return false
}

// CoercionError is returned when an input cannot be turned into a mask.
type CoercionError struct {
	Input string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot convert %q to a bitmask: %v", e.Input, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// EncodingError is returned by Encode for a nil or negative integer.
type EncodingError struct {
	Value *big.Int
}

func (e *EncodingError) Error() string {
	if e.Value == nil {
		return "cannot encode nil integer"
	}
	return fmt.Sprintf("cannot encode negative integer %s", e.Value)
}
