package bitmask

import (
	"fmt"
	"math/big"
	"strings"
)

// Parse reads a textual numeral. Decimal is the default; 0x, 0o and 0b
// prefixes select another base.
func Parse(s string) (Bitmask, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return Bitmask{}, &CoercionError{Input: s, Err: errNotInteger}
	}
	if v.Sign() < 0 {
		return Bitmask{}, &CoercionError{Input: s, Err: errNegative}
	}
	return Bitmask{v: v}, nil
}

// ToValue converts a raw value from a caller or a form into a mask. nil
// and "" are empty markers and yield an invalid (NULL) result; a list of
// selected bits yields their OR, so an empty list is a valid zero.
func ToValue(raw interface{}) (NullBitmask, error) {
	switch x := raw.(type) {
	case nil:
		return NullBitmask{}, nil
	case string:
		if x == "" {
			return NullBitmask{}, nil
		}
	case NullBitmask:
		return x, nil
	case *big.Int:
		if x == nil {
			return NullBitmask{}, nil
		}
	case []string:
		v, err := FromStrings(x)
		return NullBitmask{Bitmask: v, Valid: err == nil}, err
	case []interface{}:
		v, err := FromBitList(x)
		return NullBitmask{Bitmask: v, Valid: err == nil}, err
	case []Bitmask:
		v := Bitmask{}
		for _, b := range x {
			v = v.Or(b)
		}
		return NullBitmask{Bitmask: v, Valid: true}, nil
	}
	v, err := coerce(raw)
	if err != nil {
		return NullBitmask{}, err
	}
	return NullBitmask{Bitmask: v, Valid: true}, nil
}

func coerce(x interface{}) (Bitmask, error) {
	switch x := x.(type) {
	case Bitmask:
		return x, nil
	case *big.Int:
		return FromBig(x)
	case string:
		return Parse(x)
	case int:
		return FromInts(x)
	case int8:
		return FromInts(x)
	case int16:
		return FromInts(x)
	case int32:
		return FromInts(x)
	case int64:
		return FromInts(x)
	case uint:
		return FromInts(x)
	case uint8:
		return FromInts(x)
	case uint16:
		return FromInts(x)
	case uint32:
		return FromInts(x)
	case uint64:
		return FromInts(x)
	}
	return Bitmask{}, &CoercionError{Input: fmt.Sprintf("%v", x), Err: errNotInteger}
}

// FromBitList ORs together every selected element after converting it to
// an integer. Duplicate and overlapping bits are absorbed.
func FromBitList(selected []interface{}) (Bitmask, error) {
	acc := Bitmask{}
	for _, s := range selected {
		v, err := coerce(s)
		if err != nil {
			return Bitmask{}, err
		}
		acc = acc.Or(v)
	}
	return acc, nil
}

// FromStrings is FromBitList for submitted form values.
func FromStrings(selected []string) (Bitmask, error) {
	acc := Bitmask{}
	for _, s := range selected {
		v, err := Parse(s)
		if err != nil {
			return Bitmask{}, err
		}
		acc = acc.Or(v)
	}
	return acc, nil
}

// PrepareValue turns a stored value into the list of selected bits a
// multi-select widget renders. A list is returned unchanged and an empty
// value yields nil.
func (f *Field) PrepareValue(value interface{}) ([]Bitmask, error) {
	if list, ok := value.([]Bitmask); ok {
		return list, nil
	}
	v, err := ToValue(value)
	if err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, nil
	}
	return v.Bits(), nil
}

// Coerce interprets a multi-select submission. Nothing selected is the
// empty marker.
func (f *Field) Coerce(submitted []string) (NullBitmask, error) {
	if len(submitted) == 0 {
		return NullBitmask{}, nil
	}
	v, err := FromStrings(submitted)
	if err != nil {
		return NullBitmask{}, err
	}
	return NullBitmask{Bitmask: v, Valid: true}, nil
}

// HasChanged compares the OR of the submitted bits with initial, so the
// order or decomposition of the submission does not matter. A NULL initial
// compares as zero. A submission that cannot be converted has changed.
func (f *Field) HasChanged(initial NullBitmask, submitted []string) bool {
	v, err := FromStrings(submitted)
	if err != nil {
		f.log.Debugf("%s: unreadable submission %q: %v", f.name, submitted, err)
		return true
	}
	base := Bitmask{}
	if initial.Valid {
		base = initial.Bitmask
	}
	return !v.Equal(base)
}
