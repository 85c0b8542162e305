package bitmask

import (
	"bytes"
	"database/sql/driver"
	"math/big"

	"github.com/pkg/errors"
)

// NullBitmask is a Bitmask that may be NULL. A valid zero mask is a value
// with every bit clear, not an absent one.
type NullBitmask struct {
	Bitmask
	Valid bool
}

// Present returns a non-NULL NullBitmask holding v
func Present(v Bitmask) NullBitmask {
	return NullBitmask{Bitmask: v, Valid: true}
}

// String returns "NULL" or the decimal value
func (n NullBitmask) String() string {
	if !n.Valid {
		return "NULL"
	}
	return n.Bitmask.String()
}

// MarshalJSON writes NULL as null and anything else as a quoted decimal, so
// masks wider than a float64 survive.
func (n NullBitmask) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(`"` + n.Bitmask.String() + `"`), nil
}

// UnmarshalJSON accepts null, a quoted numeral or a bare non-negative
// integer.
func (n *NullBitmask) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = NullBitmask{}
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	return n.UnmarshalText(data)
}

// MarshalText writes NULL as empty text.
func (n NullBitmask) MarshalText() ([]byte, error) {
	if !n.Valid {
		return []byte{}, nil
	}
	return n.Bitmask.MarshalText()
}

// UnmarshalText reads empty text as NULL and anything else as Parse does.
func (n *NullBitmask) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*n = NullBitmask{}
		return nil
	}
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = Present(v)
	return nil
}

// MarshalBinary writes NULL as an empty slice. Encode never produces one, so
// the two cannot be confused.
func (n NullBitmask) MarshalBinary() ([]byte, error) {
	if !n.Valid {
		return []byte{}, nil
	}
	return Encode(n.bigInt())
}

// UnmarshalBinary reverses MarshalBinary.
func (n *NullBitmask) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		*n = NullBitmask{}
		return nil
	}
	*n = Present(FromBytes(data))
	return nil
}

// Scan implements sql.Scanner. BLOB columns hold the encoded mask; integer
// and text columns are accepted when non-negative. A signed integer column
// written by Field.ToDBInt can hold negative numbers; scan those into an
// int64 and convert with Field.FromDBInt, which knows the width.
func (n *NullBitmask) Scan(src interface{}) error {
	switch x := src.(type) {
	case nil:
		*n = NullBitmask{}
		return nil
	case []byte:
		*n = Present(Bitmask{v: Decode(x)})
		return nil
	case int64:
		v, err := FromInts(x)
		if err != nil {
			return errors.Wrap(err, "scanning bitmask")
		}
		*n = Present(v)
		return nil
	case string:
		v, err := Parse(x)
		if err != nil {
			return errors.Wrap(err, "scanning bitmask")
		}
		*n = Present(v)
		return nil
	}
	return errors.Errorf("scanning bitmask: unsupported column type %T", src)
}

// Value implements driver.Valuer. NULL is stored as nil, everything else as
// the encoded bytes.
func (n NullBitmask) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return Encode(n.bigInt())
}

func (f *Field) signedWidth() (int, error) {
	if f.width < 1 || f.width > 8 {
		return 0, errors.Errorf("%s: integer columns need a width of 1 to 8 bytes, got %d", f.name, f.width)
	}
	return f.width, nil
}

// ToDBInt folds a mask into a signed integer column of the field's width.
// Masks with the top bit set are stored as negative numbers by two's
// complement.
func (f *Field) ToDBInt(v Bitmask) (int64, error) {
	width, err := f.signedWidth()
	if err != nil {
		return 0, err
	}
	if err := ValidateValue(v, f.allowed, f.max); err != nil {
		return 0, err
	}
	n := v.Big()
	if n.BitLen() == width*8 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(width*8)))
	}
	return n.Int64(), nil
}

// FromDBInt reverses ToDBInt. n must lie in the signed range of the field's
// width.
func (f *Field) FromDBInt(n int64) (Bitmask, error) {
	width, err := f.signedWidth()
	if err != nil {
		return Bitmask{}, err
	}
	v := big.NewInt(n)
	min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(width*8-1)))
	if v.Cmp(min) < 0 || v.Cmp(maxValue(width).bigInt()) > 0 {
		return Bitmask{}, errors.Errorf("%s: %d does not fit in %d byte(s)", f.name, n, width)
	}
	if n < 0 {
		v.Add(v, new(big.Int).Lsh(big.NewInt(1), uint(width*8)))
	}
	return Bitmask{v: v}, nil
}
