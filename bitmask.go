package bitmask

/*
fmt.Println(bitmask.New(0x6).IsSet(bitmask.New(0x2)))
fmt.Println(bitmask.New(0x5).ListDescriptions(field.Choices()))
fmt.Println(bitmask.New(0x5).Bits())
*/

import (
	"math/big"

	"golang.org/x/exp/constraints"
)

// Bitmask represents a non-negative bitmask of any width. The zero value is
// a mask with no bits set. Bitmask values are immutable; every operation
// returns a new value.
type Bitmask struct {
	v *big.Int
}

var zero = new(big.Int)

// New returns a Bitmask holding v
func New(v uint64) Bitmask {
	return Bitmask{v: new(big.Int).SetUint64(v)}
}

// FromBig returns a Bitmask holding a copy of v. It fails when v is nil or
// negative.
func FromBig(v *big.Int) (Bitmask, error) {
	if v == nil {
		return Bitmask{}, &CoercionError{Input: "<nil>", Err: errNotInteger}
	}
	if v.Sign() < 0 {
		return Bitmask{}, &CoercionError{Input: v.String(), Err: errNegative}
	}
	return Bitmask{v: new(big.Int).Set(v)}, nil
}

// FromBytes decodes a big-endian byte string, as Decode does.
func FromBytes(b []byte) Bitmask {
	return Bitmask{v: Decode(b)}
}

// FromInts ORs together the given integers. Negative values are rejected.
func FromInts[T constraints.Integer](values ...T) (Bitmask, error) {
	acc := new(big.Int)
	for _, value := range values {
		if value < 0 {
			return Bitmask{}, &CoercionError{Input: big.NewInt(int64(value)).String(), Err: errNegative}
		}
		acc.Or(acc, new(big.Int).SetUint64(uint64(value)))
	}
	return Bitmask{v: acc}, nil
}

func (value Bitmask) bigInt() *big.Int {
	if value.v == nil {
		return zero
	}
	return value.v
}

// Big returns a copy of the underlying integer
func (value Bitmask) Big() *big.Int {
	return new(big.Int).Set(value.bigInt())
}

// Uint64 returns the mask as a uint64 and whether it fits.
func (value Bitmask) Uint64() (uint64, bool) {
	v := value.bigInt()
	return v.Uint64(), v.IsUint64()
}

// IsZero returns true if no bits are set
func (value Bitmask) IsZero() bool {
	return value.bigInt().Sign() == 0
}

// BitLen returns the position of the highest set bit plus one.
func (value Bitmask) BitLen() int {
	return value.bigInt().BitLen()
}

// Or returns value | other
func (value Bitmask) Or(other Bitmask) Bitmask {
	return Bitmask{v: new(big.Int).Or(value.bigInt(), other.bigInt())}
}

// And returns value & other
func (value Bitmask) And(other Bitmask) Bitmask {
	return Bitmask{v: new(big.Int).And(value.bigInt(), other.bigInt())}
}

// AndNot returns value &^ other
func (value Bitmask) AndNot(other Bitmask) Bitmask {
	return Bitmask{v: new(big.Int).AndNot(value.bigInt(), other.bigInt())}
}

// Cmp compares two masks numerically, as big.Int.Cmp does.
func (value Bitmask) Cmp(other Bitmask) int {
	return value.bigInt().Cmp(other.bigInt())
}

// Equal returns true if both masks hold the same integer
func (value Bitmask) Equal(other Bitmask) bool {
	return value.Cmp(other) == 0
}

// IsSet returns true if any bit of test is set
func (value Bitmask) IsSet(test Bitmask) bool {
	return value.And(test).bigInt().Sign() != 0
}

// Bits decomposes the mask into one power of two per set bit, least
// significant first. A zero mask yields an empty list.
func (value Bitmask) Bits() []Bitmask {
	v := value.bigInt()
	list := make([]Bitmask, 0)
	for place := 0; place < v.BitLen(); place++ {
		if v.Bit(place) == 1 {
			list = append(list, Bitmask{v: new(big.Int).Lsh(big.NewInt(1), uint(place))})
		}
	}
	return list
}

// ListDescriptions returns the label of every choice whose bits are set in
// the mask. Bits already claimed by an earlier choice are not reported
// again.
func (value Bitmask) ListDescriptions(choices []Choice) []string {
	list := make([]string, 0)
	value.walk(choices, func(c Choice) {
		list = append(list, c.Label)
	})
	return list
}

// ListValues returns the value of every choice whose bits are set in the
// mask, with the same claiming rule as ListDescriptions.
func (value Bitmask) ListValues(choices []Choice) []Bitmask {
	list := make([]Bitmask, 0)
	value.walk(choices, func(c Choice) {
		list = append(list, Bitmask{v: new(big.Int).Set(c.Value)})
	})
	return list
}

func (value Bitmask) walk(choices []Choice, fn func(Choice)) {
	current := new(big.Int).Set(value.bigInt())
	overlap := new(big.Int)
	for _, c := range choices {
		if c.Value == nil || c.Value.Sign() <= 0 {
			continue
		}
		if overlap.And(current, c.Value).Sign() != 0 {
			current.AndNot(current, c.Value)
			fn(c)
		}
	}
}

// String returns the decimal representation of the mask
func (value Bitmask) String() string {
	return value.bigInt().String()
}

// MarshalBinary encodes the mask with Encode.
func (value Bitmask) MarshalBinary() ([]byte, error) {
	return Encode(value.bigInt())
}

// UnmarshalBinary decodes the mask with Decode.
func (value *Bitmask) UnmarshalBinary(data []byte) error {
	value.v = Decode(data)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (value Bitmask) MarshalText() ([]byte, error) {
	return []byte(value.String()), nil
}

// UnmarshalText accepts anything Parse does.
func (value *Bitmask) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*value = parsed
	return nil
}
