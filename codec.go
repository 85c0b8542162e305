package bitmask

import (
	"math/big"
)

// Encode returns the minimal big-endian byte representation of v. Zero is
// encoded as a single zero byte, never as an empty slice, so every encoded
// value is at least one byte long.
//
// Encode fails with an *EncodingError when v is nil or negative.
func Encode(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() < 0 {
		return nil, &EncodingError{Value: v}
	}
	if v.Sign() == 0 {
		return []byte{0x00}, nil
	}
	return v.Bytes(), nil
}

// Decode interprets b as a big-endian unsigned integer. Any length is
// accepted: an empty slice decodes to zero and leading zero bytes are
// ignored.
func Decode(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
