// Package bitmask stores a set of named flags as one non-negative integer of
// any width.
//
// A Field declares which bits may be set, optionally in labelled groups, and
// an optional storage width. Values are validated by bit coverage: a value is
// accepted when every set bit belongs to some declared choice, so
// combinations never need to be declared on their own.
//
// Stored values are minimal big-endian byte strings (see Encode and Decode).
// NULL and a mask with every bit clear are different values.
package bitmask
