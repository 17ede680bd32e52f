package util

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// Uint160 is a 20-byte little-endian unsigned integer. It is used to store
// script hashes of contracts and accounts.
type Uint160 [Uint160Size]byte

// Uint160DecodeBytesBE attempts to decode the given big-endian bytes into a
// Uint160.
func Uint160DecodeBytesBE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint160Size, len(b))
	}
	for i, j := 0, len(b)-1; i < len(b); i, j = i+1, j-1 {
		u[i] = b[j]
	}
	return
}

// Uint160DecodeBytesLE attempts to decode the given little-endian bytes into
// a Uint160.
func Uint160DecodeBytesLE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return
}

// Uint160DecodeStringBE attempts to decode the given string (in hex format)
// into a Uint160.
func Uint160DecodeStringBE(s string) (u Uint160, err error) {
	s = trim0x(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint160DecodeBytesBE(b)
}

// BytesBE returns a big-endian byte representation of u.
func (u Uint160) BytesBE() []byte {
	b := make([]byte, Uint160Size)
	for i, j := 0, len(u)-1; i < len(u); i, j = i+1, j-1 {
		b[i] = u[j]
	}
	return b
}

// BytesLE returns a little-endian byte representation of u.
func (u Uint160) BytesLE() []byte {
	b := make([]byte, Uint160Size)
	copy(b, u[:])
	return b
}

// Equals returns true when the given Uint160 equals to u.
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}

// Less returns true when u should be ordered before other, comparing byte
// slices lexicographically (the natural ordering used for StorageKey suffix
// comparisons, which always compares the canonical byte representation).
func (u Uint160) Less(other Uint160) bool {
	return bytes.Compare(u[:], other[:]) < 0
}

// StringBE produces a hex string from u, treating it as big-endian.
func (u Uint160) StringBE() string {
	return hex.EncodeToString(u.BytesBE())
}

// StringLE produces a hex string from u, treating it as little-endian.
func (u Uint160) StringLE() string {
	return hex.EncodeToString(u.BytesLE())
}

// String implements the fmt.Stringer interface.
func (u Uint160) String() string {
	return u.StringBE()
}

// IsZero returns whether u is the zero value.
func (u Uint160) IsZero() bool {
	return u == Uint160{}
}

// ErrInvalidUint160 is returned when parsing a malformed Uint160.
var ErrInvalidUint160 = errors.New("invalid Uint160")
