package util

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = 32

// Uint256 is a 32-byte little-endian unsigned integer, used for transaction
// and block hashes.
type Uint256 [Uint256Size]byte

// Uint256DecodeBytesBE attempts to decode the given big-endian bytes into a
// Uint256.
func Uint256DecodeBytesBE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	for i, j := 0, len(b)-1; i < len(b); i, j = i+1, j-1 {
		u[i] = b[j]
	}
	return
}

// Uint256DecodeBytesLE attempts to decode the given little-endian bytes into
// a Uint256.
func Uint256DecodeBytesLE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	copy(u[:], b)
	return
}

// Uint256DecodeStringBE attempts to decode the given string (in hex format)
// into a Uint256.
func Uint256DecodeStringBE(s string) (u Uint256, err error) {
	s = trim0x(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint256DecodeBytesBE(b)
}

// BytesBE returns a big-endian byte representation of u.
func (u Uint256) BytesBE() []byte {
	b := make([]byte, Uint256Size)
	for i, j := 0, len(u)-1; i < len(u); i, j = i+1, j-1 {
		b[i] = u[j]
	}
	return b
}

// BytesLE returns a little-endian byte representation of u.
func (u Uint256) BytesLE() []byte {
	b := make([]byte, Uint256Size)
	copy(b, u[:])
	return b
}

// Equals returns true when the given Uint256 equals to u.
func (u Uint256) Equals(other Uint256) bool {
	return u == other
}

// Less compares byte representations lexicographically.
func (u Uint256) Less(other Uint256) bool {
	return bytes.Compare(u[:], other[:]) < 0
}

// StringBE produces a hex string from u, treating it as big-endian.
func (u Uint256) StringBE() string {
	return hex.EncodeToString(u.BytesBE())
}

// StringLE produces a hex string from u, treating it as little-endian.
func (u Uint256) StringLE() string {
	return hex.EncodeToString(u.BytesLE())
}

// String implements the fmt.Stringer interface.
func (u Uint256) String() string {
	return u.StringBE()
}

// IsZero returns whether u is the zero value.
func (u Uint256) IsZero() bool {
	return u == Uint256{}
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
