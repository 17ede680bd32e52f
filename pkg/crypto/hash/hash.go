// Package hash provides the hashing primitives used to derive script
// hashes, block hashes, and transaction hashes throughout the core.
package hash

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/util"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ripemd160 is required by the Neo N3 wire format.
)

// Hashable is anything that can report its own Uint256 hash (usually
// computed over the signed portion of a transaction or block header).
type Hashable interface {
	Hash() util.Uint256
}

// Sha256 computes the SHA-256 hash of b.
func Sha256(b []byte) util.Uint256 {
	return sha256.Sum256(b)
}

// DoubleSha256 computes SHA-256(SHA-256(b)), used for block and transaction
// hashes.
func DoubleSha256(b []byte) util.Uint256 {
	h1 := sha256.Sum256(b)
	h2 := sha256.Sum256(h1[:])
	return h2
}

// RipeMD160 computes the RIPEMD-160 hash of b.
func RipeMD160(b []byte) (h [20]byte) {
	hasher := ripemd160.New()
	_, _ = hasher.Write(b)
	copy(h[:], hasher.Sum(nil))
	return
}

// Hash160 computes RIPEMD160(SHA256(b)), which is how Neo derives a 20-byte
// script hash from an arbitrary verification script.
func Hash160(b []byte) util.Uint160 {
	sh := sha256.Sum256(b)
	return util.Uint160(RipeMD160(sh[:]))
}

// Checksum computes the 4-byte checksum used to validate NEF files and
// base58check-encoded addresses: the first four bytes of double-SHA256.
func Checksum(b []byte) uint32 {
	h := DoubleSha256(b)
	return binary.LittleEndian.Uint32(h[:4])
}

// NetSha256 computes SHA-256 over the network magic followed by b, the
// digest signed and verified for transaction and block witnesses.
func NetSha256(magic uint32, b []byte) util.Uint256 {
	buf := io.NewBufBinWriter()
	buf.WriteU32LE(magic)
	buf.WriteBytes(b)
	return Sha256(buf.Bytes())
}
