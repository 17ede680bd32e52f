// Package keys implements the secp256r1 (NIST P-256) public/private key
// pair Neo uses for witness signing and committee membership.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/n3-go/core/pkg/crypto/hash"
	"github.com/nspcc-dev/rfc6979"
)

// PublicKeySize is the length of a compressed secp256r1 point: one prefix
// byte (0x02/0x03 for even/odd Y) plus the 32-byte X coordinate.
const PublicKeySize = 33

// addressVersion is the Neo N3 base58check address version prefix.
const addressVersion = 0x35

// PublicKey is a point on secp256r1 used to verify witness signatures and
// to identify committee/validator candidates.
type PublicKey struct {
	ecdsa.PublicKey
}

// NewPublicKeyFromBytes decodes a compressed point encoding into a
// PublicKey, rejecting the one-byte infinity encoding and anything not
// actually on the curve.
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	if len(b) == 1 && b[0] == 0x00 {
		return nil, errors.New("keys: point at infinity has no committee meaning")
	}
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("keys: expected %d-byte compressed public key, got %d", PublicKeySize, len(b))
	}
	if b[0] != 0x02 && b[0] != 0x03 {
		return nil, fmt.Errorf("keys: invalid compressed point prefix 0x%02x", b[0])
	}
	curve := elliptic.P256()
	x := new(big.Int).SetBytes(b[1:])
	y := decompressY(curve, x, b[0] == 0x03)
	if y == nil {
		return nil, errors.New("keys: X coordinate is not on the curve")
	}
	if !curve.IsOnCurve(x, y) {
		return nil, errors.New("keys: decompressed point is not on the curve")
	}
	return &PublicKey{ecdsa.PublicKey{Curve: curve, X: x, Y: y}}, nil
}

// NewPublicKeyFromString decodes a hex-encoded compressed public key.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid hex public key: %w", err)
	}
	return NewPublicKeyFromBytes(b)
}

// decompressY recovers the Y coordinate of a compressed secp256r1 point:
// y^2 = x^3 - 3x + b (mod p), picking the root matching the requested
// parity. Returns nil if x doesn't correspond to a point on the curve.
func decompressY(curve elliptic.Curve, x *big.Int, odd bool) *big.Int {
	params := curve.Params()
	p := params.P

	x3 := new(big.Int).Exp(x, big.NewInt(3), p)
	threeX := new(big.Int).Mul(x, big.NewInt(3))
	y2 := new(big.Int).Sub(x3, threeX)
	y2.Add(y2, params.B)
	y2.Mod(y2, p)

	y := new(big.Int).ModSqrt(y2, p)
	if y == nil {
		return nil
	}
	if y.Bit(0) != boolToBit(odd) {
		y.Sub(p, y)
	}
	return y
}

func boolToBit(b bool) uint {
	if b {
		return 1
	}
	return 0
}

// Bytes returns the compressed point encoding of k.
func (k *PublicKey) Bytes() []byte {
	if k.X == nil {
		return []byte{0x00}
	}
	b := make([]byte, PublicKeySize)
	if k.Y.Bit(0) == 0 {
		b[0] = 0x02
	} else {
		b[0] = 0x03
	}
	xBytes := k.X.Bytes()
	copy(b[1+PublicKeySize-1-len(xBytes):], xBytes)
	return b
}

// Less orders public keys by ascending compressed-point byte value, the
// tie-break rule used when ranking committee candidates with equal votes.
func (k *PublicKey) Less(other *PublicKey) bool {
	a, b := k.Bytes(), other.Bytes()
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Address renders the base58check account address derived from this key's
// verification script hash.
func (k *PublicKey) Address() string {
	script := k.VerificationScript()
	sh := hash.Hash160(script)
	buf := make([]byte, 21)
	buf[0] = addressVersion
	copy(buf[1:], sh.BytesBE())
	sum := hash.Checksum(buf)
	full := make([]byte, 25)
	copy(full, buf)
	full[21] = byte(sum)
	full[22] = byte(sum >> 8)
	full[23] = byte(sum >> 16)
	full[24] = byte(sum >> 24)
	return base58.Encode(full)
}

// VerificationScript returns the single-signature verification script for
// this key: PUSHDATA1 <33-byte key> SYSCALL Neo.Crypto.CheckSig.
func (k *PublicKey) VerificationScript() []byte {
	b := k.Bytes()
	script := make([]byte, 0, 2+len(b)+5)
	script = append(script, 0x0c, byte(len(b)))
	script = append(script, b...)
	script = append(script, 0x41)
	script = append(script, 0x56, 0xe7, 0xb3, 0x27) // Neo.Crypto.CheckSig interop hash, little-endian
	return script
}

// PrivateKey is a secp256r1 scalar paired with its public point.
type PrivateKey struct {
	ecdsa.PrivateKey
}

// NewPrivateKey generates a fresh random secp256r1 key pair.
func NewPrivateKey() (*PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keys: generate key: %w", err)
	}
	return &PrivateKey{*priv}, nil
}

// PublicKey returns the public counterpart of p.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{ecdsa.PublicKey{Curve: p.Curve, X: p.X, Y: p.Y}}
}

// Sign produces a deterministic (RFC 6979) ECDSA signature over digest,
// returned as the concatenated fixed-width (r‖s) encoding Neo witnesses use.
func (p *PrivateKey) Sign(digest []byte) ([]byte, error) {
	r, s := rfc6979.SignECDSA(&p.PrivateKey, digest, sha256.New)
	size := (p.Curve.Params().BitSize + 7) / 8
	sig := make([]byte, 2*size)
	r.FillBytes(sig[:size])
	s.FillBytes(sig[size:])
	return sig, nil
}

// Verify checks sig (the r‖s encoding produced by Sign) against digest.
func (k *PublicKey) Verify(digest, sig []byte) bool {
	size := (k.Curve.Params().BitSize + 7) / 8
	if len(sig) != 2*size {
		return false
	}
	r := new(big.Int).SetBytes(sig[:size])
	s := new(big.Int).SetBytes(sig[size:])
	return ecdsa.Verify(&k.PublicKey, digest, r, s)
}
