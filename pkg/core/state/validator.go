package state

import (
	"github.com/n3-go/core/pkg/crypto/keys"
	"github.com/n3-go/core/pkg/io"
)

// Candidate is a registered validator candidate's public key and vote
// tally, as stored under the NEO native contract's `candidate:` prefix.
type Candidate struct {
	PublicKey *keys.PublicKey
	Votes     int64
}

// EncodeBinary implements io.Serializable.
func (c *Candidate) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(c.PublicKey.Bytes())
	w.WriteU64LE(uint64(c.Votes))
}

// DecodeBinary implements io.Serializable.
func (c *Candidate) DecodeBinary(r *io.BinReader) {
	buf := make([]byte, keys.PublicKeySize)
	r.ReadBytes(buf)
	if r.Err != nil {
		return
	}
	pub, err := keys.NewPublicKeyFromBytes(buf)
	if err != nil {
		r.Err = err
		return
	}
	c.PublicKey = pub
	c.Votes = int64(r.ReadU64LE())
}

// Validator is a committee member entrusted with producing blocks.
type Validator struct {
	PublicKey *keys.PublicKey
}
