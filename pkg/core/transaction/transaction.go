// Package transaction implements the Neo N3 transaction wire format and
// the stateless shape checks that don't require chain state to evaluate.
package transaction

import (
	"errors"

	"github.com/n3-go/core/pkg/crypto/hash"
	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/util"
)

// Protocol-wide bounds.
const (
	MaxTransactionSize = 102400
	MaxAttributes      = 16
	MaxSigners         = 16
	DefaultVersion     = 0
)

// Transaction is a single signed invocation of one or more scripts.
type Transaction struct {
	Version       uint8
	Nonce         uint32
	SystemFee     int64
	NetworkFee    int64
	ValidUntilBlock uint32
	Signers       []Signer
	Attributes    []Attribute
	Script        []byte
	Scripts       []Witness

	hash      *util.Uint256
	size      int
}

// New creates an unsigned transaction wrapping script, valid up to block
// height validUntilBlock.
func New(script []byte, validUntilBlock uint32) *Transaction {
	return &Transaction{
		Version:         DefaultVersion,
		Script:          script,
		ValidUntilBlock: validUntilBlock,
	}
}

// Sender returns the first signer's account, the account responsible for
// system/network fees.
func (t *Transaction) Sender() util.Uint160 {
	if len(t.Signers) == 0 {
		return util.Uint160{}
	}
	return t.Signers[0].Account
}

// signableBytes serializes every field except the witnesses, the portion
// that is hashed and signed.
func (t *Transaction) signableBytes() []byte {
	w := io.NewBufBinWriter()
	t.encodeUnsigned(w.BinWriter)
	return w.Bytes()
}

func (t *Transaction) encodeUnsigned(w *io.BinWriter) {
	w.WriteU8(t.Version)
	w.WriteU32LE(t.Nonce)
	w.WriteU64LE(uint64(t.SystemFee))
	w.WriteU64LE(uint64(t.NetworkFee))
	w.WriteU32LE(t.ValidUntilBlock)
	w.WriteVarUint(uint64(len(t.Signers)))
	for i := range t.Signers {
		t.Signers[i].EncodeBinary(w)
	}
	w.WriteVarUint(uint64(len(t.Attributes)))
	for i := range t.Attributes {
		t.Attributes[i].EncodeBinary(w)
	}
	w.WriteVarBytes(t.Script)
}

// Hash returns the transaction hash: the double-SHA256 digest of the
// unsigned, witness-free encoding.
func (t *Transaction) Hash() util.Uint256 {
	if t.hash == nil {
		h := hash.DoubleSha256(t.signableBytes())
		t.hash = &h
	}
	return *t.hash
}

// EncodeBinary implements io.Serializable.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	t.encodeUnsigned(w)
	w.WriteVarUint(uint64(len(t.Scripts)))
	for i := range t.Scripts {
		t.Scripts[i].EncodeBinary(w)
	}
}

// DecodeBinary implements io.Serializable, applying the structural bounds:
// signer/attribute counts, per-kind uniqueness (Conflicts excepted), and a
// matching witness per signer.
func (t *Transaction) DecodeBinary(r *io.BinReader) {
	t.Version = r.ReadU8()
	t.Nonce = r.ReadU32LE()
	t.SystemFee = int64(r.ReadU64LE())
	t.NetworkFee = int64(r.ReadU64LE())
	t.ValidUntilBlock = r.ReadU32LE()

	nSigners := r.ReadVarUint()
	if nSigners == 0 || nSigners > MaxSigners {
		r.Err = errors.New("transaction: invalid signers count")
		return
	}
	t.Signers = make([]Signer, nSigners)
	seenAccounts := make(map[util.Uint160]struct{}, nSigners)
	for i := range t.Signers {
		t.Signers[i].DecodeBinary(r)
		if r.Err != nil {
			return
		}
		if _, dup := seenAccounts[t.Signers[i].Account]; dup {
			r.Err = errors.New("transaction: duplicate signer account")
			return
		}
		seenAccounts[t.Signers[i].Account] = struct{}{}
	}

	nAttrs := r.ReadVarUint()
	if nAttrs > MaxAttributes {
		r.Err = errors.New("transaction: too many attributes")
		return
	}
	t.Attributes = make([]Attribute, nAttrs)
	seenKinds := make(map[AttrType]struct{})
	for i := range t.Attributes {
		t.Attributes[i].DecodeBinary(r)
		if r.Err != nil {
			return
		}
		kind := t.Attributes[i].Type
		if kind != ConflictsT {
			if _, dup := seenKinds[kind]; dup {
				r.Err = errors.New("transaction: duplicate attribute kind")
				return
			}
			seenKinds[kind] = struct{}{}
		}
	}

	t.Script = r.ReadVarBytes(MaxTransactionSize)
	if len(t.Script) == 0 {
		r.Err = errors.New("transaction: empty script")
		return
	}

	nScripts := r.ReadVarUint()
	if int(nScripts) != len(t.Signers) {
		r.Err = errors.New("transaction: witness count does not match signer count")
		return
	}
	t.Scripts = make([]Witness, nScripts)
	for i := range t.Scripts {
		t.Scripts[i].DecodeBinary(r)
	}
}

// Bytes serializes the full transaction including witnesses.
func (t *Transaction) Bytes() []byte {
	w := io.NewBufBinWriter()
	t.EncodeBinary(w.BinWriter)
	return w.Bytes()
}

// Size returns (and caches) the encoded size of the transaction, used for
// network-fee size-based pricing.
func (t *Transaction) Size() int {
	if t.size == 0 {
		t.size = len(t.Bytes())
	}
	return t.size
}

// HasSigner reports whether h appears among the declared signers.
func (t *Transaction) HasSigner(h util.Uint160) bool {
	for i := range t.Signers {
		if t.Signers[i].Account == h {
			return true
		}
	}
	return false
}

// GetAttributes returns every attribute of the given kind (relevant only
// for Conflicts, which may repeat).
func (t *Transaction) GetAttributes(typ AttrType) []Attribute {
	var out []Attribute
	for i := range t.Attributes {
		if t.Attributes[i].Type == typ {
			out = append(out, t.Attributes[i])
		}
	}
	return out
}
