// Package state holds the persisted representations the State Layer reads
// and writes: contract descriptors, storage items, and the per-execution
// results (notifications, VM state, gas spent) recorded for every
// transaction and trigger.
package state

import (
	"github.com/n3-go/core/pkg/crypto/hash"
	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/smartcontract/manifest"
	"github.com/n3-go/core/pkg/smartcontract/nef"
	"github.com/n3-go/core/pkg/util"
)

// ContractBase is the identity and executable payload shared by both
// ordinary deployed contracts and native contracts.
type ContractBase struct {
	ID       int32
	Hash     util.Uint160
	NEF      nef.File
	Manifest manifest.Manifest
}

// Contract is the full persisted state of a deployed contract.
type Contract struct {
	ContractBase
	UpdateCounter uint16
}

// EncodeBinary implements io.Serializable.
func (c *Contract) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(uint32(c.ID))
	w.WriteU16LE(c.UpdateCounter)
	w.WriteBytes(c.Hash.BytesBE())
	w.WriteVarBytes(c.NEF.Bytes())
	mb := manifestBytes(w, &c.Manifest)
	w.WriteVarBytes(mb)
}

// DecodeBinary implements io.Serializable.
func (c *Contract) DecodeBinary(r *io.BinReader) {
	c.ID = int32(r.ReadU32LE())
	c.UpdateCounter = r.ReadU16LE()
	var h [util.Uint160Size]byte
	r.ReadBytes(h[:])
	c.Hash, r.Err = util.Uint160DecodeBytesBE(h[:])
	if r.Err != nil {
		return
	}
	decodeNEF(r, &c.NEF)
	mb := r.ReadVarBytes(manifest.MaxManifestSize)
	if r.Err != nil {
		return
	}
	r.Err = decodeManifestJSON(mb, &c.Manifest)
}

// CreateContractHash derives the deterministic address a deployment
// transaction will assign to a new contract: Hash160 over a marker byte,
// the deployer's account, the NEF checksum, and the declared contract
// name. This binds the address to who deployed it, what bytecode they
// deployed, and what they called it, without depending on any block
// height or nonce.
func CreateContractHash(sender util.Uint160, nefCheckSum uint32, name string) util.Uint160 {
	w := io.NewBufBinWriter()
	w.WriteU8(0)
	w.WriteBytes(sender.BytesBE())
	w.WriteU32LE(nefCheckSum)
	w.WriteString(name)
	return hash.Hash160(w.Bytes())
}

// CreateNativeContractHash derives the fixed hash a native contract is
// addressed by: the same construction as CreateContractHash but with a
// zero sender and zero checksum, keyed only by name so it is stable
// across every deployment of the node.
func CreateNativeContractHash(name string) util.Uint160 {
	return CreateContractHash(util.Uint160{}, 0, name)
}

func manifestBytes(_ *io.BinWriter, m *manifest.Manifest) []byte {
	b, err := manifest.MarshalJSON(m)
	if err != nil {
		panic(err)
	}
	return b
}

func decodeManifestJSON(b []byte, m *manifest.Manifest) error {
	return manifest.UnmarshalJSON(b, m)
}

func decodeNEF(r *io.BinReader, n *nef.File) {
	b := r.ReadVarBytes(nef.MaxScriptLength + 1024)
	if r.Err != nil {
		return
	}
	f, err := nef.FileFromBytes(b)
	if err != nil {
		r.Err = err
		return
	}
	*n = *f
}
