package transaction

import (
	"errors"

	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/util"
)

// AttrType tags the concrete kind of attribute data carried by an
// Attribute.
type AttrType byte

// Attribute kinds. Every kind may appear at most once per transaction
// except Conflicts, which may repeat (one entry per conflicting hash).
const (
	HighPriorityT    AttrType = 0x01
	OracleResponseT  AttrType = 0x11
	NotValidBeforeT  AttrType = 0x20
	ConflictsT       AttrType = 0x21
)

// AttrValue is the payload carried by an Attribute; HighPriority carries
// none.
type AttrValue interface {
	AttrType() AttrType
	EncodeBinary(w *io.BinWriter)
	DecodeBinary(r *io.BinReader)
}

// Attribute is a typed, optional piece of transaction metadata.
type Attribute struct {
	Type  AttrType
	Value AttrValue
}

// HighPriority marks a transaction for priority inclusion; it carries no
// payload.
type HighPriority struct{}

func (*HighPriority) AttrType() AttrType         { return HighPriorityT }
func (*HighPriority) EncodeBinary(*io.BinWriter) {}
func (*HighPriority) DecodeBinary(*io.BinReader) {}

// OracleResponseCode enumerates the outcome of an oracle request.
type OracleResponseCode byte

const (
	OracleSuccess        OracleResponseCode = 0x00
	OracleProtocolError  OracleResponseCode = 0x10
	OracleConsensusUnreachable OracleResponseCode = 0x12
	OracleNotFound       OracleResponseCode = 0x14
	OracleTimeout        OracleResponseCode = 0x16
	OracleForbidden      OracleResponseCode = 0x18
	OracleResponseTooLarge OracleResponseCode = 0x1a
	OracleInsufficientFunds OracleResponseCode = 0x1c
	OracleContentTypeNotSupported OracleResponseCode = 0x1f
	OracleError          OracleResponseCode = 0xff
)

// MaxOracleResultSize bounds an OracleResponse's result payload.
const MaxOracleResultSize = 0xffff

// OracleResponse carries the outcome of a previously issued oracle request.
type OracleResponse struct {
	ID     uint64
	Code   OracleResponseCode
	Result []byte
}

func (*OracleResponse) AttrType() AttrType { return OracleResponseT }
func (o *OracleResponse) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(o.ID)
	w.WriteU8(byte(o.Code))
	w.WriteVarBytes(o.Result)
}
func (o *OracleResponse) DecodeBinary(r *io.BinReader) {
	o.ID = r.ReadU64LE()
	o.Code = OracleResponseCode(r.ReadU8())
	o.Result = r.ReadVarBytes(MaxOracleResultSize)
}

// NotValidBefore rejects the transaction from the mempool/block until the
// chain reaches the given height.
type NotValidBefore struct {
	Height uint32
}

func (*NotValidBefore) AttrType() AttrType { return NotValidBeforeT }
func (n *NotValidBefore) EncodeBinary(w *io.BinWriter) { w.WriteU32LE(n.Height) }
func (n *NotValidBefore) DecodeBinary(r *io.BinReader)  { n.Height = r.ReadU32LE() }

// Conflicts declares that this transaction invalidates another by hash;
// unlike other attribute kinds, a transaction may carry several of these.
type Conflicts struct {
	Hash util.Uint256
}

func (*Conflicts) AttrType() AttrType { return ConflictsT }
func (c *Conflicts) EncodeBinary(w *io.BinWriter) { w.WriteBytes(c.Hash.BytesBE()) }
func (c *Conflicts) DecodeBinary(r *io.BinReader) {
	var b [util.Uint256Size]byte
	r.ReadBytes(b[:])
	c.Hash, r.Err = util.Uint256DecodeBytesBE(b[:])
}

// EncodeBinary implements io.Serializable.
func (a *Attribute) EncodeBinary(w *io.BinWriter) {
	w.WriteU8(byte(a.Type))
	a.Value.EncodeBinary(w)
}

// DecodeBinary implements io.Serializable.
func (a *Attribute) DecodeBinary(r *io.BinReader) {
	a.Type = AttrType(r.ReadU8())
	switch a.Type {
	case HighPriorityT:
		a.Value = &HighPriority{}
	case OracleResponseT:
		a.Value = &OracleResponse{}
	case NotValidBeforeT:
		a.Value = &NotValidBefore{}
	case ConflictsT:
		a.Value = &Conflicts{}
	default:
		r.Err = errors.New("transaction: unknown attribute type")
		return
	}
	a.Value.DecodeBinary(r)
}
