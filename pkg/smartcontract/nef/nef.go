// Package nef implements the NEF (Neo Executable Format) container that
// holds a contract's compiled script, its indirect-call tokens, and a
// checksum guarding against corruption.
package nef

import (
	"fmt"

	"github.com/n3-go/core/pkg/crypto/hash"
	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/smartcontract/callflag"
	"github.com/n3-go/core/pkg/util"
)

// Magic is the 4-byte magic identifying a NEF file.
const Magic uint32 = 0x3346454e // "NEF3"

// MaxScriptLength bounds the script payload of a NEF file.
const MaxScriptLength = 512 * 1024

// Header is the fixed-size prefix of a NEF file.
type Header struct {
	Magic    uint32
	Compiler string
}

// MethodToken is an indirect call descriptor referenced by index from the
// CALLT opcode, allowing a contract to call another without embedding its
// hash in the script body.
type MethodToken struct {
	Hash       util.Uint160
	Method     string
	ParamCount uint16
	HasReturn  bool
	CallFlag   callflag.CallFlag
}

// File is the full NEF container.
type File struct {
	Header   Header
	Tokens   []MethodToken
	Script   []byte
	Checksum uint32
}

// CalculateChecksum computes the checksum over every field of the NEF
// except the checksum itself.
func (n *File) CalculateChecksum() uint32 {
	return hash.Checksum(n.signableBytes())
}

// signableBytes serializes every NEF field except the trailing checksum.
func (n *File) signableBytes() []byte {
	w := newBufWriter()
	w.WriteU32LE(n.Header.Magic)
	w.writeFixedString(n.Header.Compiler, 64)
	w.WriteVarUint(uint64(len(n.Tokens)))
	for _, t := range n.Tokens {
		w.WriteBytes(t.Hash.BytesLE())
		w.WriteString(t.Method)
		w.WriteU16LE(t.ParamCount)
		w.WriteBool(t.HasReturn)
		w.WriteU8(byte(t.CallFlag))
	}
	w.WriteU16LE(0) // reserved
	w.WriteVarBytes(n.Script)
	return w.Bytes()
}

// Verify checks the NEF's internal consistency: magic, script bounds, and
// checksum.
func (n *File) Verify() error {
	if n.Header.Magic != Magic {
		return fmt.Errorf("nef: invalid magic 0x%08x", n.Header.Magic)
	}
	if len(n.Script) == 0 || len(n.Script) > MaxScriptLength {
		return fmt.Errorf("nef: invalid script length %d", len(n.Script))
	}
	if n.CalculateChecksum() != n.Checksum {
		return fmt.Errorf("nef: checksum mismatch")
	}
	return nil
}

// Bytes serializes the full NEF file including its checksum.
func (n *File) Bytes() []byte {
	w := newBufWriter()
	w.WriteBytes(n.signableBytes())
	w.WriteU32LE(n.Checksum)
	return w.Bytes()
}

// NewFile builds a NEF file around a compiled script, stamping it with the
// node's compiler identifier and computing its checksum.
func NewFile(script []byte) (*File, error) {
	n := &File{
		Header: Header{
			Magic:    Magic,
			Compiler: "n3-go-core",
		},
		Script: script,
	}
	if len(script) == 0 || len(script) > MaxScriptLength {
		return nil, fmt.Errorf("nef: invalid script length %d", len(script))
	}
	n.Checksum = n.CalculateChecksum()
	return n, nil
}

// FileFromBytes parses and verifies a NEF file from its serialized form.
func FileFromBytes(b []byte) (*File, error) {
	r := io.NewBinReaderFromBuf(b)
	n := new(File)

	n.Header.Magic = r.ReadU32LE()
	n.Header.Compiler = readFixedString(r, 64)

	nTokens := r.ReadVarUint()
	n.Tokens = make([]MethodToken, nTokens)
	for i := range n.Tokens {
		t := &n.Tokens[i]
		var h [util.Uint160Size]byte
		r.ReadBytes(h[:])
		if r.Err == nil {
			t.Hash, r.Err = util.Uint160DecodeBytesLE(h[:])
		}
		t.Method = r.ReadString()
		t.ParamCount = r.ReadU16LE()
		t.HasReturn = r.ReadBool()
		t.CallFlag = callflag.CallFlag(r.ReadU8())
	}

	_ = r.ReadU16LE() // reserved
	n.Script = r.ReadVarBytes(MaxScriptLength)
	n.Checksum = r.ReadU32LE()
	if r.Err != nil {
		return nil, r.Err
	}
	if err := n.Verify(); err != nil {
		return nil, err
	}
	return n, nil
}
