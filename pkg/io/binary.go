// Package io provides the binary (de)serialization primitives used for the
// Neo N3 wire format: fixed-width integers, Neo-style variable-length
// integers and byte arrays, and a Serializable interface implemented by
// every wire structure in the core.
package io

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	stdio "io"
	"math/big"
)

// MaxArraySize is the maximum number of elements decoded in one array, a
// guard against hostile or corrupt payloads.
const MaxArraySize = 65536

// Serializable defines a type that can encode/decode itself to/from the
// binary wire format.
type Serializable interface {
	EncodeBinary(w *BinWriter)
	DecodeBinary(r *BinReader)
}

// BinWriter wraps an io.Writer and tracks the first error encountered so
// that callers can chain writes and check the error once at the end.
type BinWriter struct {
	w   stdio.Writer
	Err error
}

// NewBinWriterFromIO creates a BinWriter writing to w.
func NewBinWriterFromIO(w stdio.Writer) *BinWriter {
	return &BinWriter{w: w}
}

func (w *BinWriter) writeBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteU8 writes a single byte.
func (w *BinWriter) WriteU8(b byte) { w.writeBytes([]byte{b}) }

// WriteB is an alias for WriteU8, matching the convention used for single
// flag/opcode bytes elsewhere in the wire format.
func (w *BinWriter) WriteB(b byte) { w.WriteU8(b) }

// WriteBool writes b as a single 0x00/0x01 byte.
func (w *BinWriter) WriteBool(b bool) {
	if b {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

// WriteU16LE writes u as a little-endian uint16.
func (w *BinWriter) WriteU16LE(u uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], u)
	w.writeBytes(b[:])
}

// WriteU32LE writes u as a little-endian uint32.
func (w *BinWriter) WriteU32LE(u uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], u)
	w.writeBytes(b[:])
}

// WriteU64LE writes u as a little-endian uint64.
func (w *BinWriter) WriteU64LE(u uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	w.writeBytes(b[:])
}

// WriteBytes writes b verbatim, with no length prefix.
func (w *BinWriter) WriteBytes(b []byte) { w.writeBytes(b) }

// WriteVarUint writes u using Neo's compact variable-length integer
// encoding: one byte for values <= 0xFC, else a 0xFD/0xFE/0xFF marker
// followed by a 2/4/8-byte little-endian value.
func (w *BinWriter) WriteVarUint(u uint64) {
	if w.Err != nil {
		return
	}
	switch {
	case u < 0xfd:
		w.WriteU8(byte(u))
	case u <= 0xffff:
		w.WriteU8(0xfd)
		w.WriteU16LE(uint16(u))
	case u <= 0xffffffff:
		w.WriteU8(0xfe)
		w.WriteU32LE(uint32(u))
	default:
		w.WriteU8(0xff)
		w.WriteU64LE(u)
	}
}

// WriteVarBytes writes the length of b as a VarUint followed by b itself.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteString writes s as a length-prefixed UTF-8 byte sequence.
func (w *BinWriter) WriteString(s string) {
	w.WriteVarBytes([]byte(s))
}

// WriteArray writes a VarUint count followed by each element's
// EncodeBinary.
func (w *BinWriter) WriteArray(arr interface{}) {
	if w.Err != nil {
		return
	}
	switch a := arr.(type) {
	case []Serializable:
		w.WriteVarUint(uint64(len(a)))
		for _, s := range a {
			s.EncodeBinary(w)
			if w.Err != nil {
				return
			}
		}
	default:
		w.Err = fmt.Errorf("io: WriteArray: unsupported type %T", arr)
	}
}

// BufBinWriter is a BinWriter that accumulates its output in memory and can
// be reset and reused, which is convenient for building scripts
// incrementally (method offsets, NEF scripts, signed payload digests).
type BufBinWriter struct {
	*BinWriter
	buf *bytes.Buffer
}

// NewBufBinWriter creates a ready-to-use in-memory BufBinWriter.
func NewBufBinWriter() *BufBinWriter {
	b := new(bytes.Buffer)
	return &BufBinWriter{BinWriter: NewBinWriterFromIO(b), buf: b}
}

// Len returns the number of bytes written so far.
func (w *BufBinWriter) Len() int { return w.buf.Len() }

// Bytes returns the accumulated bytes. It does not reset the buffer.
func (w *BufBinWriter) Bytes() []byte {
	if w.Err != nil {
		return nil
	}
	b := w.buf.Bytes()
	res := make([]byte, len(b))
	copy(res, b)
	return res
}

// Reset clears the buffer and any sticky error so the writer can be reused.
func (w *BufBinWriter) Reset() {
	w.Err = nil
	w.buf.Reset()
}

// BinReader wraps an io.Reader and tracks the first error encountered.
type BinReader struct {
	r   *bufio.Reader
	Err error
}

// NewBinReaderFromBuf creates a BinReader over an in-memory byte slice.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return NewBinReaderFromIO(bytes.NewReader(b))
}

// NewBinReaderFromIO creates a BinReader reading from r.
func NewBinReaderFromIO(r stdio.Reader) *BinReader {
	return &BinReader{r: bufio.NewReader(r)}
}

func (r *BinReader) readN(n int) []byte {
	if r.Err != nil {
		return nil
	}
	b := make([]byte, n)
	_, r.Err = stdio.ReadFull(r.r, b)
	return b
}

// ReadU8 reads a single byte.
func (r *BinReader) ReadU8() byte {
	b := r.readN(1)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

// ReadB is an alias for ReadU8.
func (r *BinReader) ReadB() byte { return r.ReadU8() }

// ReadBool reads a single byte and interprets it as a boolean (any nonzero
// value is true).
func (r *BinReader) ReadBool() bool { return r.ReadU8() != 0 }

// ReadU16LE reads a little-endian uint16.
func (r *BinReader) ReadU16LE() uint16 {
	b := r.readN(2)
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadU32LE reads a little-endian uint32.
func (r *BinReader) ReadU32LE() uint32 {
	b := r.readN(4)
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadU64LE reads a little-endian uint64.
func (r *BinReader) ReadU64LE() uint64 {
	b := r.readN(8)
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadBytes reads exactly len(b) bytes into b.
func (r *BinReader) ReadBytes(b []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = stdio.ReadFull(r.r, b)
}

// ReadVarUint reads Neo's compact variable-length integer encoding.
func (r *BinReader) ReadVarUint() uint64 {
	b := r.ReadU8()
	switch b {
	case 0xfd:
		return uint64(r.ReadU16LE())
	case 0xfe:
		return uint64(r.ReadU32LE())
	case 0xff:
		return r.ReadU64LE()
	default:
		return uint64(b)
	}
}

// ReadVarBytes reads a VarUint length followed by that many bytes. An
// optional maxSize bounds the accepted length (defaults to MaxArraySize).
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	max := MaxArraySize
	if len(maxSize) > 0 {
		max = maxSize[0]
	}
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	if n > uint64(max) {
		r.Err = fmt.Errorf("io: byte array size %d exceeds maximum of %d", n, max)
		return nil
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	return b
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *BinReader) ReadString(maxSize ...int) string {
	return string(r.ReadVarBytes(maxSize...))
}

// ReadArray decodes a VarUint count followed by that many elements into
// *t, a pointer to a slice of Serializable or to a type implementing
// elemDecoder (used by array-like wrappers such as
// network/capability.Capabilities).
func (r *BinReader) ReadArray(t interface{}, maxSize ...int) {
	max := MaxArraySize
	if len(maxSize) > 0 {
		max = maxSize[0]
	}
	n := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if n > uint64(max) {
		r.Err = fmt.Errorf("io: array size %d exceeds maximum of %d", n, max)
		return
	}
	switch arr := t.(type) {
	case elemDecoder:
		arr.DecodeArray(r, int(n))
	default:
		r.Err = fmt.Errorf("io: ReadArray: unsupported type %T", t)
	}
}

// elemDecoder is implemented by array-like wrappers (such as
// network/capability.Capabilities) that know how to allocate and decode a
// fixed number of elements of their own concrete type.
type elemDecoder interface {
	DecodeArray(r *BinReader, n int)
}

// BigIntToBytes converts n to its minimal two's-complement little-endian
// representation, matching the VM's Integer stack item encoding.
func BigIntToBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{}
	}
	bs := n.Bytes() // big-endian magnitude
	for i, j := 0, len(bs)-1; i < j; i, j = i+1, j-1 {
		bs[i], bs[j] = bs[j], bs[i]
	}
	if n.Sign() < 0 {
		carry := true
		for i := range bs {
			bs[i] = ^bs[i]
			if carry {
				bs[i]++
				carry = bs[i] == 0
			}
		}
		if bs[len(bs)-1]&0x80 == 0 {
			bs = append(bs, 0xff)
		}
	} else if bs[len(bs)-1]&0x80 != 0 {
		bs = append(bs, 0)
	}
	return bs
}

// BytesToBigInt interprets b as a little-endian two's-complement integer,
// the inverse of BigIntToBytes.
func BytesToBigInt(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	be := make([]byte, len(b))
	for i, j := 0, len(b)-1; i < len(b); i, j = i+1, j-1 {
		be[i] = b[j]
	}
	n := new(big.Int).SetBytes(be)
	if b[len(b)-1]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return n
}
