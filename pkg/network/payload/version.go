// Package payload defines the structured contents carried by protocol
// messages (currently just the handshake Version payload; other commands
// are opaque byte blobs above this layer).
package payload

import "github.com/n3-go/core/pkg/io"

// Version is the handshake payload each side of a connection sends first,
// advertising protocol version, services, and chain height.
type Version struct {
	Version     uint32
	Services    uint64
	Timestamp   uint32
	Port        uint16
	Nonce       uint32
	UserAgent   string
	StartHeight uint32
	Relay       bool
}

// EncodeBinary implements io.Serializable.
func (v *Version) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(v.Version)
	w.WriteU64LE(v.Services)
	w.WriteU32LE(v.Timestamp)
	w.WriteU16LE(v.Port)
	w.WriteU32LE(v.Nonce)
	w.WriteString(v.UserAgent)
	w.WriteU32LE(v.StartHeight)
	w.WriteBool(v.Relay)
}

// DecodeBinary implements io.Serializable.
func (v *Version) DecodeBinary(r *io.BinReader) {
	v.Version = r.ReadU32LE()
	v.Services = r.ReadU64LE()
	v.Timestamp = r.ReadU32LE()
	v.Port = r.ReadU16LE()
	v.Nonce = r.ReadU32LE()
	v.UserAgent = r.ReadString(256)
	v.StartHeight = r.ReadU32LE()
	v.Relay = r.ReadBool()
}

// Bytes serializes v using the standard wire encoding.
func (v *Version) Bytes() []byte {
	buf := io.NewBufBinWriter()
	v.EncodeBinary(buf.BinWriter)
	return buf.Bytes()
}
