// Package wire implements the Neo N3 compact message framing: magic
// identifiers, the flags/command/varint-length/payload shape, and
// tolerance for the legacy preamble-prefixed variant some peers still send.
package wire

import (
	"bufio"
	"fmt"
	"io"

	nio "github.com/n3-go/core/pkg/io"
)

// Magic identifies a network: mainnet, testnet, or a private chain.
type Magic uint32

// Named network magics.
const (
	MagicMainNet Magic = 0x334f454e // "NEO3"
	MagicTestNet Magic = 0x3554334e // "N3T5"
)

// MaxPayloadSize is the largest payload a compact message may carry (32 MiB).
const MaxPayloadSize = 32 * 1024 * 1024

// Command identifies a message's kind (Version, Verack, Inv, Block, ...).
type Command byte

// Handshake commands.
const (
	CmdVersion Command = 0x00
	CmdVerack  Command = 0x01
)

// Message is a single framed protocol message: a flags byte, a command
// byte, and an opaque payload whose interpretation depends on Command.
type Message struct {
	Flags   byte
	Command Command
	Payload []byte
}

// legacyPreambleLen is the length of the non-magic padding some
// implementations prepend before the magic bytes in the legacy framing.
const legacyPreambleLen = 3

// WriteTo writes m to w using the compact framing:
// flags:1 | command:1 | varint(len(payload)) | payload.
func (m *Message) WriteTo(w io.Writer) error {
	if len(m.Payload) > MaxPayloadSize {
		return fmt.Errorf("wire: payload of %d bytes exceeds maximum %d", len(m.Payload), MaxPayloadSize)
	}
	bw := nio.NewBinWriterFromIO(w)
	bw.WriteU8(m.Flags)
	bw.WriteU8(byte(m.Command))
	bw.WriteVarBytes(m.Payload)
	return bw.Err
}

// ReadMessage reads one message from r. It tolerates both the compact
// framing (flags, command, varint length, payload) and the legacy framing
// that prepends a fixed preamble and magic before the same compact shape;
// callers that only need the compact form should use ReadCompactMessage.
func ReadMessage(r *bufio.Reader, magic Magic) (*Message, error) {
	first, err := r.Peek(legacyPreambleLen + 4)
	if err == nil {
		candidate := Magic(uint32(first[legacyPreambleLen]) |
			uint32(first[legacyPreambleLen+1])<<8 |
			uint32(first[legacyPreambleLen+2])<<16 |
			uint32(first[legacyPreambleLen+3])<<24)
		if candidate == magic {
			if _, err := r.Discard(legacyPreambleLen + 4); err != nil {
				return nil, fmt.Errorf("wire: discarding legacy preamble: %w", err)
			}
		}
	}
	return ReadCompactMessage(r)
}

// ReadCompactMessage reads a single compact-framed message with no legacy
// preamble detection.
func ReadCompactMessage(r *bufio.Reader) (*Message, error) {
	br := nio.NewBinReaderFromIO(r)
	m := &Message{}
	m.Flags = br.ReadU8()
	m.Command = Command(br.ReadU8())
	m.Payload = br.ReadVarBytes(MaxPayloadSize)
	if br.Err != nil {
		return nil, fmt.Errorf("wire: reading message: %w", br.Err)
	}
	return m, nil
}
