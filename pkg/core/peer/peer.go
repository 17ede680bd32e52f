// Package peer implements the per-connection state machine a Neo N3 node
// runs for every inbound or outbound peer: dialing/accepting, the
// Version/Verack handshake, and tracking the capabilities learned from it.
package peer

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/n3-go/core/pkg/crypto/hash"
	"github.com/n3-go/core/pkg/io"
	"github.com/n3-go/core/pkg/network/payload"
	"github.com/n3-go/core/pkg/network/wire"
	"github.com/n3-go/core/pkg/util"
)

// State is a peer connection's lifecycle stage.
type State int

// Connection states, in the order a healthy outbound connection visits them.
const (
	Disconnected State = iota
	Connecting
	Handshaking
	Connected
	Disconnecting
	// Failed is a terminal state reached by a connect or handshake error;
	// it never transitions back to Disconnected.
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Handshaking:
		return "Handshaking"
	case Connected:
		return "Connected"
	case Disconnecting:
		return "Disconnecting"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Handshake timeouts.
const (
	VersionTimeout = 5 * time.Second
	VerackTimeout  = 3 * time.Second
)

// Peer is one TCP connection and the handshake-derived identity/metadata
// attached to it.
type Peer struct {
	Addr       net.Addr
	Conn       net.Conn
	Reader     *bufio.Reader
	State      State
	Outbound   bool
	ID         util.Uint160
	Version    uint32
	UserAgent  string
	StartHeight uint32
	Relay      bool

	ConnectedAt  time.Time
	LastActivity time.Time
}

// NewOutbound wraps a freshly dialed connection, ready for handshake.
func NewOutbound(conn net.Conn) *Peer {
	return &Peer{
		Addr:     conn.RemoteAddr(),
		Conn:     conn,
		Reader:   bufio.NewReader(conn),
		State:    Connecting,
		Outbound: true,
	}
}

// NewInbound wraps a freshly accepted connection, ready for handshake.
func NewInbound(conn net.Conn) *Peer {
	return &Peer{
		Addr:     conn.RemoteAddr(),
		Conn:     conn,
		Reader:   bufio.NewReader(conn),
		State:    Handshaking,
		Outbound: false,
	}
}

// Handshake performs the Version/Verack exchange: send local Version, read
// the peer's Version within VersionTimeout, send local Verack, then read the
// peer's Verack within VerackTimeout. On success the peer moves to
// Connected; on any error it moves to Failed and the error is returned.
func (p *Peer) Handshake(magic wire.Magic, local *payload.Version) error {
	p.State = Handshaking

	if err := p.sendVersion(local); err != nil {
		p.State = Failed
		return fmt.Errorf("peer: sending version: %w", err)
	}

	remote, err := p.readVersionWithTimeout(magic, VersionTimeout)
	if err != nil {
		p.State = Failed
		return fmt.Errorf("peer: reading version: %w", err)
	}
	p.applyRemoteVersion(remote)

	if err := p.sendVerack(); err != nil {
		p.State = Failed
		return fmt.Errorf("peer: sending verack: %w", err)
	}

	if err := p.readVerackWithTimeout(magic, VerackTimeout); err != nil {
		p.State = Failed
		return fmt.Errorf("peer: reading verack: %w", err)
	}

	p.State = Connected
	now := time.Now()
	p.ConnectedAt = now
	p.LastActivity = now
	return nil
}

func (p *Peer) sendVersion(v *payload.Version) error {
	msg := &wire.Message{Command: wire.CmdVersion, Payload: v.Bytes()}
	return msg.WriteTo(p.Conn)
}

func (p *Peer) sendVerack() error {
	msg := &wire.Message{Command: wire.CmdVerack}
	return msg.WriteTo(p.Conn)
}

func (p *Peer) readVersionWithTimeout(magic wire.Magic, d time.Duration) (*payload.Version, error) {
	if err := p.Conn.SetReadDeadline(time.Now().Add(d)); err != nil {
		return nil, err
	}
	defer p.Conn.SetReadDeadline(time.Time{})

	msg, err := wire.ReadMessage(p.Reader, magic)
	if err != nil {
		return nil, err
	}
	if msg.Command != wire.CmdVersion {
		return nil, fmt.Errorf("peer: expected Version, got command 0x%02x", msg.Command)
	}
	v := &payload.Version{}
	v.DecodeBinary(io.NewBinReaderFromBuf(msg.Payload))
	return v, nil
}

func (p *Peer) readVerackWithTimeout(magic wire.Magic, d time.Duration) error {
	if err := p.Conn.SetReadDeadline(time.Now().Add(d)); err != nil {
		return err
	}
	defer p.Conn.SetReadDeadline(time.Time{})

	msg, err := wire.ReadMessage(p.Reader, magic)
	if err != nil {
		return err
	}
	if msg.Command != wire.CmdVerack {
		return fmt.Errorf("peer: expected Verack, got command 0x%02x", msg.Command)
	}
	return nil
}

// applyRemoteVersion caches the peer's advertised identity/capabilities and
// derives its UInt160 id from the handshake nonce and remote address.
func (p *Peer) applyRemoteVersion(v *payload.Version) {
	p.Version = v.Version
	p.UserAgent = v.UserAgent
	p.StartHeight = v.StartHeight
	p.Relay = v.Relay
	p.ID = derivePeerID(p.Addr.String(), v.Nonce)
}

// derivePeerID combines a peer's network address and handshake nonce into a
// stable UInt160 identifier.
func derivePeerID(addr string, nonce uint32) util.Uint160 {
	buf := io.NewBufBinWriter()
	buf.WriteString(addr)
	buf.WriteU32LE(nonce)
	return hash.Hash160(buf.Bytes())
}

// Close transitions the peer to Disconnecting, closes the socket, and
// settles in Disconnected.
func (p *Peer) Close() error {
	p.State = Disconnecting
	err := p.Conn.Close()
	p.State = Disconnected
	return err
}

// Touch marks the peer as having had activity just now.
func (p *Peer) Touch() { p.LastActivity = time.Now() }

// Idle reports whether the peer has had no activity for at least d.
func (p *Peer) Idle(d time.Duration) bool { return time.Since(p.LastActivity) >= d }

var errNotConnected = errors.New("peer: not connected")

// Send writes msg to the peer's socket. It only succeeds while Connected.
func (p *Peer) Send(msg *wire.Message) error {
	if p.State != Connected {
		return errNotConnected
	}
	if err := msg.WriteTo(p.Conn); err != nil {
		return err
	}
	p.Touch()
	return nil
}
