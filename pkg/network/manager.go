package network

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/n3-go/core/pkg/core/peer"
	"github.com/n3-go/core/pkg/network/payload"
	"github.com/n3-go/core/pkg/network/wire"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// staleThreshold is how long a connected peer may go without activity
// before the maintenance task evicts it.
const staleThreshold = 300 * time.Second

// maintenanceInterval is how often the eviction sweep runs.
const maintenanceInterval = 30 * time.Second

// Event is something the Manager reports to subscribers: a peer joining or
// leaving the table, or a non-fatal error observed on a connection.
type Event struct {
	Kind  EventKind
	Addr  string
	Peer  *peer.Peer
	Error error
}

// EventKind discriminates Event.
type EventKind int

// Event kinds emitted by the Manager.
const (
	EventConnected EventKind = iota
	EventDisconnected
	EventConnectionError
)

// fatalValidationSubstrings is the text fragments that, when present in a
// message-validation error, cause Manager to disconnect the offending peer
// rather than merely reporting an Event.
var fatalValidationSubstrings = []string{
	"invalid magic",
	"checksum mismatch",
	"message size",
	"too many",
	"unsupported protocol version",
	"protocol violation",
	"message serialization",
}

// Manager owns the connected-peer table and the accept loop, and is the
// only component that mutates the table.
type Manager struct {
	Magic      wire.Magic
	MaxPeers   int
	ListenAddr string
	Version    func() *payload.Version
	Log        *zap.Logger

	mu    sync.RWMutex
	peers map[string]*peer.Peer

	events chan Event

	listener net.Listener
}

// NewManager creates a Manager ready to Start.
func NewManager(magic wire.Magic, listenAddr string, maxPeers int, version func() *payload.Version, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		Magic:      magic,
		MaxPeers:   maxPeers,
		ListenAddr: listenAddr,
		Version:    version,
		Log:        log,
		peers:      make(map[string]*peer.Peer),
		events:     make(chan Event, 256),
	}
}

// Events returns the Manager's event channel. Late subscribers may miss
// events emitted before they started reading.
func (m *Manager) Events() <-chan Event { return m.events }

func (m *Manager) emit(e Event) {
	select {
	case m.events <- e:
	default:
		m.Log.Warn("network: event channel full, dropping event", zap.Int("kind", int(e.Kind)))
	}
}

// Start binds the TCP listener and launches the accept loop and
// maintenance task under an errgroup tied to ctx; it returns once the
// listener is bound, with both tasks running in the background.
func (m *Manager) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.ListenAddr)
	if err != nil {
		return fmt.Errorf("network: listen on %s: %w", m.ListenAddr, err)
	}
	m.listener = ln

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.acceptLoop(gctx) })
	g.Go(func() error { return m.maintenanceLoop(gctx) })

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	return nil
}

func (m *Manager) acceptLoop(ctx context.Context) error {
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			m.Log.Warn("network: accept failed", zap.Error(err))
			continue
		}

		if m.atCapacity() {
			m.Log.Warn("network: rejecting inbound connection, at capacity", zap.String("addr", conn.RemoteAddr().String()))
			_ = conn.Close()
			continue
		}

		go m.handleInbound(conn)
	}
}

func (m *Manager) handleInbound(conn net.Conn) {
	p := peer.NewInbound(conn)
	if err := p.Handshake(m.Magic, m.Version()); err != nil {
		m.Log.Warn("network: inbound handshake failed", zap.String("addr", p.Addr.String()), zap.Error(err))
		_ = conn.Close()
		return
	}
	m.register(p)
	m.serve(p)
}

// ConnectToPeer dials addr, runs the outbound handshake, and on success
// registers the peer and starts serving it. It rejects the attempt
// immediately if addr is already connected or the table is at capacity.
func (m *Manager) ConnectToPeer(ctx context.Context, addr string) (*peer.Peer, error) {
	m.mu.RLock()
	_, exists := m.peers[addr]
	count := len(m.peers)
	m.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("network: already connected to %s", addr)
	}
	if count >= m.MaxPeers {
		return nil, fmt.Errorf("network: peer limit reached (%d/%d)", count, m.MaxPeers)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("network: dial %s: %w", addr, err)
	}

	p := peer.NewOutbound(conn)
	if err := p.Handshake(m.Magic, m.Version()); err != nil {
		_ = conn.Close()
		return nil, err
	}

	m.register(p)
	go m.serve(p)
	return p, nil
}

func (m *Manager) register(p *peer.Peer) {
	key := p.Addr.String()
	m.mu.Lock()
	m.peers[key] = p
	m.mu.Unlock()
	m.emit(Event{Kind: EventConnected, Addr: key, Peer: p})
}

// DisconnectPeer removes addr from the table, closes its connection, and
// emits a Disconnected event.
func (m *Manager) DisconnectPeer(addr string) error {
	m.mu.Lock()
	p, ok := m.peers[addr]
	if ok {
		delete(m.peers, addr)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("network: %s is not connected", addr)
	}
	err := p.Close()
	m.emit(Event{Kind: EventDisconnected, Addr: addr})
	return err
}

// SendMessage looks up addr in the table and writes msg to it.
func (m *Manager) SendMessage(addr string, msg *wire.Message) error {
	m.mu.RLock()
	p, ok := m.peers[addr]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("network: %s is not connected", addr)
	}
	return p.Send(msg)
}

// Peers returns a snapshot of the currently connected peer addresses.
func (m *Manager) Peers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.peers))
	for addr := range m.peers {
		out = append(out, addr)
	}
	return out
}

func (m *Manager) atCapacity() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.peers) >= m.MaxPeers
}

// serve reads messages from p until EOF or error, disconnecting it
// afterward. A connection identifier (independent of the handshake-derived
// peer id) is attached to every log line for correlation.
func (m *Manager) serve(p *peer.Peer) {
	connID := uuid.New().String()
	addr := p.Addr.String()
	for {
		msg, err := wire.ReadCompactMessage(p.Reader)
		if err != nil {
			m.Log.Debug("network: peer read ended", zap.String("addr", addr), zap.String("conn", connID), zap.Error(err))
			break
		}
		p.Touch()
		if err := m.validate(msg); err != nil {
			m.emit(Event{Kind: EventConnectionError, Addr: addr, Error: err})
			if isFatalValidationError(err) {
				break
			}
			continue
		}
	}
	_ = m.DisconnectPeer(addr)
}

// validate applies message-shape checks independent of command semantics
// (size bounds are already enforced by ReadCompactMessage's max payload).
func (m *Manager) validate(msg *wire.Message) error {
	if len(msg.Payload) > wire.MaxPayloadSize {
		return fmt.Errorf("message size %d exceeds maximum", len(msg.Payload))
	}
	return nil
}

func isFatalValidationError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, frag := range fatalValidationSubstrings {
		if containsFold(msg, frag) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	sl, subl := []rune(s), []rune(substr)
	toLower := func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}
	for i := range sl {
		sl[i] = toLower(sl[i])
	}
	for i := range subl {
		subl[i] = toLower(subl[i])
	}
	s, substr = string(sl), string(subl)
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func (m *Manager) maintenanceLoop(ctx context.Context) error {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.evictStale()
		}
	}
}

func (m *Manager) evictStale() {
	m.mu.RLock()
	var stale []string
	for addr, p := range m.peers {
		if p.Idle(staleThreshold) {
			stale = append(stale, addr)
		}
	}
	m.mu.RUnlock()

	for _, addr := range stale {
		m.Log.Info("network: evicting stale peer", zap.String("addr", addr))
		_ = m.DisconnectPeer(addr)
	}
}
