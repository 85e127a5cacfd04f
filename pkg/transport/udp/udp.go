// Package udp implements the DCS export link over UDP.
package udp

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"simlink/pkg/logging"
	"simlink/pkg/protocol"
	"simlink/pkg/transport"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultMaxPacket = 1400
	DefaultQueue     = 256
	DefaultTimeout   = 3 * time.Second
)

// Config configures a UDP transport.
type Config struct {
	Listen    string        // Local address the export script sends to, e.g. ":9089"
	Remote    string        // Simulator address commands go to; empty replies to the last peer
	MaxPacket int           // Largest outbound datagram
	Queue     int           // Inbound packets buffered between ticks
	Timeout   time.Duration // Silence after which the link is considered down
}

// Transport is a UDP link. A background reader feeds decoded packets into a
// bounded queue that Receive drains without blocking.
type Transport struct {
	cfg    Config
	conn   *net.UDPConn
	remote *net.UDPAddr
	logger *slog.Logger

	packets chan []byte
	done    chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex
	peer     *net.UDPAddr
	lastSeen time.Time
	pending  []string
	stats    transport.Stats
	state    transport.State
	closed   bool
	readErr  error
}

// Open binds the listen address and starts the reader.
func Open(cfg Config) (*Transport, error) {
	if cfg.MaxPacket <= 0 {
		cfg.MaxPacket = DefaultMaxPacket
	}
	if cfg.Queue <= 0 {
		cfg.Queue = DefaultQueue
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	laddr, err := net.ResolveUDPAddr("udp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("resolve listen address %q: %w", cfg.Listen, err)
	}
	var raddr *net.UDPAddr
	if cfg.Remote != "" {
		raddr, err = net.ResolveUDPAddr("udp", cfg.Remote)
		if err != nil {
			return nil, fmt.Errorf("resolve remote address %q: %w", cfg.Remote, err)
		}
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Listen, err)
	}

	t := &Transport{
		cfg:     cfg,
		conn:    conn,
		remote:  raddr,
		logger:  slog.Default().With("component", "udp"),
		packets: make(chan []byte, cfg.Queue),
		done:    make(chan struct{}),
		state:   transport.StateDisconnected,
	}
	t.wg.Add(1)
	go t.readLoop()

	t.logger.Info("Listening for simulator", "listen", conn.LocalAddr().String(), "remote", cfg.Remote)
	return t, nil
}

// LocalAddr returns the bound address.
func (t *Transport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *Transport) readLoop() {
	defer t.wg.Done()
	buf := make([]byte, 64*1024)
	for {
		n, addr, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-t.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				t.mu.Lock()
				t.readErr = err
				t.mu.Unlock()
				return
			}
			t.logger.Debug("Read failed", "error", err)
			continue
		}

		logging.Trace(t.logger, "Packet received", "bytes", n, "from", addr.String())

		t.mu.Lock()
		t.peer = addr
		t.lastSeen = time.Now()
		t.mu.Unlock()

		packet := make([]byte, n)
		copy(packet, buf[:n])
		select {
		case t.packets <- packet:
		default:
			t.mu.Lock()
			t.stats.Dropped++
			t.mu.Unlock()
			t.logger.Warn("Inbound queue full, dropping packet", "bytes", n)
		}
	}
}

// Receive drains queued packets and decodes them in arrival order. Until the
// simulator has sent something within Timeout it returns ErrNotConnected.
func (t *Transport) Receive() ([]protocol.Record, error) {
	t.mu.Lock()
	closed, readErr := t.closed, t.readErr
	t.mu.Unlock()
	if closed {
		return nil, transport.ErrClosed
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrNotConnected, readErr)
	}

	var records []protocol.Record
	var malformed int
	for {
		select {
		case p := <-t.packets:
			recs, errs := protocol.Decode(p)
			records = append(records, recs...)
			for _, err := range errs {
				t.logger.Warn("Dropping malformed record", "error", err)
			}
			malformed += len(errs)
			continue
		default:
		}
		break
	}

	t.mu.Lock()
	t.stats.RecordsIn += uint64(len(records))
	t.stats.Malformed += uint64(malformed)
	t.updateState()
	state := t.state
	t.mu.Unlock()
	if state != transport.StateConnected && len(records) == 0 {
		return nil, transport.ErrNotConnected
	}
	return records, nil
}

// updateState must be called with mu held.
func (t *Transport) updateState() {
	next := transport.StateDisconnected
	if !t.lastSeen.IsZero() && time.Since(t.lastSeen) < t.cfg.Timeout {
		next = transport.StateConnected
	}
	if next != t.state {
		t.logger.Info("Link state changed", "from", t.state, "to", next)
		t.state = next
	}
}

// Send buffers a command for the next Flush.
func (t *Transport) Send(command string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return transport.ErrClosed
	}
	t.pending = append(t.pending, command)
	return nil
}

// Flush packs buffered commands into as few datagrams as fit MaxPacket and
// sends them to the simulator. With no configured remote, the last peer
// that sent records is used; before any peer is known the buffer is kept
// and ErrNotConnected is returned.
func (t *Transport) Flush() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return transport.ErrClosed
	}
	if len(t.pending) == 0 {
		t.mu.Unlock()
		return nil
	}
	dest := t.remote
	if dest == nil {
		dest = t.peer
	}
	if dest == nil {
		t.mu.Unlock()
		return transport.ErrNotConnected
	}
	cmds := t.pending
	t.pending = nil
	t.mu.Unlock()

	sent := 0
	for _, p := range protocol.Pack(cmds, t.cfg.MaxPacket) {
		if _, err := t.conn.WriteToUDP(p, dest); err != nil {
			return fmt.Errorf("%w: write %s: %v", transport.ErrNotConnected, dest, err)
		}
		sent++
	}

	t.mu.Lock()
	t.stats.CommandsOut += uint64(len(cmds))
	t.mu.Unlock()
	t.logger.Debug("Flushed commands", "commands", len(cmds), "packets", sent)
	return nil
}

// State returns the link state as of the last Receive.
func (t *Transport) State() transport.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Stats returns traffic counters.
func (t *Transport) Stats() transport.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Close stops the reader and releases the socket.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	close(t.done)
	err := t.conn.Close()
	t.wg.Wait()
	return err
}
