package transport

import (
	"log/slog"
	"sync"

	"simlink/pkg/protocol"
)

// Loopback is an in-memory transport. Packets pushed with Inject are
// returned by Receive; flushed commands are kept for inspection.
type Loopback struct {
	mu        sync.Mutex
	inbound   []protocol.Record
	pending   []string
	flushed   [][]string
	connected bool
	closed    bool
	stats     Stats
	logger    *slog.Logger
}

// NewLoopback creates a connected loopback transport.
func NewLoopback() *Loopback {
	return &Loopback{
		connected: true,
		logger:    slog.Default().With("component", "loopback"),
	}
}

// Inject decodes a packet as if it had arrived from the simulator.
func (l *Loopback) Inject(packet []byte) {
	records, errs := protocol.Decode(packet)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, err := range errs {
		l.logger.Warn("Dropping malformed record", "error", err)
	}
	l.stats.Malformed += uint64(len(errs))
	l.inbound = append(l.inbound, records...)
}

// SetConnected toggles the simulated link state.
func (l *Loopback) SetConnected(up bool) {
	l.mu.Lock()
	l.connected = up
	l.mu.Unlock()
}

// Receive drains the injected records.
func (l *Loopback) Receive() ([]protocol.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	if !l.connected {
		return nil, ErrNotConnected
	}
	out := l.inbound
	l.inbound = nil
	l.stats.RecordsIn += uint64(len(out))
	return out, nil
}

// Send buffers a command.
func (l *Loopback) Send(command string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.pending = append(l.pending, command)
	return nil
}

// Flush moves buffered commands to the flushed log. An empty buffer is not
// recorded.
func (l *Loopback) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if !l.connected {
		return ErrNotConnected
	}
	if len(l.pending) == 0 {
		return nil
	}
	l.flushed = append(l.flushed, l.pending)
	l.stats.CommandsOut += uint64(len(l.pending))
	l.pending = nil
	return nil
}

// Flushed returns one entry per non-empty flush.
func (l *Loopback) Flushed() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]string, len(l.flushed))
	copy(out, l.flushed)
	return out
}

// State returns the simulated link state.
func (l *Loopback) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.connected && !l.closed {
		return StateConnected
	}
	return StateDisconnected
}

// Stats returns traffic counters.
func (l *Loopback) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Close marks the transport closed.
func (l *Loopback) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}
