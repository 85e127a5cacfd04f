// Package falcon implements the read-only shared-memory link to Falcon BMS.
//
// Falcon publishes its flight model in a mapped FlightData block instead of
// exporting records over the network. The transport polls that block on
// every Receive and turns changed members into records, so the rest of the
// pipeline sees the same ID=VALUE stream it gets from DCS.
package falcon

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"simlink/pkg/netfunc"
	"simlink/pkg/protocol"
	"simlink/pkg/transport"
)

// ErrAreaUnavailable is returned by OpenArea when Falcon is not running.
var ErrAreaUnavailable = errors.New("shared memory area unavailable")

// Area is a mapped shared-memory block.
type Area interface {
	Bytes() []byte
	Close() error
}

// Config configures a Falcon transport.
type Config struct {
	Area      string        // Area name (Windows) or path of the backing file
	Fields    []Field       // Exported members; DefaultFields when nil
	Reconnect time.Duration // Minimum delay between attempts to map the area
	Open      func(name string) (Area, error)
}

// Transport polls the Falcon flight data area.
type Transport struct {
	cfg    Config
	logger *slog.Logger

	mu          sync.Mutex
	area        Area
	last        map[int]string
	lastAttempt time.Time
	warnedSend  bool
	closed      bool
	stats       transport.Stats
}

// New creates a transport. The area is mapped lazily by Receive, so Falcon
// may start after the transport.
func New(cfg Config) *Transport {
	if cfg.Area == "" {
		cfg.Area = AreaName
	}
	if cfg.Fields == nil {
		cfg.Fields = DefaultFields
	}
	if cfg.Reconnect <= 0 {
		cfg.Reconnect = 5 * time.Second
	}
	if cfg.Open == nil {
		cfg.Open = OpenArea
	}
	return &Transport{
		cfg:    cfg,
		logger: slog.Default().With("component", "falcon"),
		last:   make(map[int]string),
	}
}

// Receive maps the area if needed and returns a record for every field
// whose formatted value changed since the previous poll.
func (t *Transport) Receive() ([]protocol.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, transport.ErrClosed
	}
	if t.area == nil {
		if err := t.connect(); err != nil {
			return nil, err
		}
	}

	data := t.area.Bytes()
	if len(data) < MinAreaSize {
		t.logger.Warn("Flight data area too small, remapping", "size", len(data), "want", MinAreaSize)
		t.disconnect()
		return nil, transport.ErrNotConnected
	}

	var records []protocol.Record
	for _, f := range t.cfg.Fields {
		v, ok := f.read(data)
		if !ok {
			t.stats.Malformed++
			continue
		}
		val := formatField(f, v)
		if prev, seen := t.last[f.ID]; seen && prev == val {
			continue
		}
		t.last[f.ID] = val
		records = append(records, protocol.Record{ID: f.ID, Value: val})
	}
	t.stats.RecordsIn += uint64(len(records))
	return records, nil
}

// connect must be called with mu held.
func (t *Transport) connect() error {
	if time.Since(t.lastAttempt) < t.cfg.Reconnect {
		return transport.ErrNotConnected
	}
	t.lastAttempt = time.Now()

	area, err := t.cfg.Open(t.cfg.Area)
	if err != nil {
		t.logger.Debug("Flight data area not mapped", "area", t.cfg.Area, "error", err)
		return fmt.Errorf("%w: %v", transport.ErrNotConnected, err)
	}
	t.area = area
	t.last = make(map[int]string)
	t.logger.Info("Mapped flight data area", "area", t.cfg.Area, "size", len(area.Bytes()))
	return nil
}

// disconnect must be called with mu held.
func (t *Transport) disconnect() {
	if t.area == nil {
		return
	}
	if err := t.area.Close(); err != nil {
		t.logger.Warn("Failed to unmap flight data area", "error", err)
	}
	t.area = nil
}

func formatField(f Field, v float64) string {
	if f.Kind == Int32 {
		return fmt.Sprintf("%d", int64(v))
	}
	format := f.Format
	if format == "" {
		format = netfunc.FormatDefault
	}
	s := netfunc.FormatValue(format, v)
	// Avoid flapping between "-0" and "0" around zero.
	if strings.HasPrefix(s, "-") && strings.Trim(s, "-0.") == "" {
		s = s[1:]
	}
	return s
}

// Send drops the command. Falcon accepts no commands over shared memory;
// the first drop is logged.
func (t *Transport) Send(command string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return transport.ErrClosed
	}
	t.stats.Dropped++
	if !t.warnedSend {
		t.warnedSend = true
		t.logger.Warn("Falcon link is read-only, dropping commands", "first", command)
	}
	return nil
}

// Flush is a no-op.
func (t *Transport) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return transport.ErrClosed
	}
	return nil
}

// State reports whether the area is mapped.
func (t *Transport) State() transport.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.area != nil {
		return transport.StateConnected
	}
	return transport.StateDisconnected
}

// Stats returns traffic counters.
func (t *Transport) Stats() transport.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Close unmaps the area.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.disconnect()
	return nil
}
