// Package session runs the synchronization loop between one transport and
// one function table.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"simlink/pkg/functable"
	"simlink/pkg/netfunc"
	"simlink/pkg/transport"
)

var (
	// ErrClosed is returned by Tick and Enqueue after Close.
	ErrClosed = errors.New("session closed")
	// ErrQueueFull is returned by Enqueue when MaxQueue actions are pending.
	ErrQueueFull = errors.New("action queue full")
)

const (
	// MaxQueue bounds the actions waiting for the next tick.
	MaxQueue = 256
	// maxDiagnostics bounds the diagnostics kept for the status report.
	maxDiagnostics = 200
)

// Sink receives the values that changed during a tick.
type Sink interface {
	Publish(sessionID string, updates []functable.Update)
}

// Request is a cockpit action addressed to a function by name or export ID.
// ID is used when non-zero.
type Request struct {
	Function string
	ID       int
	Action   netfunc.Action
}

// Status is the session report surfaced to the enclosing application.
type Status struct {
	SessionID   string                 `json:"session_id"`
	Interface   string                 `json:"interface"`
	State       transport.State        `json:"state"`
	Connected   bool                   `json:"connected"`
	Ticks       uint64                 `json:"ticks"`
	RecordsIn   uint64                 `json:"records_in"`
	CommandsOut uint64                 `json:"commands_out"`
	Dropped     uint64                 `json:"dropped"`
	Functions   int                    `json:"functions"`
	Diagnostics []functable.Diagnostic `json:"diagnostics"`
	LastError   string                 `json:"last_error,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
}

// Option configures a Session.
type Option func(*Session)

// WithSink publishes changed values after every tick.
func WithSink(s Sink) Option {
	return func(sess *Session) { sess.sink = s }
}

// WithTrafficLogger logs every inbound record and outbound command to l.
func WithTrafficLogger(l *slog.Logger) Option {
	return func(sess *Session) { sess.traffic = l }
}

// WithDiagnostics seeds the status report with attach-time diagnostics.
func WithDiagnostics(d []functable.Diagnostic) Option {
	return func(sess *Session) { sess.diagnostics = append(sess.diagnostics, d...) }
}

// Session owns one transport and one function table. The table is mutated
// only by Tick; other goroutines hand it work through Enqueue.
type Session struct {
	id      string
	name    string
	tr      transport.Transport
	table   *functable.Table
	sink    Sink
	logger  *slog.Logger
	traffic *slog.Logger

	// tickMu serializes Tick and table reads.
	tickMu sync.Mutex

	mu          sync.Mutex
	queue       []Request
	connected   bool
	closed      bool
	ticks       uint64
	recordsIn   uint64
	commandsOut uint64
	dropped     uint64
	diagnostics []functable.Diagnostic
	lastErr     error
	startedAt   time.Time
}

// New attaches a table to a transport.
func New(name string, tr transport.Transport, table *functable.Table, opts ...Option) *Session {
	id := uuid.New().String()
	s := &Session{
		id:        id,
		name:      name,
		tr:        tr,
		table:     table,
		logger:    slog.Default().With("component", "session", "interface", name, "session", id[:8]),
		startedAt: time.Now(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Name returns the interface name.
func (s *Session) Name() string { return s.name }

// Enqueue queues an action for the next tick.
func (s *Session) Enqueue(r Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.queue) >= MaxQueue {
		return ErrQueueFull
	}
	s.queue = append(s.queue, r)
	return nil
}

// Run ticks at the given interval until ctx is cancelled.
func (s *Session) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Session started", "interval", interval, "functions", s.table.Len())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Session stopped")
			return
		case <-ticker.C:
			if err := s.Tick(); errors.Is(err, ErrClosed) {
				return
			}
		}
	}
}

// Tick runs one synchronization cycle: receive, dispatch, drain queued
// actions, flush. While the link is down nothing is sent and queued actions
// are discarded, so clicks made against a dead simulator are never replayed.
func (s *Session) Tick() error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.ticks++
	s.mu.Unlock()

	records, err := s.tr.Receive()
	if err != nil {
		s.setLink(false, err)
		s.discardQueue(err)
		return nil
	}
	s.setLink(true, nil)

	for _, r := range records {
		if s.traffic != nil {
			s.traffic.Info("in", "id", r.ID, "value", r.Value)
		}
		s.table.OnRecord(r.ID, r.Value)
	}

	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.recordsIn += uint64(len(records))
	s.mu.Unlock()

	var sent uint64
	for _, req := range queue {
		cmds, err := s.perform(req)
		if err != nil {
			s.logger.Warn("Action rejected", "function", req.Function, "id", req.ID, "error", err)
			s.addDiagnostic(functable.Diagnostic{Severity: functable.SeverityWarning, ID: req.ID, Message: err.Error()})
			continue
		}
		for _, c := range cmds {
			if s.traffic != nil {
				s.traffic.Info("out", "command", c)
			}
			if err := s.tr.Send(c); err != nil {
				s.logger.Warn("Send failed", "command", c, "error", err)
				s.mu.Lock()
				s.dropped++
				s.mu.Unlock()
				continue
			}
			sent++
		}
	}

	if err := s.tr.Flush(); err != nil {
		s.logger.Debug("Flush failed", "error", err)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.commandsOut += sent
	s.mu.Unlock()

	if updates := s.table.Changed(); len(updates) > 0 && s.sink != nil {
		s.sink.Publish(s.id, updates)
	}
	return nil
}

func (s *Session) perform(r Request) ([]string, error) {
	if r.Action == nil {
		return nil, fmt.Errorf("%w: empty action", netfunc.ErrUnsupportedAction)
	}
	if r.ID != 0 {
		return s.table.OnIDAction(r.ID, r.Action)
	}
	return s.table.OnNamedAction(r.Function, r.Action)
}

// discardQueue drops the pending actions and reports them as one diagnostic.
func (s *Session) discardQueue(cause error) {
	s.mu.Lock()
	n := len(s.queue)
	s.queue = nil
	s.dropped += uint64(n)
	s.mu.Unlock()
	if n == 0 {
		return
	}
	s.logger.Warn("Actions discarded while not connected", "count", n, "error", cause)
	s.addDiagnostic(functable.Diagnostic{
		Severity: functable.SeverityWarning,
		Message:  fmt.Sprintf("%d action(s) discarded: %v", n, cause),
	})
}

func (s *Session) setLink(up bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
	}
	if up == s.connected {
		return
	}
	s.connected = up
	if up {
		s.logger.Info("Interface connected")
	} else {
		s.logger.Info("Interface not connected", "error", err)
	}
}

func (s *Session) addDiagnostic(d functable.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = append(s.diagnostics, d)
	if n := len(s.diagnostics); n > maxDiagnostics {
		s.diagnostics = append([]functable.Diagnostic(nil), s.diagnostics[n-maxDiagnostics:]...)
	}
}

// Snapshot returns every exported value.
func (s *Session) Snapshot() []functable.Update {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.table.Snapshot()
}

// Status returns the current report.
func (s *Session) Status() Status {
	state := s.tr.State()

	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		SessionID:   s.id,
		Interface:   s.name,
		State:       state,
		Connected:   s.connected,
		Ticks:       s.ticks,
		RecordsIn:   s.recordsIn,
		CommandsOut: s.commandsOut,
		Dropped:     s.dropped,
		Functions:   s.table.Len(),
		Diagnostics: append([]functable.Diagnostic(nil), s.diagnostics...),
		StartedAt:   s.startedAt,
	}
	if sr, ok := s.tr.(transport.StatsReporter); ok {
		st.Dropped += sr.Stats().Dropped
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Close detaches the session and releases the transport.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	s.logger.Info("Session detached")
	return s.tr.Close()
}
