// Package transport provides the links that carry exported records from the
// simulator and commands back to it.
package transport

import (
	"errors"

	"simlink/pkg/protocol"
)

var (
	// ErrNotConnected is returned when the link to the simulator is down.
	ErrNotConnected = errors.New("interface not connected")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("transport closed")
)

// State represents the link state of a transport.
type State string

const (
	// StateDisconnected indicates no link to the simulator.
	StateDisconnected State = "disconnected"
	// StateConnected indicates records have been seen on the link.
	StateConnected State = "connected"
)

// Transport moves records and commands between the process and the simulator.
type Transport interface {
	// Receive returns the records that arrived since the previous call. It
	// never blocks. Malformed records are dropped and logged.
	Receive() ([]protocol.Record, error)
	// Send appends a command to the outgoing buffer.
	Send(command string) error
	// Flush writes the outgoing buffer to the simulator.
	Flush() error
	// State returns the current link state.
	State() State
	// Close releases the underlying socket or mapping.
	Close() error
}

// Stats counts link traffic.
type Stats struct {
	RecordsIn   uint64 `json:"records_in"`
	CommandsOut uint64 `json:"commands_out"`
	Malformed   uint64 `json:"malformed"`
	Dropped     uint64 `json:"dropped"`
}

// StatsReporter is implemented by transports that count traffic.
type StatsReporter interface {
	Stats() Stats
}
