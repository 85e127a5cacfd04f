// Package protocol implements the ID=VALUE wire format exchanged with the
// simulator export script.
package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMissingSeparator is reported for a record without '='.
	ErrMissingSeparator = errors.New("record has no '=' separator")
	// ErrBadID is reported for a record whose ID is not an integer.
	ErrBadID = errors.New("record id is not an integer")
)

// Record is one exported value.
type Record struct {
	ID    int
	Value string
}

func (r Record) String() string {
	return strconv.Itoa(r.ID) + "=" + r.Value
}

// MalformedError describes one dropped line of a packet.
type MalformedError struct {
	Line string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed record %q: %v", e.Line, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Decode splits a packet into records. Records keep their order within the
// packet; blank lines are skipped and malformed lines are returned as errors
// without affecting the rest of the packet.
func Decode(packet []byte) ([]Record, []error) {
	var records []Record
	var errs []error

	for _, raw := range bytes.Split(packet, []byte{'\n'}) {
		line := strings.TrimRight(string(raw), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

// ParseRecord parses a single ID=VALUE line. Everything after the first '='
// is the value, so text values may themselves contain '='.
func ParseRecord(line string) (Record, error) {
	idStr, value, ok := strings.Cut(line, "=")
	if !ok {
		return Record{}, &MalformedError{Line: line, Err: ErrMissingSeparator}
	}
	id, err := strconv.Atoi(strings.TrimSpace(idStr))
	if err != nil {
		return Record{}, &MalformedError{Line: line, Err: ErrBadID}
	}
	return Record{ID: id, Value: value}, nil
}

// Encode renders records as newline-terminated lines.
func Encode(records []Record) []byte {
	var b bytes.Buffer
	for _, r := range records {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// FormatCommand renders an outbound command in the C<device>,<command>,<value>
// form understood by the export script.
func FormatCommand(device, command int, value string) string {
	return "C" + strconv.Itoa(device) + "," + strconv.Itoa(command) + "," + value
}

// ParseCommand is the inverse of FormatCommand.
func ParseCommand(s string) (device, command int, value string, err error) {
	if !strings.HasPrefix(s, "C") {
		return 0, 0, "", fmt.Errorf("command %q: missing C prefix", s)
	}
	parts := strings.SplitN(s[1:], ",", 3)
	if len(parts) != 3 {
		return 0, 0, "", fmt.Errorf("command %q: want 3 fields, got %d", s, len(parts))
	}
	if device, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, "", fmt.Errorf("command %q: bad device: %w", s, err)
	}
	if command, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, "", fmt.Errorf("command %q: bad command: %w", s, err)
	}
	return device, command, parts[2], nil
}

// Pack joins commands into newline-delimited packets no larger than maxSize
// bytes. A single command longer than maxSize gets a packet of its own.
func Pack(commands []string, maxSize int) [][]byte {
	if len(commands) == 0 {
		return nil
	}
	var packets [][]byte
	var cur bytes.Buffer
	for _, c := range commands {
		if cur.Len() > 0 && maxSize > 0 && cur.Len()+len(c)+1 > maxSize {
			packets = append(packets, bytes.Clone(cur.Bytes()))
			cur.Reset()
		}
		cur.WriteString(c)
		cur.WriteByte('\n')
	}
	if cur.Len() > 0 {
		packets = append(packets, bytes.Clone(cur.Bytes()))
	}
	return packets
}
