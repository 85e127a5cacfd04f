package transport

import (
	"errors"
	"testing"

	"simlink/pkg/protocol"
)

func TestLoopback_ReceiveDrains(t *testing.T) {
	l := NewLoopback()
	l.Inject([]byte("12=1.0\nbroken\n30=0.5\n"))

	got, err := l.Receive()
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	want := []protocol.Record{{ID: 12, Value: "1.0"}, {ID: 30, Value: "0.5"}}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %v, want %v", i, got[i], want[i])
		}
	}

	again, _ := l.Receive()
	if len(again) != 0 {
		t.Errorf("second Receive returned %d records", len(again))
	}

	s := l.Stats()
	if s.RecordsIn != 2 || s.Malformed != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestLoopback_FlushBatches(t *testing.T) {
	l := NewLoopback()
	_ = l.Send("C1,3001,1.0")
	_ = l.Send("C1,3002,0.0")
	if err := l.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := l.Flush(); err != nil {
		t.Fatal(err)
	}

	flushed := l.Flushed()
	if len(flushed) != 1 || len(flushed[0]) != 2 {
		t.Fatalf("flushed = %v", flushed)
	}
}

func TestLoopback_LinkDown(t *testing.T) {
	l := NewLoopback()
	l.SetConnected(false)

	if _, err := l.Receive(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Receive err = %v", err)
	}
	if err := l.Flush(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Flush err = %v", err)
	}
	if l.State() != StateDisconnected {
		t.Errorf("state = %s", l.State())
	}

	_ = l.Close()
	if err := l.Send("C1,1,1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after close err = %v", err)
	}
}
