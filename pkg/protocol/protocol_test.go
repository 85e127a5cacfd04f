package protocol

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		packet    string
		want      []Record
		malformed int
	}{
		{
			name:   "SingleRecord",
			packet: "12=1.0\n",
			want:   []Record{{ID: 12, Value: "1.0"}},
		},
		{
			name:   "OrderPreserved",
			packet: "3=0.5\n1=0\r\n2=ABC\n",
			want:   []Record{{ID: 3, Value: "0.5"}, {ID: 1, Value: "0"}, {ID: 2, Value: "ABC"}},
		},
		{
			name:      "MalformedDropped",
			packet:    "garbage\n5=1\nx=2\n",
			want:      []Record{{ID: 5, Value: "1"}},
			malformed: 2,
		},
		{
			name:   "TextValueWithEquals",
			packet: "2010=A=B\n",
			want:   []Record{{ID: 2010, Value: "A=B"}},
		},
		{
			name:   "BlankLines",
			packet: "\n\n7=1\n\n",
			want:   []Record{{ID: 7, Value: "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := Decode([]byte(tt.packet))
			if len(errs) != tt.malformed {
				t.Errorf("malformed: got %d, want %d (%v)", len(errs), tt.malformed, errs)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("records: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("record %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseRecord_Errors(t *testing.T) {
	if _, err := ParseRecord("12"); !errors.Is(err, ErrMissingSeparator) {
		t.Errorf("expected ErrMissingSeparator, got %v", err)
	}
	if _, err := ParseRecord("a=1"); !errors.Is(err, ErrBadID) {
		t.Errorf("expected ErrBadID, got %v", err)
	}
}

func TestCommandRoundTrip(t *testing.T) {
	s := FormatCommand(1, 3001, "1.0")
	if s != "C1,3001,1.0" {
		t.Fatalf("FormatCommand: got %q", s)
	}
	dev, cmd, val, err := ParseCommand(s)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if dev != 1 || cmd != 3001 || val != "1.0" {
		t.Errorf("ParseCommand: got %d %d %q", dev, cmd, val)
	}
	if _, _, _, err := ParseCommand("X1,2,3"); err == nil {
		t.Error("expected error for missing prefix")
	}
}

func TestPack(t *testing.T) {
	cmds := []string{"C1,3001,1", "C1,3002,0", "C2,3001,0.5"}

	all := Pack(cmds, 1400)
	if len(all) != 1 {
		t.Fatalf("expected one packet, got %d", len(all))
	}
	if string(all[0]) != "C1,3001,1\nC1,3002,0\nC2,3001,0.5\n" {
		t.Errorf("unexpected packet %q", all[0])
	}

	split := Pack(cmds, 15)
	if len(split) != 3 {
		t.Errorf("expected 3 packets, got %d", len(split))
	}

	if Pack(nil, 100) != nil {
		t.Error("expected no packets for no commands")
	}
}
