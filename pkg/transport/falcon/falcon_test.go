package falcon

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simlink/pkg/protocol"
	"simlink/pkg/transport"
)

type memArea struct {
	data   []byte
	closed bool
}

func (m *memArea) Bytes() []byte { return m.data }
func (m *memArea) Close() error  { m.closed = true; return nil }

func putFloat(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}

func find(recs []protocol.Record, id int) (string, bool) {
	for _, r := range recs {
		if r.ID == id {
			return r.Value, true
		}
	}
	return "", false
}

func TestTransport_ChangedFieldsOnly(t *testing.T) {
	area := &memArea{data: make([]byte, MinAreaSize)}
	putFloat(area.data, offKIAS, 250.4)
	putFloat(area.data, offPitch, float32(math.Pi/2))
	binary.LittleEndian.PutUint32(area.data[offLightBits:], 0x10)

	tr := New(Config{Open: func(string) (Area, error) { return area, nil }})

	first, err := tr.Receive()
	require.NoError(t, err)
	assert.Len(t, first, len(DefaultFields), "first poll publishes everything")

	v, _ := find(first, 2007)
	assert.Equal(t, "250", v)
	v, _ = find(first, 2003)
	assert.Equal(t, "90.0", v)
	v, _ = find(first, 2018)
	assert.Equal(t, "16", v)
	v, _ = find(first, 2001)
	assert.Equal(t, "0.0", v)

	second, err := tr.Receive()
	require.NoError(t, err)
	assert.Empty(t, second)

	putFloat(area.data, offKIAS, 312)
	third, err := tr.Receive()
	require.NoError(t, err)
	assert.Equal(t, []protocol.Record{{ID: 2007, Value: "312"}}, third)
	assert.Equal(t, transport.StateConnected, tr.State())

	require.NoError(t, tr.Close())
	assert.True(t, area.closed)
}

func TestTransport_Unavailable(t *testing.T) {
	attempts := 0
	tr := New(Config{
		Reconnect: time.Hour,
		Open: func(string) (Area, error) {
			attempts++
			return nil, ErrAreaUnavailable
		},
	})

	_, err := tr.Receive()
	assert.ErrorIs(t, err, transport.ErrNotConnected)
	_, err = tr.Receive()
	assert.ErrorIs(t, err, transport.ErrNotConnected)
	assert.Equal(t, 1, attempts, "reconnect attempts are throttled")
	assert.Equal(t, transport.StateDisconnected, tr.State())
}

func TestTransport_SendDropped(t *testing.T) {
	tr := New(Config{Open: func(string) (Area, error) { return &memArea{data: make([]byte, MinAreaSize)}, nil }})
	require.NoError(t, tr.Send("C1,3001,1"))
	require.NoError(t, tr.Send("C1,3001,0"))
	require.NoError(t, tr.Flush())
	assert.Equal(t, uint64(2), tr.Stats().Dropped)

	require.NoError(t, tr.Close())
	assert.True(t, errors.Is(tr.Send("C1,1,1"), transport.ErrClosed))
}

func TestOpenArea_File(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("named mappings are not files on windows")
	}
	path := filepath.Join(t.TempDir(), "FlightData")
	data := make([]byte, MinAreaSize)
	putFloat(data, offRPM, 98.5)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	area, err := OpenArea(path)
	require.NoError(t, err)
	defer area.Close()

	v, ok := Field{Offset: offRPM}.read(area.Bytes())
	require.True(t, ok)
	assert.InDelta(t, 98.5, v, 1e-6)

	_, err = OpenArea(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrAreaUnavailable)
}
