package session

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simlink/pkg/catalog"
	"simlink/pkg/functable"
	"simlink/pkg/netfunc"
	"simlink/pkg/transport"
)

type recordingSink struct {
	mu      sync.Mutex
	updates []functable.Update
}

func (r *recordingSink) Publish(_ string, u []functable.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u...)
}

func (r *recordingSink) all() []functable.Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]functable.Update(nil), r.updates...)
}

func newTable(t *testing.T) (*functable.Table, *netfunc.Switch) {
	t.Helper()
	ref := catalog.Ref{Device: 1, Command: 3001}
	bat := netfunc.MustSwitch(12, "Battery", 1, []netfunc.SwitchPosition{
		{Value: "0.0", Label: "OFF", Press: ref},
		{Value: "1.0", Label: "ON", Press: ref},
	})
	tbl := functable.New()
	require.NoError(t, tbl.Register(bat))
	require.NoError(t, tbl.Register(netfunc.NewPushButton(50, "Boost", catalog.Ref{Device: 2, Command: 3002})))
	return tbl, bat
}

func TestTick_ReceiveDispatchFlush(t *testing.T) {
	tbl, bat := newTable(t)
	lb := transport.NewLoopback()
	sink := &recordingSink{}
	s := New("test", lb, tbl, WithSink(sink))

	lb.Inject([]byte("12=1.0\n999=7\n"))
	require.NoError(t, s.Enqueue(Request{Function: "Boost", Action: netfunc.Press{}}))
	require.NoError(t, s.Enqueue(Request{ID: 50, Action: netfunc.Release{}}))
	require.NoError(t, s.Tick())

	assert.Equal(t, 1, bat.Current())
	assert.Equal(t, [][]string{{"C2,3002,1", "C2,3002,0"}}, lb.Flushed(), "one flush per tick")
	assert.Equal(t, []functable.Update{{ID: 12, Value: "1.0", Function: "Battery"}}, sink.all())

	st := s.Status()
	assert.True(t, st.Connected)
	assert.Equal(t, uint64(1), st.Ticks)
	assert.Equal(t, uint64(2), st.RecordsIn)
	assert.Equal(t, uint64(2), st.CommandsOut)
	assert.NotEmpty(t, st.SessionID)
}

func TestTick_LinkDown(t *testing.T) {
	tbl, _ := newTable(t)
	lb := transport.NewLoopback()
	lb.SetConnected(false)
	s := New("test", lb, tbl)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Enqueue(Request{Function: "Boost", Action: netfunc.Press{}}))
	}
	require.NoError(t, s.Enqueue(Request{Function: "Battery", Action: netfunc.SetPosition{Index: 1}}))
	require.NoError(t, s.Tick())
	assert.Empty(t, lb.Flushed())

	st := s.Status()
	assert.False(t, st.Connected)
	assert.Contains(t, st.LastError, "not connected")
	assert.Equal(t, uint64(11), st.Dropped)
	require.Len(t, st.Diagnostics, 1)
	assert.Equal(t, functable.SeverityWarning, st.Diagnostics[0].Severity)
	assert.Contains(t, st.Diagnostics[0].Message, "11 action(s) discarded")

	// Nothing queued while disconnected is replayed on reconnect.
	lb.SetConnected(true)
	require.NoError(t, s.Tick())
	assert.Empty(t, lb.Flushed())

	require.NoError(t, s.Enqueue(Request{Function: "Battery", Action: netfunc.SetPosition{Index: 1}}))
	require.NoError(t, s.Tick())
	assert.Equal(t, [][]string{{"C1,3001,1.0"}}, lb.Flushed())
}

func TestEnqueue_QueueFull(t *testing.T) {
	tbl, _ := newTable(t)
	lb := transport.NewLoopback()
	s := New("test", lb, tbl)

	for i := 0; i < MaxQueue; i++ {
		require.NoError(t, s.Enqueue(Request{Function: "Boost", Action: netfunc.Press{}}))
	}
	assert.ErrorIs(t, s.Enqueue(Request{Function: "Boost", Action: netfunc.Press{}}), ErrQueueFull)

	// A tick drains the queue and makes room again.
	require.NoError(t, s.Tick())
	require.Len(t, lb.Flushed(), 1)
	assert.Len(t, lb.Flushed()[0], MaxQueue)
	assert.NoError(t, s.Enqueue(Request{Function: "Boost", Action: netfunc.Release{}}))
}

func TestTick_OversizedRotation(t *testing.T) {
	tbl, _ := newTable(t)
	require.NoError(t, tbl.Register(netfunc.NewRotaryEncoder(60, "Volume", catalog.Ref{Device: 3, Command: 3001}, 0.05)))
	lb := transport.NewLoopback()
	s := New("test", lb, tbl)

	for _, detents := range []int{math.MinInt, math.MaxInt, netfunc.MaxDetents + 1} {
		require.NoError(t, s.Enqueue(Request{ID: 60, Action: netfunc.Rotate{Detents: detents}}))
	}
	require.NotPanics(t, func() { require.NoError(t, s.Tick()) })

	st := s.Status()
	assert.Zero(t, st.CommandsOut)
	require.Len(t, st.Diagnostics, 3)
	for _, d := range st.Diagnostics {
		assert.Contains(t, d.Message, "detents out of range")
	}
}

func TestTick_RejectedAction(t *testing.T) {
	tbl, _ := newTable(t)
	lb := transport.NewLoopback()
	s := New("test", lb, tbl, WithDiagnostics([]functable.Diagnostic{{Severity: functable.SeverityInfo, Message: "attached"}}))

	require.NoError(t, s.Enqueue(Request{Function: "Battery", Action: netfunc.Press{}}))
	require.NoError(t, s.Tick())

	diags := s.Status().Diagnostics
	require.Len(t, diags, 2)
	assert.Equal(t, functable.SeverityWarning, diags[1].Severity)
}

func TestRun_StopsOnCancel(t *testing.T) {
	tbl, _ := newTable(t)
	lb := transport.NewLoopback()
	s := New("test", lb, tbl)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Status().Ticks >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClose(t *testing.T) {
	tbl, _ := newTable(t)
	lb := transport.NewLoopback()
	s := New("test", lb, tbl)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Tick(), ErrClosed)
	assert.ErrorIs(t, s.Enqueue(Request{ID: 12, Action: netfunc.SetPosition{}}), ErrClosed)
	assert.Equal(t, transport.StateDisconnected, lb.State())
}
