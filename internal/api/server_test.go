package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simlink/pkg/catalog"
	"simlink/pkg/functable"
	"simlink/pkg/netfunc"
	"simlink/pkg/session"
	"simlink/pkg/transport"
)

type fakeSource struct{ sess *session.Session }

func (f *fakeSource) Session() (*session.Session, bool) { return f.sess, f.sess != nil }

func newTestSession(t *testing.T) (*session.Session, *transport.Loopback) {
	t.Helper()
	bat := catalog.Ref{Device: 1, Command: 3001}
	tbl := functable.New()
	require.NoError(t, tbl.Register(netfunc.MustSwitch(12, "Battery", 1, []netfunc.SwitchPosition{
		{Value: "0.0", Label: "OFF", Press: bat},
		{Value: "1.0", Label: "ON", Press: bat},
	})))
	lb := transport.NewLoopback()
	return session.New("test", lb, tbl), lb
}

func newTestServer(t *testing.T, src SessionSource) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(src)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(NewServer("", hub, src, func() {}).Handler)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func TestServer_Detached(t *testing.T) {
	_, srv := newTestServer(t, &fakeSource{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body := strings.NewReader(`{"function":"Battery","action":"press"}`)
	resp, err = http.Post(srv.URL+"/api/action", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_StatusAndAction(t *testing.T) {
	sess, lb := newTestSession(t)
	_, srv := newTestServer(t, &fakeSource{sess: sess})

	body, _ := json.Marshal(ActionRequest{Function: "Battery", Action: "set_position", Index: 1})
	resp, err := http.Post(srv.URL+"/api/action", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.NoError(t, sess.Tick())
	assert.Equal(t, [][]string{{"C1,3001,1.0"}}, lb.Flushed())

	resp, err = http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st struct {
		SessionID   string `json:"session_id"`
		Interface   string `json:"interface"`
		CommandsOut uint64 `json:"commands_out"`
		Functions   int    `json:"functions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, sess.ID(), st.SessionID)
	assert.Equal(t, "test", st.Interface)
	assert.Equal(t, uint64(1), st.CommandsOut)
	assert.Equal(t, 1, st.Functions)
}

func TestServer_BadAction(t *testing.T) {
	sess, _ := newTestSession(t)
	_, srv := newTestServer(t, &fakeSource{sess: sess})

	bodies := []string{
		`{"function":"Battery","action":"wiggle"}`,
		`{"action":"press"}`,
		`not json`,
		`{"function":"Battery","action":"rotate","detents":-9223372036854775808}`,
	}
	for _, body := range bodies {
		resp, err := http.Post(srv.URL+"/api/action", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestServer_QueueFull(t *testing.T) {
	sess, _ := newTestSession(t)
	_, srv := newTestServer(t, &fakeSource{sess: sess})

	for i := 0; i < session.MaxQueue; i++ {
		require.NoError(t, sess.Enqueue(session.Request{ID: 12, Action: netfunc.SetPosition{Index: 1}}))
	}
	body := strings.NewReader(`{"id":12,"action":"set_position","index":0}`)
	resp, err := http.Post(srv.URL+"/api/action", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBridge_WebSocket(t *testing.T) {
	sess, lb := newTestSession(t)
	hub, srv := newTestServer(t, &fakeSource{sess: sess})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// A new cockpit gets the full snapshot first.
	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.Equal(t, sess.ID(), msg.Session)

	// Actions from the cockpit reach the session queue.
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": MessageTypeAction,
		"data": ActionRequest{ID: 12, Action: "set_position", Index: 1},
	}))
	require.Eventually(t, func() bool {
		_ = sess.Tick()
		return len(lb.Flushed()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"C1,3001,1.0"}, lb.Flushed()[0])

	// Values changed by a tick are broadcast.
	hub.Publish(sess.ID(), []functable.Update{{ID: 12, Value: "1.0", Function: "Battery"}})
	msg = readMessage(t, conn)
	assert.Equal(t, MessageTypeUpdates, msg.Type)
	data, _ := json.Marshal(msg.Data)
	assert.JSONEq(t, `[{"id":12,"value":"1.0","function":"Battery"}]`, string(data))

	// Rejected actions come back as errors.
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": MessageTypeAction,
		"data": ActionRequest{Function: "Battery", Action: "spin"},
	}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageTypeError, msg.Type)
}

func TestActionRequest_Request(t *testing.T) {
	tests := []struct {
		in   ActionRequest
		want netfunc.Action
	}{
		{ActionRequest{ID: 1, Action: "set_position", Index: 2}, netfunc.SetPosition{Index: 2}},
		{ActionRequest{ID: 1, Action: "nudge", Delta: -1}, netfunc.Nudge{Delta: -1}},
		{ActionRequest{ID: 1, Action: "set_value", Value: 0.5}, netfunc.SetValue{Value: 0.5}},
		{ActionRequest{ID: 1, Action: "press"}, netfunc.Press{}},
		{ActionRequest{ID: 1, Action: "release"}, netfunc.Release{}},
		{ActionRequest{ID: 1, Action: "rotate", Detents: 3}, netfunc.Rotate{Detents: 3}},
	}
	for _, tt := range tests {
		req, err := tt.in.Request()
		require.NoError(t, err, tt.in.Action)
		assert.Equal(t, tt.want, req.Action)
		assert.Equal(t, 1, req.ID)
	}
}

func TestActionRequest_RequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      ActionRequest
		wantErr error
	}{
		{"UnknownAction", ActionRequest{ID: 1, Action: "spin"}, netfunc.ErrUnsupportedAction},
		{"TooManyDetents", ActionRequest{ID: 1, Action: "rotate", Detents: netfunc.MaxDetents + 1}, netfunc.ErrInvalidDetents},
		{"MinIntDetents", ActionRequest{ID: 1, Action: "rotate", Detents: math.MinInt}, netfunc.ErrInvalidDetents},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Request()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
