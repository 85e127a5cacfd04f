package api

import (
	"encoding/json"
	"fmt"
	"time"

	"simlink/pkg/netfunc"
	"simlink/pkg/session"
)

// MessageType defines the type of a bridge message.
type MessageType string

const (
	// Server to client
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeUpdates  MessageType = "updates"
	MessageTypeError    MessageType = "error"

	// Client to server
	MessageTypeAction MessageType = "action"
)

// Message is one bridge message.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Session   string      `json:"session,omitempty"`
	Data      any         `json:"data,omitempty"`
}

type inbound struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ActionRequest addresses a cockpit action to a function by name or export ID.
type ActionRequest struct {
	Function string  `json:"function,omitempty"`
	ID       int     `json:"id,omitempty"`
	Action   string  `json:"action"` // set_position, nudge, set_value, press, release, rotate
	Index    int     `json:"index,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Delta    float64 `json:"delta,omitempty"`
	Detents  int     `json:"detents,omitempty"`
}

// Request converts the action to a session request.
func (a ActionRequest) Request() (session.Request, error) {
	if a.Function == "" && a.ID == 0 {
		return session.Request{}, fmt.Errorf("action needs a function name or id")
	}
	var act netfunc.Action
	switch a.Action {
	case "set_position":
		act = netfunc.SetPosition{Index: a.Index}
	case "nudge":
		act = netfunc.Nudge{Delta: a.Delta}
	case "set_value":
		act = netfunc.SetValue{Value: a.Value}
	case "press":
		act = netfunc.Press{}
	case "release":
		act = netfunc.Release{}
	case "rotate":
		if a.Detents > netfunc.MaxDetents || a.Detents < -netfunc.MaxDetents {
			return session.Request{}, fmt.Errorf("%w: %d", netfunc.ErrInvalidDetents, a.Detents)
		}
		act = netfunc.Rotate{Detents: a.Detents}
	default:
		return session.Request{}, fmt.Errorf("%w: %q", netfunc.ErrUnsupportedAction, a.Action)
	}
	return session.Request{Function: a.Function, ID: a.ID, Action: act}, nil
}
