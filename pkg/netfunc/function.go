// Package netfunc implements the network functions that bind simulator
// controls to exported values and outbound commands.
//
// The set of variants is closed: Switch, Axis, PushButton, NetworkValue,
// ScaledNetworkValue, RotaryEncoder and Ignored. Dispatchers type-switch over
// them.
package netfunc

import (
	"errors"
	"strconv"

	"simlink/pkg/catalog"
	"simlink/pkg/protocol"
)

var (
	// ErrUnsupportedAction is returned when a function cannot perform an action.
	ErrUnsupportedAction = errors.New("action not supported by function")
	// ErrInvalidSwitch is returned for switches with missing or duplicate positions.
	ErrInvalidSwitch = errors.New("invalid switch definition")
	// ErrInvalidAxis is returned for axes with an empty domain or step.
	ErrInvalidAxis = errors.New("invalid axis definition")
	// ErrCalibration is returned for degenerate or non-monotonic calibration curves.
	ErrCalibration = errors.New("invalid calibration")
	// ErrInvalidDetents is returned when a rotation exceeds MaxDetents.
	ErrInvalidDetents = errors.New("detents out of range")
)

// Kind names a function variant.
type Kind string

const (
	KindSwitch        Kind = "switch"
	KindAxis          Kind = "axis"
	KindPushButton    Kind = "push_button"
	KindNetworkValue  Kind = "value"
	KindScaledValue   Kind = "scaled_value"
	KindRotaryEncoder Kind = "rotary_encoder"
	KindIgnored       Kind = "ignored"
)

// Function binds one simulator control to its exported elements.
type Function interface {
	ID() int
	Name() string
	Kind() Kind
	Elements() []*DataElement
	function()
}

// Command is one outbound instruction for the simulator.
type Command struct {
	Ref   catalog.Ref
	Value string
}

func (c Command) String() string {
	return protocol.FormatCommand(int(c.Ref.Device), int(c.Ref.Command), c.Value)
}

// Strings renders commands in wire form.
func Strings(cmds []Command) []string {
	if len(cmds) == 0 {
		return nil
	}
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.String()
	}
	return out
}

// base carries the name and single element shared by every variant.
type base struct {
	name string
	elem *DataElement
}

func newBase(id int, name, format string) base {
	if name == "" {
		name = "Arg " + strconv.Itoa(id)
	}
	return base{name: name, elem: NewDataElement(id, format)}
}

func (b *base) Name() string { return b.name }

// ID returns the export ID of the function's element.
func (b *base) ID() int { return b.elem.ID() }

// Element returns the function's element.
func (b *base) Element() *DataElement { return b.elem }

func (b *base) Elements() []*DataElement { return []*DataElement{b.elem} }

func (*base) function() {}

// Action is an outbound request from the cockpit side.
type Action interface {
	action()
}

// SetPosition moves a Switch to the position at Index.
type SetPosition struct{ Index int }

// Nudge moves an Axis by Delta steps.
type Nudge struct{ Delta float64 }

// SetValue moves an Axis to an absolute value.
type SetValue struct{ Value float64 }

// Press presses a PushButton.
type Press struct{}

// Release releases a PushButton.
type Release struct{}

// Rotate turns a RotaryEncoder by a number of detents; negative turns decrement.
type Rotate struct{ Detents int }

func (SetPosition) action() {}
func (Nudge) action()       {}
func (SetValue) action()    {}
func (Press) action()       {}
func (Release) action()     {}
func (Rotate) action()      {}
