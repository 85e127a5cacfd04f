package netfunc

import (
	"math"

	"simlink/pkg/catalog"
)

// PushButton is a momentary control.
type PushButton struct {
	base
	ref          catalog.Ref
	pressValue   string
	releaseValue string
	pressed      bool
}

// NewPushButton creates a released button sending 1 on press and 0 on release.
func NewPushButton(id int, name string, ref catalog.Ref) *PushButton {
	b := &PushButton{
		base:         newBase(id, name, FormatBool),
		ref:          ref,
		pressValue:   "1",
		releaseValue: "0",
	}
	b.elem.init("0")
	return b
}

// WithValues overrides the values sent on press and release.
func (b *PushButton) WithValues(press, release string) *PushButton {
	b.pressValue = press
	b.releaseValue = release
	return b
}

func (b *PushButton) Kind() Kind { return KindPushButton }

// Ref returns the command driven by the button.
func (b *PushButton) Ref() catalog.Ref { return b.ref }

// Values returns the press and release values.
func (b *PushButton) Values() (press, release string) { return b.pressValue, b.releaseValue }

// Pressed reports the momentary state.
func (b *PushButton) Pressed() bool { return b.pressed }

// ApplyInbound treats any non-zero value as pressed. Only transitions are
// reported; repeating the current state returns false.
func (b *PushButton) ApplyInbound(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	pressed := v != 0
	if pressed == b.pressed {
		return false
	}
	b.pressed = pressed
	if pressed {
		return b.elem.set("1")
	}
	return b.elem.set("0")
}

// Press returns the press command.
func (b *PushButton) Press() []Command {
	return []Command{{Ref: b.ref, Value: b.pressValue}}
}

// Release returns the release command.
func (b *PushButton) Release() []Command {
	return []Command{{Ref: b.ref, Value: b.releaseValue}}
}
