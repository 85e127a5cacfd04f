package netfunc

import (
	"fmt"

	"simlink/pkg/catalog"
)

// MaxDetents bounds the rotation one action may request in either direction.
const MaxDetents = 64

// RotaryEncoder turns detents of rotation into relative commands.
type RotaryEncoder struct {
	base
	ref  catalog.Ref // Increment command, or the only command
	dec  catalog.Ref // Optional separate decrement command
	step float64
}

// NewRotaryEncoder creates an encoder sending +step or -step on one command.
func NewRotaryEncoder(id int, name string, ref catalog.Ref, step float64) *RotaryEncoder {
	if step == 0 {
		step = 0.1
	}
	return &RotaryEncoder{base: newBase(id, name, FormatText), ref: ref, step: step}
}

// NewSplitRotaryEncoder creates an encoder with separate increment and
// decrement commands, each sending +step.
func NewSplitRotaryEncoder(id int, name string, inc, dec catalog.Ref, step float64) *RotaryEncoder {
	e := NewRotaryEncoder(id, name, inc, step)
	e.dec = dec
	return e
}

func (e *RotaryEncoder) Kind() Kind { return KindRotaryEncoder }

// Refs returns the increment and, for split encoders, decrement commands.
func (e *RotaryEncoder) Refs() (inc, dec catalog.Ref) { return e.ref, e.dec }

// Step returns the value sent per detent.
func (e *RotaryEncoder) Step() float64 { return e.step }

// ApplyInbound mirrors the simulator's knob position.
func (e *RotaryEncoder) ApplyInbound(raw string) bool {
	return e.elem.set(raw)
}

// ApplyOutbound emits exactly one command per detent. Nothing accumulates
// between calls.
func (e *RotaryEncoder) ApplyOutbound(detents int) ([]Command, error) {
	if detents > MaxDetents || detents < -MaxDetents {
		return nil, fmt.Errorf("%w: %d detents, limit %d", ErrInvalidDetents, detents, MaxDetents)
	}
	if detents == 0 {
		return nil, nil
	}
	n := detents
	if n < 0 {
		n = -n
	}

	cmd := Command{Ref: e.ref, Value: FormatValue(FormatDefault, e.step)}
	if detents < 0 {
		if e.dec.Valid() {
			cmd.Ref = e.dec
		} else {
			cmd.Value = FormatValue(FormatDefault, -e.step)
		}
	}

	out := make([]Command, n)
	for i := range out {
		out[i] = cmd
	}
	return out, nil
}

// Ignored reserves an export ID without translating anything.
type Ignored struct {
	base
}

// NewIgnored creates a placeholder for id.
func NewIgnored(id int, name string) *Ignored {
	return &Ignored{base: newBase(id, name, FormatText)}
}

func (i *Ignored) Kind() Kind { return KindIgnored }
