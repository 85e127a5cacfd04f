package netfunc

import (
	"fmt"
	"math"

	"simlink/pkg/catalog"
)

// Axis is a continuous control clamped to [Min, Max].
type Axis struct {
	base
	ref    catalog.Ref
	min    float64
	max    float64
	step   float64
	invert bool
	value  float64
}

// NewAxis creates an axis resting at min. With invert set, the simulator's
// min end is the cockpit's max end.
func NewAxis(id int, name string, ref catalog.Ref, min, max, step float64, invert bool) (*Axis, error) {
	if !(min < max) {
		return nil, fmt.Errorf("%w: %s has empty domain [%g,%g]", ErrInvalidAxis, name, min, max)
	}
	if !(step > 0) {
		return nil, fmt.Errorf("%w: %s step must be positive, got %g", ErrInvalidAxis, name, step)
	}
	a := &Axis{
		base:   newBase(id, name, FormatDefault),
		ref:    ref,
		min:    min,
		max:    max,
		step:   step,
		invert: invert,
		value:  min,
	}
	a.elem.init(FormatValue(a.elem.format, min))
	return a, nil
}

// MustAxis is like NewAxis but panics on error.
func MustAxis(id int, name string, ref catalog.Ref, min, max, step float64, invert bool) *Axis {
	a, err := NewAxis(id, name, ref, min, max, step, invert)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Axis) Kind() Kind { return KindAxis }

// Ref returns the command driven by the axis.
func (a *Axis) Ref() catalog.Ref { return a.ref }

// Domain returns the axis bounds.
func (a *Axis) Domain() (min, max float64) { return a.min, a.max }

// Step returns the increment applied per unit of Nudge.
func (a *Axis) Step() float64 { return a.step }

// Inverted reports whether the axis runs opposite to the simulator.
func (a *Axis) Inverted() bool { return a.invert }

// Value returns the current cockpit-side value.
func (a *Axis) Value() float64 { return a.value }

// ApplyInbound stores a simulator value, clamped to the domain.
func (a *Axis) ApplyInbound(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if a.invert {
		v = a.min + a.max - v
	}
	a.value = a.clamp(v)
	return a.elem.setFloat(a.value)
}

// ApplyOutbound moves the axis by delta steps and returns the resulting
// command.
func (a *Axis) ApplyOutbound(delta float64) []Command {
	return a.SetValue(a.value + delta*a.step)
}

// SetValue moves the axis to v, clamped, and returns the resulting command.
func (a *Axis) SetValue(v float64) []Command {
	a.value = a.clamp(v)
	a.elem.setFloat(a.value)

	out := a.value
	if a.invert {
		out = a.min + a.max - out
	}
	return []Command{{Ref: a.ref, Value: FormatValue(a.elem.format, out)}}
}

func (a *Axis) clamp(v float64) float64 {
	return math.Max(a.min, math.Min(a.max, v))
}
