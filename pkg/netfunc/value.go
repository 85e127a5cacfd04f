package netfunc

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"simlink/pkg/catalog"
)

// NetworkValue passes a simulator value through unchanged apart from
// formatting.
type NetworkValue struct {
	base
	device catalog.DeviceID
}

// NewNetworkValue creates a passthrough value. An empty format means text.
func NewNetworkValue(id int, name string, device catalog.DeviceID, format string) *NetworkValue {
	if format == "" {
		format = FormatText
	}
	return &NetworkValue{base: newBase(id, name, format), device: device}
}

func (v *NetworkValue) Kind() Kind { return KindNetworkValue }

// Device returns the device that exports the value.
func (v *NetworkValue) Device() catalog.DeviceID { return v.device }

// ApplyInbound stores raw. Numeric formats re-format the value; text formats
// keep it verbatim.
func (v *NetworkValue) ApplyInbound(raw string) (bool, error) {
	if v.elem.IsText() {
		return v.elem.set(raw), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return false, fmt.Errorf("%s: %q is not numeric: %w", v.name, raw, err)
	}
	return v.elem.setFloat(f), nil
}

// Point is one calibration breakpoint.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Calibration maps raw values to display units by piecewise-linear
// interpolation. Inputs outside the breakpoints clamp to the end values.
type Calibration struct {
	points []Point
}

// NewCalibration validates the breakpoints: at least two, finite, and
// strictly increasing in X.
func NewCalibration(points ...Point) (*Calibration, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least two breakpoints, got %d", ErrCalibration, len(points))
	}
	for i, p := range points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return nil, fmt.Errorf("%w: breakpoint %d is not finite", ErrCalibration, i)
		}
		if i > 0 && !(p.X > points[i-1].X) {
			return nil, fmt.Errorf("%w: breakpoint %d (x=%g) does not increase from x=%g", ErrCalibration, i, p.X, points[i-1].X)
		}
	}
	c := &Calibration{points: make([]Point, len(points))}
	copy(c.points, points)
	return c, nil
}

// MustCalibration is like NewCalibration but panics on error.
func MustCalibration(points ...Point) *Calibration {
	c, err := NewCalibration(points...)
	if err != nil {
		panic(err)
	}
	return c
}

// Points returns a copy of the breakpoints.
func (c *Calibration) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}

// Interpolate maps v through the curve.
func (c *Calibration) Interpolate(v float64) float64 {
	first, last := c.points[0], c.points[len(c.points)-1]
	if v <= first.X {
		return first.Y
	}
	if v >= last.X {
		return last.Y
	}
	// First breakpoint with X >= v; v is strictly inside the range here.
	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].X >= v })
	p0, p1 := c.points[i-1], c.points[i]
	return p0.Y + (v-p0.X)/(p1.X-p0.X)*(p1.Y-p0.Y)
}

// ScaledNetworkValue converts a raw simulator value through a calibration curve.
type ScaledNetworkValue struct {
	base
	device catalog.DeviceID
	curve  *Calibration
	value  float64
}

// NewScaledNetworkValue creates a scaled value. The curve is required.
func NewScaledNetworkValue(id int, name string, device catalog.DeviceID, format string, curve *Calibration) (*ScaledNetworkValue, error) {
	if curve == nil {
		return nil, fmt.Errorf("%w: %s has no calibration curve", ErrCalibration, name)
	}
	if format == "" {
		format = FormatDefault
	}
	v := &ScaledNetworkValue{base: newBase(id, name, format), device: device, curve: curve}
	v.value = curve.Interpolate(0)
	v.elem.init(FormatValue(format, v.value))
	return v, nil
}

// MustScaledNetworkValue is like NewScaledNetworkValue but panics on error.
func MustScaledNetworkValue(id int, name string, device catalog.DeviceID, format string, curve *Calibration) *ScaledNetworkValue {
	v, err := NewScaledNetworkValue(id, name, device, format, curve)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *ScaledNetworkValue) Kind() Kind { return KindScaledValue }

// Device returns the device that exports the value.
func (v *ScaledNetworkValue) Device() catalog.DeviceID { return v.device }

// Curve returns the calibration curve.
func (v *ScaledNetworkValue) Curve() *Calibration { return v.curve }

// Value returns the last scaled value.
func (v *ScaledNetworkValue) Value() float64 { return v.value }

// ApplyInbound scales raw through the curve.
func (v *ScaledNetworkValue) ApplyInbound(raw float64) bool {
	if math.IsNaN(raw) {
		return false
	}
	v.value = v.curve.Interpolate(raw)
	return v.elem.setFloat(v.value)
}
