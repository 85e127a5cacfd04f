package netfunc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"simlink/pkg/catalog"
)

// SwitchPosition is one detent of a Switch.
type SwitchPosition struct {
	Value        string      `yaml:"value" json:"value"`
	Label        string      `yaml:"label" json:"label"`
	Press        catalog.Ref `yaml:"press,omitempty" json:"press"`
	Release      catalog.Ref `yaml:"release,omitempty" json:"release"`
	PressValue   string      `yaml:"press_value,omitempty" json:"press_value,omitempty"`
	ReleaseValue string      `yaml:"release_value,omitempty" json:"release_value,omitempty"`
}

// Momentary reports whether selecting the position sends a release after the press.
func (p SwitchPosition) Momentary() bool {
	return p.Release.Valid()
}

// Switch is a control with discrete positions.
type Switch struct {
	base
	device    catalog.DeviceID
	positions []SwitchPosition
	numeric   []float64
	current   int
}

// NewSwitch creates a switch resting in its first position. Positions need
// distinct values.
func NewSwitch(id int, name string, device catalog.DeviceID, positions []SwitchPosition) (*Switch, error) {
	if len(positions) < 2 {
		return nil, fmt.Errorf("%w: %s needs at least two positions, got %d", ErrInvalidSwitch, name, len(positions))
	}
	s := &Switch{
		base:      newBase(id, name, FormatText),
		device:    device,
		positions: make([]SwitchPosition, len(positions)),
		numeric:   make([]float64, len(positions)),
	}
	seen := make(map[string]int, len(positions))
	for i, p := range positions {
		key := strings.TrimSpace(p.Value)
		if key == "" {
			return nil, fmt.Errorf("%w: %s position %d has no value", ErrInvalidSwitch, name, i+1)
		}
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s positions %d and %d share value %q", ErrInvalidSwitch, name, prev+1, i+1, key)
		}
		seen[key] = i
		if p.Press.Valid() && p.PressValue == "" {
			p.PressValue = p.Value
		}
		if p.Release.Valid() && p.ReleaseValue == "" {
			p.ReleaseValue = "0"
		}
		s.positions[i] = p
		s.numeric[i] = parseNumber(p.Value)
	}
	s.elem.init(s.positions[0].Value)
	return s, nil
}

// MustSwitch is like NewSwitch but panics on error. Used by generated tables.
func MustSwitch(id int, name string, device catalog.DeviceID, positions []SwitchPosition) *Switch {
	s, err := NewSwitch(id, name, device, positions)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Switch) Kind() Kind { return KindSwitch }

// Device returns the device the switch belongs to.
func (s *Switch) Device() catalog.DeviceID { return s.device }

// Positions returns a copy of the declared positions.
func (s *Switch) Positions() []SwitchPosition {
	out := make([]SwitchPosition, len(s.positions))
	copy(out, s.positions)
	return out
}

// Current returns the index of the current position.
func (s *Switch) Current() int { return s.current }

// Position returns the current position.
func (s *Switch) Position() SwitchPosition { return s.positions[s.current] }

// Match finds the position declared for raw. An exact textual or numeric
// match always wins; with tolerance > 0 the numerically nearest position
// within tolerance is accepted, ties going to the earlier position.
func (s *Switch) Match(raw string, tolerance float64) (int, bool) {
	raw = strings.TrimSpace(raw)
	for i, p := range s.positions {
		if p.Value == raw {
			return i, true
		}
	}

	v := parseNumber(raw)
	if math.IsNaN(v) {
		return 0, false
	}

	best, bestDist := -1, math.Inf(1)
	for i, pv := range s.numeric {
		if math.IsNaN(pv) {
			continue
		}
		d := math.Abs(pv - v)
		if d == 0 {
			return i, true
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if tolerance > 0 && best >= 0 && bestDist <= tolerance {
		return best, true
	}
	return 0, false
}

// ApplyInbound moves the switch to the position matching raw. When nothing
// matches, the state is kept and ok is false.
func (s *Switch) ApplyInbound(raw string, tolerance float64) (changed, ok bool) {
	idx, ok := s.Match(raw, tolerance)
	if !ok {
		return false, false
	}
	s.current = idx
	return s.elem.set(s.positions[idx].Value), true
}

// ApplyOutbound selects a position and returns the commands that move the
// simulator control there. Positions without a press command emit nothing.
func (s *Switch) ApplyOutbound(index int) ([]Command, error) {
	if index < 0 || index >= len(s.positions) {
		return nil, fmt.Errorf("%w: %s position %d out of range [0,%d)", ErrInvalidSwitch, s.name, index, len(s.positions))
	}
	p := s.positions[index]
	s.current = index
	s.elem.set(p.Value)

	var cmds []Command
	if p.Press.Valid() {
		cmds = append(cmds, Command{Ref: p.Press, Value: p.PressValue})
	}
	if p.Release.Valid() {
		cmds = append(cmds, Command{Ref: p.Release, Value: p.ReleaseValue})
	}
	return cmds, nil
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
