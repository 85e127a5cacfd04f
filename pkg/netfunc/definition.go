package netfunc

import (
	"fmt"

	"simlink/pkg/catalog"
)

// Definition is the serializable form of a Function, used for definition
// files and the compiled-table store.
type Definition struct {
	Kind      Kind             `yaml:"kind" json:"kind"`
	ID        int              `yaml:"id" json:"id"`
	Name      string           `yaml:"name" json:"name"`
	Device    catalog.DeviceID `yaml:"device,omitempty" json:"device,omitempty"`
	Command   catalog.Ref      `yaml:"command,omitempty" json:"command"`
	Decrement catalog.Ref      `yaml:"decrement,omitempty" json:"decrement"`
	Positions []SwitchPosition `yaml:"positions,omitempty" json:"positions,omitempty"`
	Min       float64          `yaml:"min,omitempty" json:"min,omitempty"`
	Max       float64          `yaml:"max,omitempty" json:"max,omitempty"`
	Step      float64          `yaml:"step,omitempty" json:"step,omitempty"`
	Invert    bool             `yaml:"invert,omitempty" json:"invert,omitempty"`
	Format    string           `yaml:"format,omitempty" json:"format,omitempty"`
	Press     string           `yaml:"press_value,omitempty" json:"press_value,omitempty"`
	Release   string           `yaml:"release_value,omitempty" json:"release_value,omitempty"`
	Curve     []Point          `yaml:"calibration,omitempty" json:"calibration,omitempty"`
}

// Describe returns the definition that rebuilds f.
func Describe(f Function) Definition {
	switch f := f.(type) {
	case *Switch:
		return Definition{Kind: KindSwitch, ID: f.ID(), Name: f.Name(), Device: f.device, Positions: f.Positions()}
	case *Axis:
		return Definition{Kind: KindAxis, ID: f.ID(), Name: f.Name(), Command: f.ref, Min: f.min, Max: f.max, Step: f.step, Invert: f.invert}
	case *PushButton:
		return Definition{Kind: KindPushButton, ID: f.ID(), Name: f.Name(), Command: f.ref, Press: f.pressValue, Release: f.releaseValue}
	case *NetworkValue:
		return Definition{Kind: KindNetworkValue, ID: f.ID(), Name: f.Name(), Device: f.device, Format: f.elem.format}
	case *ScaledNetworkValue:
		return Definition{Kind: KindScaledValue, ID: f.ID(), Name: f.Name(), Device: f.device, Format: f.elem.format, Curve: f.curve.Points()}
	case *RotaryEncoder:
		return Definition{Kind: KindRotaryEncoder, ID: f.ID(), Name: f.Name(), Command: f.ref, Decrement: f.dec, Step: f.step}
	case *Ignored:
		return Definition{Kind: KindIgnored, ID: f.ID(), Name: f.Name()}
	default:
		panic(fmt.Sprintf("netfunc: unknown function type %T", f))
	}
}

// Build constructs the function described by d. When cat is non-nil every
// device and command reference must exist in it.
func (d Definition) Build(cat *catalog.Catalog) (Function, error) {
	if err := d.check(cat); err != nil {
		return nil, err
	}

	switch d.Kind {
	case KindSwitch:
		s, err := NewSwitch(d.ID, d.Name, d.Device, d.Positions)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindAxis:
		a, err := NewAxis(d.ID, d.Name, d.Command, d.Min, d.Max, d.Step, d.Invert)
		if err != nil {
			return nil, err
		}
		return a, nil
	case KindPushButton:
		b := NewPushButton(d.ID, d.Name, d.Command)
		if d.Press != "" || d.Release != "" {
			b.WithValues(d.Press, d.Release)
		}
		return b, nil
	case KindNetworkValue:
		return NewNetworkValue(d.ID, d.Name, d.Device, d.Format), nil
	case KindScaledValue:
		curve, err := NewCalibration(d.Curve...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		v, err := NewScaledNetworkValue(d.ID, d.Name, d.Device, d.Format, curve)
		if err != nil {
			return nil, err
		}
		return v, nil
	case KindRotaryEncoder:
		if d.Decrement.Valid() {
			return NewSplitRotaryEncoder(d.ID, d.Name, d.Command, d.Decrement, d.Step), nil
		}
		return NewRotaryEncoder(d.ID, d.Name, d.Command, d.Step), nil
	case KindIgnored:
		return NewIgnored(d.ID, d.Name), nil
	default:
		return nil, fmt.Errorf("definition %d (%s): unknown kind %q", d.ID, d.Name, d.Kind)
	}
}

func (d Definition) check(cat *catalog.Catalog) error {
	if cat == nil {
		return nil
	}
	if d.Device != 0 {
		if _, ok := cat.Device(d.Device); !ok {
			return fmt.Errorf("definition %d (%s): %w %d", d.ID, d.Name, catalog.ErrUnknownDevice, d.Device)
		}
	}
	refs := []catalog.Ref{d.Command, d.Decrement}
	for _, p := range d.Positions {
		refs = append(refs, p.Press, p.Release)
	}
	for _, r := range refs {
		if !r.Valid() {
			continue
		}
		if _, ok := cat.Lookup(r); !ok {
			return fmt.Errorf("definition %d (%s): %w %s", d.ID, d.Name, catalog.ErrUnknownCommand, r)
		}
	}
	return nil
}
