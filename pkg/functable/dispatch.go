package functable

import (
	"fmt"

	"simlink/pkg/netfunc"
)

// OnRecord applies one inbound record. Records for IDs the table does not
// model are ignored. Values a function cannot interpret are logged and
// dropped; OnRecord never fails.
func (t *Table) OnRecord(id int, raw string) (changed bool) {
	f, ok := t.byID[id]
	if !ok {
		return false
	}

	switch f := f.(type) {
	case *netfunc.Switch:
		changed, ok := f.ApplyInbound(raw, t.tolerance)
		if !ok {
			t.logger.Warn("No switch position matches value", "id", id, "function", f.Name(), "value", raw)
		}
		return changed
	case *netfunc.Axis:
		v, err := parseFloat(raw)
		if err != nil {
			t.dropped(id, f, raw, err)
			return false
		}
		return f.ApplyInbound(v)
	case *netfunc.PushButton:
		v, err := parseFloat(raw)
		if err != nil {
			t.dropped(id, f, raw, err)
			return false
		}
		return f.ApplyInbound(v)
	case *netfunc.NetworkValue:
		changed, err := f.ApplyInbound(raw)
		if err != nil {
			t.dropped(id, f, raw, err)
		}
		return changed
	case *netfunc.ScaledNetworkValue:
		v, err := parseFloat(raw)
		if err != nil {
			t.dropped(id, f, raw, err)
			return false
		}
		return f.ApplyInbound(v)
	case *netfunc.RotaryEncoder:
		return f.ApplyInbound(raw)
	case *netfunc.Ignored:
		return false
	default:
		t.logger.Error("Unhandled function type", "id", id, "type", fmt.Sprintf("%T", f))
		return false
	}
}

func (t *Table) dropped(id int, f netfunc.Function, raw string, err error) {
	t.logger.Warn("Dropping unparsable value", "id", id, "function", f.Name(), "value", raw, "error", err)
}

// OnAction performs a cockpit action on f and returns the command strings to
// send to the simulator.
func (t *Table) OnAction(f netfunc.Function, a netfunc.Action) ([]string, error) {
	cmds, err := outbound(f, a)
	if err != nil {
		return nil, err
	}
	return netfunc.Strings(cmds), nil
}

// OnNamedAction looks up a function by name and performs a on it.
func (t *Table) OnNamedAction(name string, a netfunc.Action) ([]string, error) {
	f, ok := t.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return t.OnAction(f, a)
}

// OnIDAction looks up a function by export ID and performs a on it.
func (t *Table) OnIDAction(id int, a netfunc.Action) ([]string, error) {
	f, ok := t.ByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownFunction, id)
	}
	return t.OnAction(f, a)
}

func outbound(f netfunc.Function, a netfunc.Action) ([]netfunc.Command, error) {
	switch f := f.(type) {
	case *netfunc.Switch:
		if a, ok := a.(netfunc.SetPosition); ok {
			return f.ApplyOutbound(a.Index)
		}
	case *netfunc.Axis:
		switch a := a.(type) {
		case netfunc.Nudge:
			return f.ApplyOutbound(a.Delta), nil
		case netfunc.SetValue:
			return f.SetValue(a.Value), nil
		}
	case *netfunc.PushButton:
		switch a.(type) {
		case netfunc.Press:
			return f.Press(), nil
		case netfunc.Release:
			return f.Release(), nil
		}
	case *netfunc.RotaryEncoder:
		if a, ok := a.(netfunc.Rotate); ok {
			return f.ApplyOutbound(a.Detents)
		}
	case *netfunc.NetworkValue, *netfunc.ScaledNetworkValue, *netfunc.Ignored:
		// Read-only.
	}
	return nil, fmt.Errorf("%w: %s cannot %T", netfunc.ErrUnsupportedAction, f.Name(), a)
}
