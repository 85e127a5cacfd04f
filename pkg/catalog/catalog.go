// Package catalog provides the closed device and command enumerations of a
// simulated aircraft.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownDevice is returned when a device name or ID is not part of a catalog.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnknownCommand is returned when a command is not declared on its device.
	ErrUnknownCommand = errors.New("unknown command")
)

// DeviceID identifies a simulated subsystem.
type DeviceID int

// CommandID identifies a command within a device.
type CommandID int

// Device is a named simulated subsystem.
type Device struct {
	ID       DeviceID
	Name     string   // Simulator symbol, e.g. ELEC_INTERFACE
	Ident    string   // Go identifier of the constant declaring ID
	Headings []string // Additional section headings that name this device
}

// Command is a control action scoped to a device.
type Command struct {
	Device DeviceID
	ID     CommandID
	Name   string
	Ident  string
	Input  bool // Iterative/axis input rather than a plain output
}

// Ref points at one command of one device. The zero Ref refers to nothing.
type Ref struct {
	Device  DeviceID  `yaml:"device" json:"device"`
	Command CommandID `yaml:"command" json:"command"`
}

// Valid reports whether r names a command.
func (r Ref) Valid() bool {
	return r.Device != 0 && r.Command != 0
}

func (r Ref) String() string {
	return fmt.Sprintf("%d.%d", r.Device, r.Command)
}

// Station distinguishes duplicated controls of multi-crew cockpits.
type Station int

const (
	StationNone Station = iota
	StationPilot
	StationCopilot
)

func (s Station) String() string {
	switch s {
	case StationPilot:
		return "Pilot"
	case StationCopilot:
		return "Copilot"
	default:
		return ""
	}
}

// Catalog is the immutable set of devices and commands of one aircraft module.
type Catalog struct {
	Name    string // Aircraft module name
	Package string // Go package that declares the constants

	devices  []Device
	byID     map[DeviceID]Device
	byName   map[string]Device
	commands map[DeviceID]map[string]Command
	byRef    map[Ref]Command
	stations map[int]Station
}

// New builds a catalog. Duplicate device IDs, device names or per-device
// command names are rejected.
func New(name, pkg string, devices []Device, commands []Command) (*Catalog, error) {
	c := &Catalog{
		Name:     name,
		Package:  pkg,
		byID:     make(map[DeviceID]Device, len(devices)),
		byName:   make(map[string]Device, len(devices)),
		commands: make(map[DeviceID]map[string]Command),
		byRef:    make(map[Ref]Command, len(commands)),
		stations: make(map[int]Station),
	}

	for _, d := range devices {
		if d.ID == 0 {
			return nil, fmt.Errorf("device %q: id must be non-zero", d.Name)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate device id %d (%s)", d.ID, d.Name)
		}
		keys := append([]string{d.Name}, d.Headings...)
		for _, k := range keys {
			nk := Normalize(k)
			if prev, dup := c.byName[nk]; dup {
				return nil, fmt.Errorf("device name %q used by both %s and %s", k, prev.Name, d.Name)
			}
			c.byName[nk] = d
		}
		c.byID[d.ID] = d
		c.devices = append(c.devices, d)
	}

	for _, cmd := range commands {
		if _, ok := c.byID[cmd.Device]; !ok {
			return nil, fmt.Errorf("command %s: %w %d", cmd.Name, ErrUnknownDevice, cmd.Device)
		}
		if cmd.ID == 0 {
			return nil, fmt.Errorf("command %s: id must be non-zero", cmd.Name)
		}
		set, ok := c.commands[cmd.Device]
		if !ok {
			set = make(map[string]Command)
			c.commands[cmd.Device] = set
		}
		nk := Normalize(cmd.Name)
		if _, dup := set[nk]; dup {
			return nil, fmt.Errorf("duplicate command %s on device %d", cmd.Name, cmd.Device)
		}
		ref := Ref{Device: cmd.Device, Command: cmd.ID}
		if _, dup := c.byRef[ref]; dup {
			return nil, fmt.Errorf("duplicate command id %s", ref)
		}
		set[nk] = cmd
		c.byRef[ref] = cmd
	}

	sort.Slice(c.devices, func(i, j int) bool { return c.devices[i].ID < c.devices[j].ID })
	return c, nil
}

// MustNew is like New but panics on error. Intended for package-level catalogs.
func MustNew(name, pkg string, devices []Device, commands []Command) *Catalog {
	c, err := New(name, pkg, devices, commands)
	if err != nil {
		panic(fmt.Sprintf("catalog %s: %v", name, err))
	}
	return c
}

// WithStations assigns crew stations to cockpit argument numbers.
func (c *Catalog) WithStations(stations map[int]Station) *Catalog {
	for arg, s := range stations {
		c.stations[arg] = s
	}
	return c
}

// Station returns the crew station owning a cockpit argument.
func (c *Catalog) Station(arg int) Station {
	return c.stations[arg]
}

// Devices returns all devices ordered by ID.
func (c *Catalog) Devices() []Device {
	out := make([]Device, len(c.devices))
	copy(out, c.devices)
	return out
}

// Device returns the device with the given ID.
func (c *Catalog) Device(id DeviceID) (Device, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// DeviceByName resolves a device symbol or heading alias.
func (c *Catalog) DeviceByName(name string) (Device, error) {
	if d, ok := c.byName[Normalize(name)]; ok {
		return d, nil
	}
	return Device{}, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
}

// Command resolves a command name on a device.
func (c *Catalog) Command(dev DeviceID, name string) (Command, error) {
	if cmd, ok := c.commands[dev][Normalize(name)]; ok {
		return cmd, nil
	}
	return Command{}, fmt.Errorf("%w: %q on device %d", ErrUnknownCommand, name, dev)
}

// Lookup returns the command a ref points at.
func (c *Catalog) Lookup(ref Ref) (Command, bool) {
	cmd, ok := c.byRef[ref]
	return cmd, ok
}

// DeviceExpr renders the Go expression naming a device constant. The
// constant is qualified with qual unless qual is empty.
func (c *Catalog) DeviceExpr(id DeviceID, qual string) string {
	if d, ok := c.byID[id]; ok && d.Ident != "" {
		return qualify(qual, d.Ident)
	}
	return fmt.Sprintf("catalog.DeviceID(%d)", id)
}

// RefExpr renders the Go expression of a command reference.
func (c *Catalog) RefExpr(ref Ref, qual string) string {
	cmdExpr := fmt.Sprintf("%d", ref.Command)
	if cmd, ok := c.byRef[ref]; ok && cmd.Ident != "" {
		cmdExpr = qualify(qual, cmd.Ident)
	}
	return fmt.Sprintf("catalog.Ref{Device: %s, Command: %s}", c.DeviceExpr(ref.Device, qual), cmdExpr)
}

func qualify(qual, ident string) string {
	if qual == "" {
		return ident
	}
	return qual + "." + ident
}

// Normalize folds a name to the form used for lookups: upper case with runs
// of non-alphanumerics collapsed to a single underscore.
func Normalize(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		isAlnum := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
