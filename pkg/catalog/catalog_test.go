package catalog

import (
	"errors"
	"testing"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New("Test", "ah64d",
		[]Device{
			{ID: 1, Name: "ELEC_INTERFACE", Ident: "ElecInterface", Headings: []string{"Electric system"}},
			{ID: 2, Name: "FUEL_INTERFACE", Ident: "FuelInterface"},
			{ID: 3, Name: "NVS_INTERFACE"},
		},
		[]Command{
			{Device: 1, ID: 3001, Name: "BAT", Ident: "ElecBat"},
			{Device: 2, ID: 3001, Name: "FUEL_XFEED"},
			{Device: 3, ID: 3001, Name: "NVS_MODE"},
		})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ELEC_INTERFACE", "ELEC_INTERFACE"},
		{"  Electric   system ", "ELECTRIC_SYSTEM"},
		{"Fuel-system (aft)", "FUEL_SYSTEM_AFT"},
		{"__x__", "X"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeviceByName(t *testing.T) {
	c := testCatalog(t)

	for _, name := range []string{"ELEC_INTERFACE", "elec interface", "Electric System"} {
		d, err := c.DeviceByName(name)
		if err != nil {
			t.Fatalf("DeviceByName(%q): %v", name, err)
		}
		if d.ID != 1 {
			t.Errorf("DeviceByName(%q) = %d, want 1", name, d.ID)
		}
	}

	if _, err := c.DeviceByName("HYDRAULICS"); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("expected ErrUnknownDevice, got %v", err)
	}
}

func TestCommand(t *testing.T) {
	c := testCatalog(t)

	cmd, err := c.Command(1, "bat")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if cmd.ID != 3001 {
		t.Errorf("got %d, want 3001", cmd.ID)
	}
	if _, err := c.Command(1, "FUEL_XFEED"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("command of another device resolved: %v", err)
	}
	if _, ok := c.Lookup(Ref{Device: 2, Command: 3001}); !ok {
		t.Error("Lookup failed for declared ref")
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		devices  []Device
		commands []Command
	}{
		{"ZeroDevice", []Device{{ID: 0, Name: "A"}}, nil},
		{"DuplicateDeviceID", []Device{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}}, nil},
		{"DuplicateDeviceName", []Device{{ID: 1, Name: "A"}, {ID: 2, Name: "a"}}, nil},
		{"HeadingClash", []Device{{ID: 1, Name: "A"}, {ID: 2, Name: "B", Headings: []string{"A"}}}, nil},
		{"CommandUnknownDevice", []Device{{ID: 1, Name: "A"}}, []Command{{Device: 2, ID: 1, Name: "X"}}},
		{"DuplicateCommand", []Device{{ID: 1, Name: "A"}}, []Command{{Device: 1, ID: 1, Name: "X"}, {Device: 1, ID: 2, Name: "x"}}},
		{"DuplicateCommandID", []Device{{ID: 1, Name: "A"}}, []Command{{Device: 1, ID: 1, Name: "X"}, {Device: 1, ID: 1, Name: "Y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("bad", "", tt.devices, tt.commands); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExpressions(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"QualifiedRef", c.RefExpr(Ref{Device: 1, Command: 3001}, "ah64d"), "catalog.Ref{Device: ah64d.ElecInterface, Command: ah64d.ElecBat}"},
		{"LocalRef", c.RefExpr(Ref{Device: 1, Command: 3001}, ""), "catalog.Ref{Device: ElecInterface, Command: ElecBat}"},
		{"NoCommandIdent", c.RefExpr(Ref{Device: 2, Command: 3001}, "ah64d"), "catalog.Ref{Device: ah64d.FuelInterface, Command: 3001}"},
		{"NoIdent", c.RefExpr(Ref{Device: 3, Command: 3001}, "ah64d"), "catalog.Ref{Device: catalog.DeviceID(3), Command: 3001}"},
		{"UnknownDevice", c.DeviceExpr(9, ""), "catalog.DeviceID(9)"},
		{"Device", c.DeviceExpr(1, "ah64d"), "ah64d.ElecInterface"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestStations(t *testing.T) {
	c := testCatalog(t).WithStations(map[int]Station{400: StationPilot, 500: StationCopilot})
	if got := c.Station(400); got != StationPilot || got.String() != "Pilot" {
		t.Errorf("Station(400) = %v", got)
	}
	if got := c.Station(500).String(); got != "Copilot" {
		t.Errorf("Station(500) = %q", got)
	}
	if got := c.Station(1); got != StationNone || got.String() != "" {
		t.Errorf("Station(1) = %v", got)
	}
}
